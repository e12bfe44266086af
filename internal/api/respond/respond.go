// Package respond concentra a escrita de respostas JSON dos handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
)

// Write processa erros de serviço e envia respostas padronizadas ao cliente.
func Write(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err == nil {
		if data == nil {
			w.WriteHeader(successStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
			log.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"path": r.URL.Path, "method": r.Method,
		})
	}

	var insufficient *apperror.InsufficientStockError
	if errors.As(err, &insufficient) {
		w.Header().Set("X-Stock-Available", strconv.Itoa(insufficient.Available))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// Decode lê o corpo JSON rejeitando campos desconhecidos.
func Decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// PathInt64 lê um parâmetro numérico de rota.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("Parâmetro '%s' inválido: %q.", name, raw))
	}
	return n, nil
}

// QueryInt lê um parâmetro inteiro opcional da query string.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("Parâmetro '%s' deve ser um número inteiro.", name))
	}
	return n, nil
}
