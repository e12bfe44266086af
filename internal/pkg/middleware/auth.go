package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/session"
	"laticinios/internal/pkg/token"
)

// SessionCookieName é o cookie HttpOnly definido no login.
const SessionCookieName = "laticinios_session"

// ContextKey garante chaves de contexto únicas para este pacote.
type ContextKey int

const (
	SessionInfoKey ContextKey = iota
)

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// SessionStore verifica se a sessão do token continua ativa no servidor.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.SessionInfo, error)
}

// Auth valida o JWT (header Bearer ou cookie de sessão), confirma a sessão no servidor
// e anexa domain.SessionInfo ao contexto da requisição.
type Auth struct {
	tokens   TokenService
	sessions SessionStore
	logger   logger.Logger
}

func NewAuth(tokens TokenService, sessions SessionStore, log logger.Logger) *Auth {
	return &Auth{tokens: tokens, sessions: sessions, logger: log}
}

// Authenticate exige uma sessão válida.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token de autorização ausente ou malformado.")
			return
		}

		claims, err := a.tokens.ValidateToken(raw)
		if err != nil {
			a.logger.Debug("Token rejeitado.", map[string]interface{}{"path": r.URL.Path, "reason": err.Error()})
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token inválido ou expirado.")
			return
		}

		info, err := a.sessions.Get(r.Context(), claims.SessionID())
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão encerrada. Faça login novamente.")
			return
		}
		if err != nil {
			a.logger.Error("Falha ao consultar sessão.", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Ocorreu um erro interno. Tente novamente mais tarde.")
			return
		}

		ctx := context.WithValue(r.Context(), SessionInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission nega por padrão: sem sessão no contexto ou sem a permissão no papel, a requisição é recusada.
func RequirePermission(perm domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := SessionFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Autorização necessária.")
				return
			}
			if !domain.HasPermission(info.Role, perm) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Acesso negado. Você não tem a permissão necessária.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext é uma função utilitária para extrair a sessão no handler.
func SessionFromContext(ctx context.Context) (domain.SessionInfo, bool) {
	info, ok := ctx.Value(SessionInfoKey).(domain.SessionInfo)
	return info, ok
}

// WithSession anexa a sessão ao contexto; usado em testes de handlers.
func WithSession(ctx context.Context, info domain.SessionInfo) context.Context {
	return context.WithValue(ctx, SessionInfoKey, info)
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(h[len("Bearer "):])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}
