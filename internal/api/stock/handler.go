package stock

import (
	"context"
	"net/http"

	"laticinios/internal/api/respond"
	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/middleware"
)

// StockService define o contrato do ledger de lotes esperado pelo Handler.
type StockService interface {
	Intake(ctx context.Context, req domain.IntakeRequest) (domain.StockBatch, error)
	Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error)
	RegisterSale(ctx context.Context, req domain.SaleRequest) (domain.SaleReceipt, error)
	ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error)
	UpdateBatch(ctx context.Context, areaID string, id int64, upd domain.BatchUpdate) (domain.StockBatch, error)
	DeleteBatch(ctx context.Context, areaID string, id int64) error
}

// Handler agrupa os endpoints de lotes, retiradas e vendas de uma área.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler de estoque.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	respond.Write(w, r, h.Logger, data, err, successStatus)
}

// ListBatchesHandler lida com a requisição GET /v1/areas/{id}/batches.
// @Summary Lista os lotes de uma área
// @Description Ordenados por validade crescente.
// @Tags stock
// @Produce json
// @Param id path string true "ID da área"
// @Success 200 {array} domain.StockBatch
// @Failure 404 {object} domain.ErrorResponse "Área não encontrada"
// @Security ApiKeyAuth
// @Router /areas/{id}/batches [get]
func (h *Handler) ListBatchesHandler(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Service.ListBatches(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, batches, err, http.StatusOK)
}

// IntakeHandler lida com a requisição POST /v1/areas/{id}/batches.
// @Summary Registra entrada de estoque
// @Description Lote existente do mesmo produto é somado; caso contrário um novo lote é criado.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID da área"
// @Param intake body domain.IntakeRequest true "Entrada"
// @Success 201 {object} domain.StockBatch "Lote resultante"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Área ou produto inexistente"
// @Security ApiKeyAuth
// @Router /areas/{id}/batches [post]
func (h *Handler) IntakeHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.IntakeRequest
	if err := respond.Decode(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	req.AreaID = r.PathValue("id")

	batch, err := h.Service.Intake(r.Context(), req)
	h.handleServiceResponse(w, r, batch, err, http.StatusCreated)
}

// UpdateBatchHandler lida com a requisição PUT /v1/areas/{id}/batches/{batchID}.
// @Summary Corrige quantidade, validade e lote
// @Description Quantidade zero remove o lote.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID da área"
// @Param batchID path int true "ID do lote"
// @Param update body domain.BatchUpdate true "Correção"
// @Success 200 {object} domain.StockBatch
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Lote duplicado na área"
// @Security ApiKeyAuth
// @Router /areas/{id}/batches/{batchID} [put]
func (h *Handler) UpdateBatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathInt64(r, "batchID")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	var upd domain.BatchUpdate
	if err := respond.Decode(r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	batch, err := h.Service.UpdateBatch(r.Context(), r.PathValue("id"), id, upd)
	h.handleServiceResponse(w, r, batch, err, http.StatusOK)
}

// DeleteBatchHandler lida com a requisição DELETE /v1/areas/{id}/batches/{batchID}.
// @Summary Remove um lote
// @Tags stock
// @Param id path string true "ID da área"
// @Param batchID path int true "ID do lote"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /areas/{id}/batches/{batchID} [delete]
func (h *Handler) DeleteBatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathInt64(r, "batchID")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	err = h.Service.DeleteBatch(r.Context(), r.PathValue("id"), id)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// WithdrawHandler lida com a requisição POST /v1/areas/{id}/withdrawals.
// @Summary Retira quantidade de um lote
// @Description Informe batch_id ou o par product_id e lot. Sem saldo suficiente nada é alterado.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID da área"
// @Param withdrawal body domain.WithdrawRequest true "Retirada"
// @Success 200 {object} domain.WithdrawResult
// @Failure 404 {object} domain.ErrorResponse "Lote não encontrado na área"
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security ApiKeyAuth
// @Router /areas/{id}/withdrawals [post]
func (h *Handler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.WithdrawRequest
	if err := respond.Decode(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	req.AreaID = r.PathValue("id")

	result, err := h.Service.Withdraw(r.Context(), req)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// RegisterSaleHandler lida com a requisição POST /v1/areas/{id}/sales.
// @Summary Registra uma venda
// @Description Retira do lote e grava o registro da venda em nome do usuário autenticado.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID da área"
// @Param sale body domain.SaleRequest true "Venda"
// @Success 201 {object} domain.SaleReceipt
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security ApiKeyAuth
// @Router /areas/{id}/sales [post]
func (h *Handler) RegisterSaleHandler(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão não encontrada."), http.StatusUnauthorized)
		return
	}
	var req domain.SaleRequest
	if err := respond.Decode(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	req.AreaID = r.PathValue("id")
	req.UserID = info.Username

	receipt, err := h.Service.RegisterSale(r.Context(), req)
	h.handleServiceResponse(w, r, receipt, err, http.StatusCreated)
}
