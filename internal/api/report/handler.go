package report

import (
	"context"
	"net/http"

	"laticinios/internal/api/respond"
	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/normalize"
)

// ReportService define o contrato dos relatórios do gerente.
type ReportService interface {
	StockTotals(ctx context.Context) ([]domain.ProductTotal, error)
	ExpiryAlerts(ctx context.Context, thresholdDays int) ([]domain.ExpiryAlert, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error)
	DefaultThreshold() int
	Today() domain.Date
}

// ExpiryReport é a resposta do relatório de vencimentos.
type ExpiryReport struct {
	Today         string               `json:"today" example:"2025-06-10"`
	ThresholdDays int                  `json:"threshold_days" example:"7"`
	Alerts        []domain.ExpiryAlert `json:"alerts"`
}

type Handler struct {
	Service ReportService
	Logger  logger.Logger
}

func NewHandler(svc ReportService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	respond.Write(w, r, h.Logger, data, err, successStatus)
}

// StockTotalsHandler lida com a requisição GET /v1/reports/stock.
// @Summary Estoque total por produto
// @Tags reports
// @Produce json
// @Success 200 {array} domain.ProductTotal
// @Security ApiKeyAuth
// @Router /reports/stock [get]
func (h *Handler) StockTotalsHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Service.StockTotals(r.Context())
	h.handleServiceResponse(w, r, totals, err, http.StatusOK)
}

// ExpiryAlertsHandler lida com a requisição GET /v1/reports/expiry.
// @Summary Lotes vencidos ou próximos do vencimento
// @Tags reports
// @Produce json
// @Param days query int false "Janela em dias (padrão configurado)"
// @Success 200 {object} report.ExpiryReport
// @Failure 400 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /reports/expiry [get]
func (h *Handler) ExpiryAlertsHandler(w http.ResponseWriter, r *http.Request) {
	days, err := respond.QueryInt(r, "days", h.Service.DefaultThreshold())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	alerts, err := h.Service.ExpiryAlerts(r.Context(), days)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, ExpiryReport{
		Today: h.Service.Today().String(), ThresholdDays: days, Alerts: alerts,
	}, nil, http.StatusOK)
}

// SalesHandler lida com a requisição GET /v1/reports/sales.
// @Summary Histórico de vendas
// @Description Mais recentes primeiro.
// @Tags reports
// @Produce json
// @Param area query string false "Filtra pela área de origem"
// @Param product query string false "Filtra pelo produto"
// @Param limit query int false "Máximo de registros"
// @Success 200 {array} domain.SaleRecord
// @Security ApiKeyAuth
// @Router /reports/sales [get]
func (h *Handler) SalesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := respond.QueryInt(r, "limit", 0)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	filter := domain.SaleFilter{
		AreaID:    normalize.Code(q.Get("area")),
		ProductID: normalize.Code(q.Get("product")),
		Limit:     limit,
	}

	sales, err := h.Service.ListSales(r.Context(), filter)
	h.handleServiceResponse(w, r, sales, err, http.StatusOK)
}
