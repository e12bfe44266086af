package area

import (
	"context"
	"net/http"

	"laticinios/internal/api/respond"
	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
)

// AreaService define o contrato que o Handler espera da camada de Serviço.
type AreaService interface {
	CreateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error)
	GetArea(ctx context.Context, id string) (domain.AreaDetail, error)
	ListAreas(ctx context.Context) ([]domain.StorageArea, error)
	UpdateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error)
	DeleteArea(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler de áreas.
type Handler struct {
	Service AreaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AreaService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	respond.Write(w, r, h.Logger, data, err, successStatus)
}

// CreateAreaHandler lida com a requisição POST /v1/areas.
// @Summary Cria uma área de armazenamento
// @Tags areas
// @Accept json
// @Produce json
// @Param area body domain.StorageArea true "Dados da área"
// @Success 201 {object} domain.StorageArea "Área criada com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "ID de área já existente"
// @Security ApiKeyAuth
// @Router /areas [post]
func (h *Handler) CreateAreaHandler(w http.ResponseWriter, r *http.Request) {
	var area domain.StorageArea
	if err := respond.Decode(r, &area); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateArea(r.Context(), area)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetAreaHandler lida com a requisição GET /v1/areas/{id}.
// @Summary Detalha uma área com seus lotes
// @Description Lotes ordenados por validade crescente.
// @Tags areas
// @Produce json
// @Param id path string true "ID da área"
// @Success 200 {object} domain.AreaDetail
// @Failure 404 {object} domain.ErrorResponse "Área não encontrada"
// @Security ApiKeyAuth
// @Router /areas/{id} [get]
func (h *Handler) GetAreaHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetArea(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, detail, err, http.StatusOK)
}

// ListAreasHandler lida com a requisição GET /v1/areas.
// @Summary Lista as áreas do armazém
// @Tags areas
// @Produce json
// @Success 200 {array} domain.StorageArea
// @Security ApiKeyAuth
// @Router /areas [get]
func (h *Handler) ListAreasHandler(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Service.ListAreas(r.Context())
	h.handleServiceResponse(w, r, areas, err, http.StatusOK)
}

// UpdateAreaHandler lida com a requisição PUT /v1/areas/{id}.
// @Summary Atualiza nome e tipo de uma área
// @Tags areas
// @Accept json
// @Produce json
// @Param id path string true "ID da área"
// @Param area body domain.StorageArea true "Novos dados"
// @Success 200 {object} domain.StorageArea
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /areas/{id} [put]
func (h *Handler) UpdateAreaHandler(w http.ResponseWriter, r *http.Request) {
	var area domain.StorageArea
	if err := respond.Decode(r, &area); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	area.ID = r.PathValue("id")

	updated, err := h.Service.UpdateArea(r.Context(), area)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteAreaHandler lida com a requisição DELETE /v1/areas/{id}.
// @Summary Exclui uma área vazia
// @Description Áreas com lotes não podem ser excluídas.
// @Tags areas
// @Param id path string true "ID da área"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Área possui lotes"
// @Security ApiKeyAuth
// @Router /areas/{id} [delete]
func (h *Handler) DeleteAreaHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteArea(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
