package catalog

import (
	"context"
	"net/http"

	"laticinios/internal/api/respond"
	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	CreateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error)
	GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error)
	ListProducts(ctx context.Context) ([]domain.CatalogProduct, error)
	UpdateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Handler agrupa os endpoints do catálogo de produtos.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	respond.Write(w, r, h.Logger, data, err, successStatus)
}

// CreateProductHandler lida com a requisição POST /v1/catalog.
// @Summary Cadastra um produto no catálogo
// @Tags catalog
// @Accept json
// @Produce json
// @Param product body domain.CatalogProduct true "Produto"
// @Success 201 {object} domain.CatalogProduct
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "ID já cadastrado"
// @Security ApiKeyAuth
// @Router /catalog [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var p domain.CatalogProduct
	if err := respond.Decode(r, &p); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), p)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetProductHandler lida com a requisição GET /v1/catalog/{id}.
// @Summary Consulta um produto do catálogo
// @Tags catalog
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.CatalogProduct
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /catalog/{id} [get]
func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetProductByID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, p, err, http.StatusOK)
}

// ListProductsHandler lida com a requisição GET /v1/catalog.
// @Summary Lista o catálogo
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.CatalogProduct
// @Security ApiKeyAuth
// @Router /catalog [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context())
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// UpdateProductHandler lida com a requisição PUT /v1/catalog/{id}.
// @Summary Renomeia um produto
// @Description O novo nome é propagado aos lotes armazenados.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param product body domain.CatalogProduct true "Produto"
// @Success 200 {object} domain.CatalogProduct
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /catalog/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var p domain.CatalogProduct
	if err := respond.Decode(r, &p); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}
	p.ID = r.PathValue("id")

	updated, err := h.Service.UpdateProduct(r.Context(), p)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /v1/catalog/{id}.
// @Summary Remove um produto do catálogo
// @Tags catalog
// @Param id path string true "ID do produto"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse "Produto referenciado por lotes ou vendas"
// @Security ApiKeyAuth
// @Router /catalog/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteProduct(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
