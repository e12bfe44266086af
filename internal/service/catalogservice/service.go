package catalogservice

import (
	"context"
	"fmt"
	"unicode/utf8"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/normalize"
)

const maxProductIDLen = 20

// CatalogRepository define o contrato que o Serviço de Catálogo espera da camada de Persistência.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error)
	GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error)
	ListProducts(ctx context.Context) ([]domain.CatalogProduct, error)
	UpdateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Service implementa as regras do catálogo de produtos.
type Service struct {
	repo   CatalogRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo CatalogRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct cadastra um produto; ID duplicado resulta em ConflictError.
func (s *Service) CreateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	p.ID = normalize.Code(p.ID)
	p.Name = normalize.Text(p.Name)
	s.logger.Debug("Iniciando criação de produto no catálogo.", map[string]interface{}{"product_id": p.ID})

	if err := validate(p); err != nil {
		s.logger.Warn("Falha na validação do produto.", map[string]interface{}{"product_id": p.ID, "error": err.Error()})
		return domain.CatalogProduct{}, err
	}

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return domain.CatalogProduct{}, apperror.Translate(err, "Falha interna ao criar produto.")
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"product_id": created.ID, "name": created.Name})
	return created, nil
}

// GetProductByID consulta um produto do catálogo.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error) {
	id = normalize.Code(id)
	if id == "" {
		return domain.CatalogProduct{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}

	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.CatalogProduct{}, apperror.Translate(err, "Falha interna ao buscar produto.")
	}
	return p, nil
}

// ListProducts lista todo o catálogo.
func (s *Service) ListProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar catálogo no repositório.", err)
		return nil, apperror.Translate(err, "Falha interna ao listar catálogo.")
	}
	return products, nil
}

// UpdateProduct renomeia um produto.
func (s *Service) UpdateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	p.ID = normalize.Code(p.ID)
	p.Name = normalize.Text(p.Name)
	if err := validate(p); err != nil {
		return domain.CatalogProduct{}, err
	}

	updated, err := s.repo.UpdateProduct(ctx, p)
	if err != nil {
		return domain.CatalogProduct{}, apperror.Translate(err, "Falha interna ao atualizar produto.")
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"product_id": updated.ID, "name": updated.Name})
	return updated, nil
}

// DeleteProduct remove um produto sem lotes nem vendas.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	id = normalize.Code(id)
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return apperror.Translate(err, "Falha interna ao excluir produto.")
	}

	s.logger.Info("Produto excluído do catálogo.", map[string]interface{}{"product_id": id})
	return nil
}

func validate(p domain.CatalogProduct) error {
	if p.ID == "" {
		return apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if utf8.RuneCountInString(p.ID) > maxProductIDLen {
		return apperror.NewValidationError(fmt.Sprintf("O ID do produto deve ter no máximo %d caracteres.", maxProductIDLen))
	}
	if p.Name == "" {
		return apperror.NewValidationError("O nome do produto não pode ser vazio.")
	}
	if utf8.RuneCountInString(p.Name) > 150 {
		return apperror.NewValidationError("O nome do produto deve ter no máximo 150 caracteres.")
	}
	return nil
}
