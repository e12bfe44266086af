package areaservice

import (
	"context"
	"fmt"
	"unicode/utf8"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/normalize"
)

const maxAreaIDLen = 20

// AreaRepository define o contrato que o Serviço de Áreas espera da camada de Persistência.
type AreaRepository interface {
	CreateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error)
	GetAreaByID(ctx context.Context, id string) (domain.StorageArea, error)
	ListAreas(ctx context.Context) ([]domain.StorageArea, error)
	UpdateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error)
	DeleteArea(ctx context.Context, id string) error
}

// BatchLister fornece os lotes atuais de uma área para a visão detalhada.
type BatchLister interface {
	ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error)
}

// Service concentra as regras de cadastro de áreas de armazenamento.
type Service struct {
	repo    AreaRepository
	batches BatchLister
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Áreas.
func NewService(repo AreaRepository, batches BatchLister, logger logger.Logger) *Service {
	return &Service{repo: repo, batches: batches, logger: logger}
}

// CreateArea cria uma nova área após validações de negócio.
func (s *Service) CreateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	area.ID = normalize.Code(area.ID)
	s.logger.Debug("Iniciando criação de área no serviço.", map[string]interface{}{"area_id": area.ID, "name": area.Name})

	if err := validateAreaID(area.ID); err != nil {
		return domain.StorageArea{}, err
	}
	area, err := s.normalizeAttributes(area)
	if err != nil {
		s.logger.Warn("Falha na validação da área.", map[string]interface{}{"area_id": area.ID, "error": err.Error()})
		return domain.StorageArea{}, err
	}

	created, err := s.repo.CreateArea(ctx, area)
	if err != nil {
		return domain.StorageArea{}, apperror.Translate(err, "Falha interna ao criar área.")
	}

	s.logger.Info("Área criada com sucesso.", map[string]interface{}{"area_id": created.ID, "storage_type": created.StorageType})
	return created, nil
}

// GetArea devolve a área com seus lotes ordenados por validade.
func (s *Service) GetArea(ctx context.Context, id string) (domain.AreaDetail, error) {
	id = normalize.Code(id)
	area, err := s.repo.GetAreaByID(ctx, id)
	if err != nil {
		return domain.AreaDetail{}, apperror.Translate(err, "Falha interna ao buscar área.")
	}

	batches, err := s.batches.ListBatches(ctx, id)
	if err != nil {
		return domain.AreaDetail{}, apperror.Translate(err, "Falha interna ao listar lotes da área.")
	}
	return domain.AreaDetail{StorageArea: area, Batches: batches}, nil
}

// ListAreas lista todas as áreas.
func (s *Service) ListAreas(ctx context.Context) ([]domain.StorageArea, error) {
	areas, err := s.repo.ListAreas(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar áreas no repositório.", err)
		return nil, apperror.Translate(err, "Falha interna ao listar áreas.")
	}
	return areas, nil
}

// UpdateArea altera nome e tipo de armazenamento de uma área existente.
func (s *Service) UpdateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	area.ID = normalize.Code(area.ID)
	area, err := s.normalizeAttributes(area)
	if err != nil {
		return domain.StorageArea{}, err
	}

	updated, err := s.repo.UpdateArea(ctx, area)
	if err != nil {
		return domain.StorageArea{}, apperror.Translate(err, "Falha interna ao atualizar área.")
	}

	s.logger.Info("Área atualizada com sucesso.", map[string]interface{}{"area_id": updated.ID})
	return updated, nil
}

// DeleteArea remove uma área vazia.
func (s *Service) DeleteArea(ctx context.Context, id string) error {
	id = normalize.Code(id)
	if err := s.repo.DeleteArea(ctx, id); err != nil {
		return apperror.Translate(err, "Falha interna ao excluir área.")
	}

	s.logger.Info("Área excluída com sucesso.", map[string]interface{}{"area_id": id})
	return nil
}

func validateAreaID(id string) error {
	if id == "" {
		return apperror.NewValidationError("O ID da área é obrigatório.")
	}
	if utf8.RuneCountInString(id) > maxAreaIDLen {
		return apperror.NewValidationError(fmt.Sprintf("O ID da área deve ter no máximo %d caracteres.", maxAreaIDLen))
	}
	return nil
}

// normalizeAttributes valida o nome (3 a 100 caracteres) e o tipo de armazenamento.
func (s *Service) normalizeAttributes(area domain.StorageArea) (domain.StorageArea, error) {
	area.Name = normalize.Text(area.Name)
	if area.Name == "" {
		return area, apperror.NewValidationError("O nome da área não pode ser vazio.")
	}
	if n := utf8.RuneCountInString(area.Name); n < 3 || n > 100 {
		return area, apperror.NewValidationError("O nome da área deve ter entre 3 e 100 caracteres.")
	}

	area.StorageType = domain.StorageType(normalize.Lower(string(area.StorageType)))
	if !area.StorageType.Valid() {
		return area, apperror.NewValidationError(fmt.Sprintf(
			"Tipo de armazenamento '%s' inválido. Use refrigerado, congelado ou seco.", area.StorageType))
	}
	return area, nil
}
