package stockservice

import (
	"context"
	"fmt"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/normalize"
)

// BatchRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
// Cada implementação serializa entrada e retirada por área.
type BatchRepository interface {
	IntakeBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error)
	WithdrawBatch(ctx context.Context, areaID string, key domain.BatchKey, qty int) (domain.WithdrawResult, error)
	ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error)
	GetBatch(ctx context.Context, areaID string, key domain.BatchKey) (domain.StockBatch, error)
	UpdateBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error)
	DeleteBatch(ctx context.Context, areaID string, id int64) (domain.StockBatch, error)
}

// CatalogLookup resolve o nome de exibição do produto no momento da entrada.
type CatalogLookup interface {
	GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error)
}

// SaleAppender grava o registro de venda após a retirada.
type SaleAppender interface {
	AppendSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error)
}

// Service é o ledger de estoque: valida, normaliza e delega ao repositório de lotes.
type Service struct {
	repo    BatchRepository
	catalog CatalogLookup
	sales   SaleAppender
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo BatchRepository, catalog CatalogLookup, sales SaleAppender, logger logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, sales: sales, logger: logger}
}

// Intake registra a entrada de um lote. Se já existir lote do mesmo produto com o mesmo
// código na área, as quantidades são somadas e a validade original é mantida.
func (s *Service) Intake(ctx context.Context, req domain.IntakeRequest) (domain.StockBatch, error) {
	req.AreaID = normalize.Code(req.AreaID)
	req.ProductID = normalize.Code(req.ProductID)
	req.Lot = normalize.Code(req.Lot)
	s.logger.Debug("Iniciando entrada de estoque no serviço.", map[string]interface{}{
		"area_id": req.AreaID, "product_id": req.ProductID, "lot": req.Lot, "quantity": req.Quantity,
	})

	if req.Quantity <= 0 {
		return domain.StockBatch{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}
	if req.Quantity > domain.MaxBatchQuantity {
		return domain.StockBatch{}, apperror.NewValidationError(
			fmt.Sprintf("A quantidade não pode passar de %d.", domain.MaxBatchQuantity))
	}
	if req.ProductID == "" {
		return domain.StockBatch{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if req.Lot == "" {
		return domain.StockBatch{}, apperror.NewValidationError("O lote é obrigatório.")
	}
	expiry, err := domain.ParseDate(req.ExpiryDate)
	if err != nil {
		return domain.StockBatch{}, apperror.NewValidationError(
			fmt.Sprintf("Data de validade '%s' inválida. Use o formato AAAA-MM-DD.", req.ExpiryDate))
	}

	product, err := s.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return domain.StockBatch{}, apperror.Translate(err, "Falha interna ao consultar catálogo.")
	}

	stored, err := s.repo.IntakeBatch(ctx, domain.StockBatch{
		AreaID:     req.AreaID,
		ProductID:  product.ID,
		Name:       product.Name,
		Quantity:   req.Quantity,
		ExpiryDate: expiry,
		Lot:        req.Lot,
	})
	if err != nil {
		return domain.StockBatch{}, apperror.Translate(err, "Falha interna ao registrar entrada de estoque.")
	}

	s.logger.Info("Entrada de estoque registrada.", map[string]interface{}{
		"area_id": stored.AreaID, "batch_id": stored.ID, "quantity": stored.Quantity,
	})
	return stored, nil
}

// Withdraw retira quantidade de um lote. Sem saldo suficiente nada é alterado;
// um lote que chega a zero é removido.
func (s *Service) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	req.AreaID = normalize.Code(req.AreaID)
	req.BatchKey = normalizeKey(req.BatchKey)

	if req.Quantity <= 0 {
		return domain.WithdrawResult{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}
	if !req.BatchKey.Valid() {
		return domain.WithdrawResult{}, apperror.NewValidationError("Informe o ID do lote ou o par produto e lote.")
	}

	result, err := s.repo.WithdrawBatch(ctx, req.AreaID, req.BatchKey, req.Quantity)
	if err != nil {
		return domain.WithdrawResult{}, apperror.Translate(err, "Falha interna ao retirar estoque.")
	}

	s.logger.Info("Retirada de estoque concluída.", map[string]interface{}{
		"area_id": req.AreaID, "batch_id": result.Before.ID, "remaining": result.RemainingQuantity, "removed": result.Removed,
	})
	return result, nil
}

// RegisterSale retira do estoque e, em caso de sucesso, grava a venda.
func (s *Service) RegisterSale(ctx context.Context, req domain.SaleRequest) (domain.SaleReceipt, error) {
	req.Destination = normalize.Text(req.Destination)
	if req.Destination == "" {
		return domain.SaleReceipt{}, apperror.NewValidationError("O destino da venda é obrigatório.")
	}
	if req.UserID == "" {
		return domain.SaleReceipt{}, apperror.NewUnauthorizedError("Venda sem usuário autenticado.")
	}

	withdrawal, err := s.Withdraw(ctx, domain.WithdrawRequest{AreaID: req.AreaID, BatchKey: req.BatchKey, Quantity: req.Quantity})
	if err != nil {
		return domain.SaleReceipt{}, err
	}

	before := withdrawal.Before
	sale, err := s.sales.AppendSale(ctx, domain.SaleRecord{
		ProductID:      before.ProductID,
		Name:           before.Name,
		Lot:            before.Lot,
		ExpirySnapshot: before.ExpiryDate.String(),
		Quantity:       req.Quantity,
		Destination:    req.Destination,
		AreaID:         before.AreaID,
		UserID:         req.UserID,
	})
	if err != nil {
		// A baixa já foi aplicada; o registro perdido fica apenas no log.
		s.logger.Error(fmt.Sprintf("Falha ao gravar venda do lote %d da área %s.", before.ID, before.AreaID), err)
		return domain.SaleReceipt{}, apperror.Translate(err, "Falha interna ao registrar venda.")
	}

	s.logger.Info("Venda registrada.", map[string]interface{}{
		"sale_id": sale.ID, "area_id": sale.AreaID, "product_id": sale.ProductID,
		"quantity": sale.Quantity, "user_id": sale.UserID,
	})
	return domain.SaleReceipt{Sale: sale, Withdrawal: withdrawal}, nil
}

// ListBatches devolve os lotes atuais da área ordenados por validade.
func (s *Service) ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error) {
	batches, err := s.repo.ListBatches(ctx, normalize.Code(areaID))
	if err != nil {
		return nil, apperror.Translate(err, "Falha interna ao listar lotes.")
	}
	return batches, nil
}

// UpdateBatch aplica a correção manual de um lote; quantidade zero remove o lote.
func (s *Service) UpdateBatch(ctx context.Context, areaID string, id int64, upd domain.BatchUpdate) (domain.StockBatch, error) {
	areaID = normalize.Code(areaID)
	upd.Lot = normalize.Code(upd.Lot)

	if id <= 0 {
		return domain.StockBatch{}, apperror.NewValidationError("ID de lote inválido.")
	}
	if upd.Quantity < 0 {
		return domain.StockBatch{}, apperror.NewValidationError("A quantidade não pode ser negativa.")
	}
	if upd.Quantity > domain.MaxBatchQuantity {
		return domain.StockBatch{}, apperror.NewValidationError(
			fmt.Sprintf("A quantidade não pode passar de %d.", domain.MaxBatchQuantity))
	}

	if upd.Quantity == 0 {
		removed, err := s.removeBatch(ctx, areaID, id)
		if err != nil {
			return domain.StockBatch{}, err
		}
		removed.Quantity = 0
		return removed, nil
	}

	if upd.Lot == "" {
		return domain.StockBatch{}, apperror.NewValidationError("O lote é obrigatório.")
	}
	expiry, err := domain.ParseDate(upd.ExpiryDate)
	if err != nil {
		return domain.StockBatch{}, apperror.NewValidationError(
			fmt.Sprintf("Data de validade '%s' inválida. Use o formato AAAA-MM-DD.", upd.ExpiryDate))
	}

	updated, err := s.repo.UpdateBatch(ctx, domain.StockBatch{
		ID: id, AreaID: areaID, Quantity: upd.Quantity, ExpiryDate: expiry, Lot: upd.Lot,
	})
	if err != nil {
		return domain.StockBatch{}, apperror.Translate(err, "Falha interna ao atualizar lote.")
	}

	s.logger.Info("Lote atualizado manualmente.", map[string]interface{}{
		"area_id": areaID, "batch_id": id, "quantity": updated.Quantity,
	})
	return updated, nil
}

// DeleteBatch remove um lote da área.
func (s *Service) DeleteBatch(ctx context.Context, areaID string, id int64) error {
	_, err := s.removeBatch(ctx, normalize.Code(areaID), id)
	return err
}

// removeBatch devolve o lote como estava no instante da remoção.
func (s *Service) removeBatch(ctx context.Context, areaID string, id int64) (domain.StockBatch, error) {
	if id <= 0 {
		return domain.StockBatch{}, apperror.NewValidationError("ID de lote inválido.")
	}
	removed, err := s.repo.DeleteBatch(ctx, areaID, id)
	if err != nil {
		return domain.StockBatch{}, apperror.Translate(err, "Falha interna ao excluir lote.")
	}

	s.logger.Info("Lote removido.", map[string]interface{}{"area_id": areaID, "batch_id": id, "quantity": removed.Quantity})
	return removed, nil
}

func normalizeKey(k domain.BatchKey) domain.BatchKey {
	k.ProductID = normalize.Code(k.ProductID)
	k.Lot = normalize.Code(k.Lot)
	return k
}
