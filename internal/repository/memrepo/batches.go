package memrepo

import (
	"context"
	"fmt"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
)

// ledgerFor devolve o ledger da área com s.mu.RLock mantido; o chamador deve liberar com s.mu.RUnlock.
func (s *Store) ledgerFor(areaID string) (*ledger, error) {
	s.mu.RLock()
	l, ok := s.ledgers[areaID]
	if !ok {
		s.mu.RUnlock()
		return nil, errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada.", areaID))
	}
	return l, nil
}

// IntakeBatch soma a quantidade ao lote (área, produto, lote) existente ou cria um novo.
// No merge o lote mantém a validade original.
func (s *Store) IntakeBatch(_ context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	l, err := s.ledgerFor(batch.AreaID)
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer s.mu.RUnlock()

	if _, ok := s.catalog[batch.ProductID]; !ok {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado no catálogo.", batch.ProductID))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if batch.Quantity > domain.MaxBatchQuantity {
		return domain.StockBatch{}, errors.NewValidationError(quantityLimitMsg(batch.Quantity, 0))
	}

	if i := l.find(domain.BatchKey{ProductID: batch.ProductID, Lot: batch.Lot}); i >= 0 {
		if l.batches[i].Quantity > domain.MaxBatchQuantity-batch.Quantity {
			return domain.StockBatch{}, errors.NewValidationError(quantityLimitMsg(batch.Quantity, l.batches[i].Quantity))
		}
		l.batches[i].Quantity += batch.Quantity
		s.logger.Debug("Lote existente incrementado.", map[string]interface{}{
			"area_id": batch.AreaID, "batch_id": l.batches[i].ID, "quantity": l.batches[i].Quantity,
		})
		return l.batches[i], nil
	}

	batch.ID = s.nextBatchID.Add(1)
	l.batches = append(l.batches, batch)
	s.logger.Debug("Novo lote criado.", map[string]interface{}{"area_id": batch.AreaID, "batch_id": batch.ID})
	return batch, nil
}

// WithdrawBatch retira qty do lote. Quantidade insuficiente não altera o estoque;
// zerar o lote o remove da área.
func (s *Store) WithdrawBatch(_ context.Context, areaID string, key domain.BatchKey, qty int) (domain.WithdrawResult, error) {
	l, err := s.ledgerFor(areaID)
	if err != nil {
		return domain.WithdrawResult{}, err
	}
	defer s.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.find(key)
	if i < 0 {
		return domain.WithdrawResult{}, errors.NewNotFoundError(fmt.Sprintf("Lote não encontrado na área %s.", areaID))
	}

	before := l.batches[i]
	if before.Quantity < qty {
		return domain.WithdrawResult{}, errors.NewInsufficientStockError(
			fmt.Sprintf("lote %s do produto %s", before.Lot, before.ProductID), before.Quantity, qty)
	}

	remaining := before.Quantity - qty
	if remaining == 0 {
		l.remove(i)
	} else {
		l.batches[i].Quantity = remaining
	}

	return domain.WithdrawResult{Before: before, RemainingQuantity: remaining, Removed: remaining == 0}, nil
}

// ListBatches lê o estado atual da área, ordenado por validade.
func (s *Store) ListBatches(_ context.Context, areaID string) ([]domain.StockBatch, error) {
	l, err := s.ledgerFor(areaID)
	if err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	l.mu.Lock()
	batches := make([]domain.StockBatch, len(l.batches))
	copy(batches, l.batches)
	l.mu.Unlock()

	domain.SortBatchesByExpiry(batches)
	return batches, nil
}

func (s *Store) GetBatch(_ context.Context, areaID string, key domain.BatchKey) (domain.StockBatch, error) {
	l, err := s.ledgerFor(areaID)
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer s.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.find(key)
	if i < 0 {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote não encontrado na área %s.", areaID))
	}
	return l.batches[i], nil
}

// UpdateBatch corrige quantidade, validade e lote de um lote existente (quantidade > 0).
func (s *Store) UpdateBatch(_ context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	l, err := s.ledgerFor(batch.AreaID)
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer s.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.find(domain.BatchKey{ID: batch.ID})
	if i < 0 {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote %d não encontrado na área %s.", batch.ID, batch.AreaID))
	}

	current := l.batches[i]
	if j := l.find(domain.BatchKey{ProductID: current.ProductID, Lot: batch.Lot}); j >= 0 && j != i {
		return domain.StockBatch{}, errors.NewConflictError(
			fmt.Sprintf("Já existe o lote %s do produto %s na área %s.", batch.Lot, current.ProductID, batch.AreaID))
	}

	current.Quantity = batch.Quantity
	current.ExpiryDate = batch.ExpiryDate
	current.Lot = batch.Lot
	l.batches[i] = current
	return current, nil
}

// DeleteBatch remove o lote e devolve o estado que ele tinha no momento da remoção.
func (s *Store) DeleteBatch(_ context.Context, areaID string, id int64) (domain.StockBatch, error) {
	l, err := s.ledgerFor(areaID)
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer s.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.find(domain.BatchKey{ID: id})
	if i < 0 {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote %d não encontrado na área %s.", id, areaID))
	}
	removed := l.batches[i]
	l.remove(i)
	return removed, nil
}

func quantityLimitMsg(requested, onHand int) string {
	return fmt.Sprintf("A entrada de %d unidade(s) levaria o lote (saldo %d) acima do limite de %d.",
		requested, onHand, domain.MaxBatchQuantity)
}
