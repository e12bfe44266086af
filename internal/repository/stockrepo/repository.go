package stockrepo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
)

const batchColumns = `batch_id, area_id, product_id, name, quantity, expiry_date, lot`

// StockRepository é o ledger de lotes persistido em SQL (Postgres ou SQLite).
// Cada entrada/retirada é uma única transação sobre a linha afetada.
type StockRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// keyFilter monta o WHERE de localização do lote dentro da área.
func keyFilter(areaID string, key domain.BatchKey) (string, []interface{}) {
	if key.HasID() {
		return `area_id = ? AND batch_id = ?`, []interface{}{areaID, key.ID}
	}
	return `area_id = ? AND product_id = ? AND lot = ?`, []interface{}{areaID, key.ProductID, key.Lot}
}

// IntakeBatch faz o merge (ou a criação) em um único INSERT ... ON CONFLICT.
// No merge a validade original do lote é mantida.
func (r *StockRepository) IntakeBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	r.logger.Debug("Registrando entrada de lote no repositório.", map[string]interface{}{
		"area_id": batch.AreaID, "product_id": batch.ProductID, "lot": batch.Lot, "quantity": batch.Quantity,
	})

	if batch.Quantity > domain.MaxBatchQuantity {
		return domain.StockBatch{}, errors.NewValidationError(quantityLimitMsg(batch.Quantity))
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// O WHERE do DO UPDATE recusa o merge que passaria do limite; nesse caso nada é retornado.
	query := r.DB.Rebind(`
        INSERT INTO batches (area_id, product_id, name, quantity, expiry_date, lot)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (area_id, product_id, lot)
        DO UPDATE SET quantity = batches.quantity + excluded.quantity
        WHERE batches.quantity <= ? - excluded.quantity
        RETURNING ` + batchColumns)

	var stored domain.StockBatch
	err := r.DB.GetContext(ctxTimeout, &stored, query,
		batch.AreaID, batch.ProductID, batch.Name, batch.Quantity, batch.ExpiryDate, batch.Lot, domain.MaxBatchQuantity)
	if stderrors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("Entrada recusada: saldo do lote passaria do limite.", map[string]interface{}{
			"area_id": batch.AreaID, "product_id": batch.ProductID, "lot": batch.Lot, "quantity": batch.Quantity,
		})
		return domain.StockBatch{}, errors.NewValidationError(quantityLimitMsg(batch.Quantity))
	}
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.StockBatch{}, errors.NewNotFoundError(
				fmt.Sprintf("Área %s ou produto %s inexistente.", batch.AreaID, batch.ProductID))
		}
		r.logger.Error("Falha ao registrar entrada de lote.", err)
		return domain.StockBatch{}, errors.NewDBError("Falha ao registrar entrada de lote", err)
	}

	r.logger.Info("Entrada de lote registrada.", map[string]interface{}{
		"area_id": stored.AreaID, "batch_id": stored.ID, "quantity": stored.Quantity,
	})
	return stored, nil
}

// WithdrawBatch bloqueia a linha (FOR UPDATE no Postgres, BEGIN IMMEDIATE no SQLite),
// confere o saldo e decrementa ou remove o lote.
func (r *StockRepository) WithdrawBatch(ctx context.Context, areaID string, key domain.BatchKey, qty int) (domain.WithdrawResult, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de retirada.", err)
		return domain.WithdrawResult{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	where, args := keyFilter(areaID, key)
	var before domain.StockBatch
	err = tx.GetContext(ctxTimeout, &before,
		tx.Rebind(`SELECT `+batchColumns+` FROM batches WHERE `+where+database.LockClause(r.DB)), args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.WithdrawResult{}, errors.NewNotFoundError(fmt.Sprintf("Lote não encontrado na área %s.", areaID))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar lote para retirada.", err)
		return domain.WithdrawResult{}, errors.NewDBError("Falha ao buscar lote para retirada", err)
	}

	if before.Quantity < qty {
		r.logger.Warn("Retirada recusada por estoque insuficiente.", map[string]interface{}{
			"area_id": areaID, "batch_id": before.ID, "available": before.Quantity, "requested": qty,
		})
		return domain.WithdrawResult{}, errors.NewInsufficientStockError(
			fmt.Sprintf("lote %s do produto %s", before.Lot, before.ProductID), before.Quantity, qty)
	}

	remaining := before.Quantity - qty
	if remaining == 0 {
		_, err = tx.ExecContext(ctxTimeout, tx.Rebind(`DELETE FROM batches WHERE batch_id = ?`), before.ID)
	} else {
		_, err = tx.ExecContext(ctxTimeout, tx.Rebind(`UPDATE batches SET quantity = ? WHERE batch_id = ?`), remaining, before.ID)
	}
	if err != nil {
		r.logger.Error("Falha ao gravar retirada.", err)
		return domain.WithdrawResult{}, errors.NewDBError("Falha ao gravar retirada", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de retirada.", err)
		return domain.WithdrawResult{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Retirada registrada.", map[string]interface{}{
		"area_id": areaID, "batch_id": before.ID, "remaining": remaining,
	})
	return domain.WithdrawResult{Before: before, RemainingQuantity: remaining, Removed: remaining == 0}, nil
}

// ListBatches lê os lotes atuais da área, ordenados por validade.
func (r *StockRepository) ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if err := r.ensureArea(ctxTimeout, areaID); err != nil {
		return nil, err
	}

	batches := []domain.StockBatch{}
	query := r.DB.Rebind(`SELECT ` + batchColumns + ` FROM batches WHERE area_id = ? ORDER BY expiry_date, batch_id`)
	if err := r.DB.SelectContext(ctxTimeout, &batches, query, areaID); err != nil {
		r.logger.Error("Falha ao listar lotes da área.", err)
		return nil, errors.NewDBError("Falha ao listar lotes", err)
	}
	return batches, nil
}

func (r *StockRepository) GetBatch(ctx context.Context, areaID string, key domain.BatchKey) (domain.StockBatch, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where, args := keyFilter(areaID, key)
	var batch domain.StockBatch
	err := r.DB.GetContext(ctxTimeout, &batch, r.DB.Rebind(`SELECT `+batchColumns+` FROM batches WHERE `+where), args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote não encontrado na área %s.", areaID))
	}
	if err != nil {
		return domain.StockBatch{}, errors.NewDBError("Falha ao buscar lote", err)
	}
	return batch, nil
}

// UpdateBatch corrige quantidade (> 0), validade e lote.
func (r *StockRepository) UpdateBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := r.DB.Rebind(`
        UPDATE batches SET quantity = ?, expiry_date = ?, lot = ?
        WHERE area_id = ? AND batch_id = ?
        RETURNING ` + batchColumns)

	var updated domain.StockBatch
	err := r.DB.GetContext(ctxTimeout, &updated, query,
		batch.Quantity, batch.ExpiryDate, batch.Lot, batch.AreaID, batch.ID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote %d não encontrado na área %s.", batch.ID, batch.AreaID))
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.StockBatch{}, errors.NewConflictError(
				fmt.Sprintf("Já existe o lote %s deste produto na área %s.", batch.Lot, batch.AreaID))
		}
		r.logger.Error("Falha ao atualizar lote.", err)
		return domain.StockBatch{}, errors.NewDBError("Falha ao atualizar lote", err)
	}

	r.logger.Info("Lote corrigido.", map[string]interface{}{"area_id": updated.AreaID, "batch_id": updated.ID})
	return updated, nil
}

// DeleteBatch remove o lote em um único comando e devolve a linha removida.
func (r *StockRepository) DeleteBatch(ctx context.Context, areaID string, id int64) (domain.StockBatch, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var removed domain.StockBatch
	err := r.DB.GetContext(ctxTimeout, &removed,
		r.DB.Rebind(`DELETE FROM batches WHERE area_id = ? AND batch_id = ? RETURNING `+batchColumns), areaID, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StockBatch{}, errors.NewNotFoundError(fmt.Sprintf("Lote %d não encontrado na área %s.", id, areaID))
	}
	if err != nil {
		r.logger.Error("Falha ao excluir lote.", err)
		return domain.StockBatch{}, errors.NewDBError("Falha ao excluir lote", err)
	}

	r.logger.Info("Lote excluído.", map[string]interface{}{"area_id": areaID, "batch_id": id, "quantity": removed.Quantity})
	return removed, nil
}

func quantityLimitMsg(requested int) string {
	return fmt.Sprintf("A entrada de %d unidade(s) levaria o lote acima do limite de %d.", requested, domain.MaxBatchQuantity)
}

func (r *StockRepository) ensureArea(ctx context.Context, areaID string) error {
	var id string
	err := r.DB.GetContext(ctx, &id, r.DB.Rebind(`SELECT area_id FROM areas WHERE area_id = ?`), areaID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada.", areaID))
	}
	if err != nil {
		return errors.NewDBError("Falha ao buscar área", err)
	}
	return nil
}
