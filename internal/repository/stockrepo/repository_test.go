package stockrepo

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/database/dbtest"
	"laticinios/internal/pkg/logger"
)

func newRepo(t *testing.T) *StockRepository {
	t.Helper()
	db := dbtest.NewSQLite(t)
	dbtest.Exec(t, db, `INSERT INTO areas (area_id, name, storage_type) VALUES ('A1', 'Câmara Fria', 'refrigerado'), ('A2', 'Seco', 'seco')`)
	dbtest.Exec(t, db, `INSERT INTO catalog (product_id, name) VALUES ('LEITE001', 'Leite Integral'), ('Q1', 'Queijo')`)
	return NewStockRepository(db, 5*time.Second, logger.NewNop())
}

func batch(productID, name string, qty int, expiry, lot string) domain.StockBatch {
	return domain.StockBatch{
		AreaID: "A1", ProductID: productID, Name: name, Quantity: qty,
		ExpiryDate: domain.MustParseDate(expiry), Lot: lot,
	}
}

func TestStockRepository_Scenario(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	key := domain.BatchKey{ProductID: "LEITE001", Lot: "LOTEA"}

	created, err := repo.IntakeBatch(ctx, batch("LEITE001", "Leite Integral", 100, "2025-12-20", "LOTEA"))
	require.NoError(t, err)
	assert.Equal(t, 100, created.Quantity)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "2025-12-20", created.ExpiryDate.String())

	res, err := repo.WithdrawBatch(ctx, "A1", key, 40)
	require.NoError(t, err)
	assert.Equal(t, 60, res.RemainingQuantity)
	assert.Equal(t, 100, res.Before.Quantity)

	res, err = repo.WithdrawBatch(ctx, "A1", key, 60)
	require.NoError(t, err)
	assert.True(t, res.Removed)

	batches, err := repo.ListBatches(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, batches)

	_, err = repo.WithdrawBatch(ctx, "A1", key, 1)
	var nf *errors.NotFoundError
	assert.True(t, stderrors.As(err, &nf))
}

func TestStockRepository_MergeOnIntake(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 20, "2099-01-01", "X"))
	require.NoError(t, err)
	second, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 5, "2099-05-01", "X"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 25, second.Quantity)
	assert.Equal(t, "2099-01-01", second.ExpiryDate.String())

	batches, err := repo.ListBatches(ctx, "A1")
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestStockRepository_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	b, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 3, "2099-01-01", "X"))
	require.NoError(t, err)

	_, err = repo.WithdrawBatch(ctx, "A1", domain.BatchKey{ID: b.ID}, 4)
	var insufficient *errors.InsufficientStockError
	require.True(t, stderrors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Available)

	got, err := repo.GetBatch(ctx, "A1", domain.BatchKey{ID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestStockRepository_BatchFromOtherAreaIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	b, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 3, "2099-01-01", "X"))
	require.NoError(t, err)

	_, err = repo.WithdrawBatch(ctx, "A2", domain.BatchKey{ID: b.ID}, 1)
	var nf *errors.NotFoundError
	assert.True(t, stderrors.As(err, &nf))
}

func TestStockRepository_IntakeUnknownReferences(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	var nf *errors.NotFoundError

	_, err := repo.IntakeBatch(ctx, batch("NAOEXISTE", "x", 1, "2099-01-01", "X"))
	assert.True(t, stderrors.As(err, &nf))

	b := batch("Q1", "Queijo", 1, "2099-01-01", "X")
	b.AreaID = "ZZ"
	_, err = repo.IntakeBatch(ctx, b)
	assert.True(t, stderrors.As(err, &nf))

	_, err = repo.ListBatches(ctx, "ZZ")
	assert.True(t, stderrors.As(err, &nf))
}

func TestStockRepository_ListSortedByExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for _, b := range []domain.StockBatch{
		batch("Q1", "Queijo", 1, "2099-03-01", "C"),
		batch("Q1", "Queijo", 1, "2099-01-01", "A"),
		batch("LEITE001", "Leite Integral", 1, "2099-02-01", "B"),
	} {
		_, err := repo.IntakeBatch(ctx, b)
		require.NoError(t, err)
	}

	batches, err := repo.ListBatches(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "A", batches[0].Lot)
	assert.Equal(t, "B", batches[1].Lot)
	assert.Equal(t, "C", batches[2].Lot)
}

func TestStockRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	x, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 1, "2099-01-01", "X"))
	require.NoError(t, err)
	y, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 1, "2099-01-01", "Y"))
	require.NoError(t, err)

	_, err = repo.UpdateBatch(ctx, domain.StockBatch{ID: y.ID, AreaID: "A1", Quantity: 2, ExpiryDate: y.ExpiryDate, Lot: "X"})
	var conflict *errors.ConflictError
	assert.True(t, stderrors.As(err, &conflict))

	updated, err := repo.UpdateBatch(ctx, domain.StockBatch{ID: y.ID, AreaID: "A1", Quantity: 9, ExpiryDate: domain.MustParseDate("2099-12-31"), Lot: "Z"})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, "2099-12-31", updated.ExpiryDate.String())

	removed, err := repo.DeleteBatch(ctx, "A1", x.ID)
	require.NoError(t, err)
	assert.Equal(t, x, removed)

	_, err = repo.DeleteBatch(ctx, "A1", x.ID)
	var nf *errors.NotFoundError
	assert.True(t, stderrors.As(err, &nf))
}

func TestStockRepository_MergeAboveLimitRejected(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	full, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", domain.MaxBatchQuantity, "2099-01-01", "X"))
	require.NoError(t, err)

	_, err = repo.IntakeBatch(ctx, batch("Q1", "Queijo", 1, "2099-01-01", "X"))
	var invalid *errors.ValidationError
	require.True(t, stderrors.As(err, &invalid))

	_, err = repo.IntakeBatch(ctx, batch("Q1", "Queijo", domain.MaxBatchQuantity+1, "2099-01-01", "Y"))
	require.True(t, stderrors.As(err, &invalid))

	batches, err := repo.ListBatches(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, full.ID, batches[0].ID)
	assert.Equal(t, domain.MaxBatchQuantity, batches[0].Quantity)

	// O lote cheio continua aceitando retiradas e novas entradas que cabem.
	_, err = repo.WithdrawBatch(ctx, "A1", domain.BatchKey{ID: full.ID}, 10)
	require.NoError(t, err)
	merged, err := repo.IntakeBatch(ctx, batch("Q1", "Queijo", 10, "2099-01-01", "X"))
	require.NoError(t, err)
	assert.Equal(t, domain.MaxBatchQuantity, merged.Quantity)
}
