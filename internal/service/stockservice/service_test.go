package stockservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/repository/memrepo"
	"laticinios/internal/service/stockservice"
)

// MockBatchRepository é uma implementação mock da interface BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) IntakeBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(domain.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) WithdrawBatch(ctx context.Context, areaID string, key domain.BatchKey, qty int) (domain.WithdrawResult, error) {
	args := m.Called(ctx, areaID, key, qty)
	return args.Get(0).(domain.WithdrawResult), args.Error(1)
}

func (m *MockBatchRepository) ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).([]domain.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) GetBatch(ctx context.Context, areaID string, key domain.BatchKey) (domain.StockBatch, error) {
	args := m.Called(ctx, areaID, key)
	return args.Get(0).(domain.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) UpdateBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(domain.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) DeleteBatch(ctx context.Context, areaID string, id int64) (domain.StockBatch, error) {
	args := m.Called(ctx, areaID, id)
	return args.Get(0).(domain.StockBatch), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CatalogProduct), args.Error(1)
}

type MockSales struct {
	mock.Mock
}

func (m *MockSales) AppendSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error) {
	args := m.Called(ctx, sale)
	return args.Get(0).(domain.SaleRecord), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

var leite = domain.CatalogProduct{ID: "LEITE001", Name: "Leite UHT Integral 1L"}

// --- Intake ---

func TestIntake_Success_DenormalizesName(t *testing.T) {
	repo, catalog, sales := new(MockBatchRepository), new(MockCatalog), new(MockSales)
	svc := stockservice.NewService(repo, catalog, sales, newTestLogger())

	want := domain.StockBatch{
		AreaID: "REF01", ProductID: "LEITE001", Name: leite.Name, Quantity: 100,
		ExpiryDate: domain.MustParseDate("2025-12-20"), Lot: "LOTEA",
	}
	stored := want
	stored.ID = 1

	catalog.On("GetProductByID", mock.Anything, "LEITE001").Return(leite, nil)
	repo.On("IntakeBatch", mock.Anything, want).Return(stored, nil)

	got, err := svc.Intake(context.Background(), domain.IntakeRequest{
		AreaID: "ref01", ProductID: "leite001", Quantity: 100, ExpiryDate: "2025-12-20", Lot: " lotea ",
	})

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	repo.AssertExpectations(t)
}

func TestIntake_Fail_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.IntakeRequest
	}{
		{"quantidade zero", domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: 0, ExpiryDate: "2025-12-20", Lot: "A"}},
		{"quantidade negativa", domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: -3, ExpiryDate: "2025-12-20", Lot: "A"}},
		{"lote vazio", domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: 1, ExpiryDate: "2025-12-20", Lot: "  "}},
		{"data inválida", domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: 1, ExpiryDate: "20/12/2025", Lot: "A"}},
		{"produto vazio", domain.IntakeRequest{AreaID: "REF01", Quantity: 1, ExpiryDate: "2025-12-20", Lot: "A"}},
		{"acima do limite", domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: domain.MaxBatchQuantity + 1, ExpiryDate: "2025-12-20", Lot: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, catalog := new(MockBatchRepository), new(MockCatalog)
			svc := stockservice.NewService(repo, catalog, new(MockSales), newTestLogger())

			_, err := svc.Intake(context.Background(), tt.req)

			assert.IsType(t, &apperror.ValidationError{}, err)
			repo.AssertNotCalled(t, "IntakeBatch")
			catalog.AssertNotCalled(t, "GetProductByID")
		})
	}
}

func TestIntake_Fail_UnknownProduct(t *testing.T) {
	repo, catalog := new(MockBatchRepository), new(MockCatalog)
	svc := stockservice.NewService(repo, catalog, new(MockSales), newTestLogger())

	catalog.On("GetProductByID", mock.Anything, "XPTO").Return(domain.CatalogProduct{}, apperror.NewNotFoundError("Produto XPTO"))

	_, err := svc.Intake(context.Background(), domain.IntakeRequest{
		AreaID: "REF01", ProductID: "XPTO", Quantity: 1, ExpiryDate: "2025-12-20", Lot: "A",
	})

	assert.IsType(t, &apperror.NotFoundError{}, err)
	repo.AssertNotCalled(t, "IntakeBatch")
}

// --- Withdraw ---

func TestWithdraw_Fail_InvalidKey(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	_, err := svc.Withdraw(context.Background(), domain.WithdrawRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ProductID: "LEITE001"}, Quantity: 1,
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "WithdrawBatch")
}

func TestWithdraw_PassesInsufficientStockThrough(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	key := domain.BatchKey{ProductID: "LEITE001", Lot: "LOTEA"}
	repo.On("WithdrawBatch", mock.Anything, "REF01", key, 500).
		Return(domain.WithdrawResult{}, apperror.NewInsufficientStockError("lote LOTEA", 60, 500))

	_, err := svc.Withdraw(context.Background(), domain.WithdrawRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ProductID: "leite001", Lot: "lotea"}, Quantity: 500,
	})

	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 60, insufficient.Available)
}

// --- RegisterSale ---

func TestRegisterSale_AppendsRecordAfterWithdraw(t *testing.T) {
	repo, sales := new(MockBatchRepository), new(MockSales)
	svc := stockservice.NewService(repo, new(MockCatalog), sales, newTestLogger())

	before := domain.StockBatch{
		ID: 7, AreaID: "REF01", ProductID: "LEITE001", Name: leite.Name, Quantity: 60,
		ExpiryDate: domain.MustParseDate("2025-12-20"), Lot: "LOTEA",
	}
	repo.On("WithdrawBatch", mock.Anything, "REF01", domain.BatchKey{ID: 7}, 10).
		Return(domain.WithdrawResult{Before: before, RemainingQuantity: 50}, nil)

	expectedRecord := domain.SaleRecord{
		ProductID: "LEITE001", Name: leite.Name, Lot: "LOTEA", ExpirySnapshot: "2025-12-20",
		Quantity: 10, Destination: "Mercado Central", AreaID: "REF01", UserID: "joao.silva",
	}
	saved := expectedRecord
	saved.ID = 1
	sales.On("AppendSale", mock.Anything, expectedRecord).Return(saved, nil)

	receipt, err := svc.RegisterSale(context.Background(), domain.SaleRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ID: 7}, Quantity: 10,
		Destination: " Mercado  Central ", UserID: "joao.silva",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), receipt.Sale.ID)
	assert.Equal(t, 50, receipt.Withdrawal.RemainingQuantity)
	sales.AssertExpectations(t)
}

func TestRegisterSale_NoRecordWhenWithdrawFails(t *testing.T) {
	repo, sales := new(MockBatchRepository), new(MockSales)
	svc := stockservice.NewService(repo, new(MockCatalog), sales, newTestLogger())

	repo.On("WithdrawBatch", mock.Anything, "REF01", domain.BatchKey{ID: 9}, 1).
		Return(domain.WithdrawResult{}, apperror.NewNotFoundError("Lote 9"))

	_, err := svc.RegisterSale(context.Background(), domain.SaleRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ID: 9}, Quantity: 1, Destination: "Padaria", UserID: "admin",
	})

	assert.IsType(t, &apperror.NotFoundError{}, err)
	sales.AssertNotCalled(t, "AppendSale")
}

func TestRegisterSale_Fail_MissingDestination(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	_, err := svc.RegisterSale(context.Background(), domain.SaleRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ID: 1}, Quantity: 1, UserID: "admin",
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "WithdrawBatch")
}

// --- UpdateBatch / DeleteBatch ---

func TestUpdateBatch_ZeroQuantityDeletes(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	removed := domain.StockBatch{ID: 3, AreaID: "SECO01", ProductID: "LEITE001", Name: "Leite UHT Integral 1L", Quantity: 12, Lot: "L1"}
	repo.On("DeleteBatch", mock.Anything, "SECO01", int64(3)).Return(removed, nil)

	got, err := svc.UpdateBatch(context.Background(), "seco01", 3, domain.BatchUpdate{Quantity: 0})

	require.NoError(t, err)
	want := removed
	want.Quantity = 0
	assert.Equal(t, want, got)
	// A remoção já devolve o lote; nenhuma leitura separada antes dela.
	repo.AssertNotCalled(t, "GetBatch")
	repo.AssertNotCalled(t, "UpdateBatch")
	repo.AssertExpectations(t)
}

func TestUpdateBatch_ZeroQuantityMissingBatch(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	repo.On("DeleteBatch", mock.Anything, "SECO01", int64(9)).
		Return(domain.StockBatch{}, apperror.NewNotFoundError("Lote 9 não encontrado na área SECO01."))

	_, err := svc.UpdateBatch(context.Background(), "SECO01", 9, domain.BatchUpdate{Quantity: 0})

	assert.IsType(t, &apperror.NotFoundError{}, err)
	repo.AssertNotCalled(t, "GetBatch")
}

func TestUpdateBatch_Fail_AboveLimit(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	_, err := svc.UpdateBatch(context.Background(), "REF01", 3,
		domain.BatchUpdate{Quantity: domain.MaxBatchQuantity + 1, ExpiryDate: "2025-12-31", Lot: "A"})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "UpdateBatch")
}

func TestUpdateBatch_Fail_Negative(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	_, err := svc.UpdateBatch(context.Background(), "REF01", 3, domain.BatchUpdate{Quantity: -1, ExpiryDate: "2025-12-31", Lot: "A"})

	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestUpdateBatch_RepoConflict(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	repo.On("UpdateBatch", mock.Anything, mock.AnythingOfType("domain.StockBatch")).
		Return(domain.StockBatch{}, apperror.NewConflictError("lote LOTEB já existe"))

	_, err := svc.UpdateBatch(context.Background(), "REF01", 3, domain.BatchUpdate{Quantity: 5, ExpiryDate: "2025-12-31", Lot: "loteb"})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestDeleteBatch_RepoError(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := stockservice.NewService(repo, new(MockCatalog), new(MockSales), newTestLogger())

	repo.On("DeleteBatch", mock.Anything, "REF01", int64(4)).Return(domain.StockBatch{}, errors.New("database connection failed"))

	err := svc.DeleteBatch(context.Background(), "REF01", 4)

	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "Falha interna ao excluir lote")
}

// --- Cenário completo sobre o armazenamento em memória ---

func TestLedgerScenario_MemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memrepo.NewStore(logger.NewNop())
	_, err := store.CreateArea(ctx, domain.StorageArea{ID: "REF01", Name: "Câmara Fria", StorageType: domain.StorageRefrigerated})
	require.NoError(t, err)
	_, err = store.CreateProduct(ctx, leite)
	require.NoError(t, err)

	svc := stockservice.NewService(store, store, store, newTestLogger())

	batch, err := svc.Intake(ctx, domain.IntakeRequest{AreaID: "REF01", ProductID: "LEITE001", Quantity: 100, ExpiryDate: "2025-12-20", Lot: "LOTEA"})
	require.NoError(t, err)
	assert.Equal(t, 100, batch.Quantity)

	res, err := svc.Withdraw(ctx, domain.WithdrawRequest{AreaID: "REF01", BatchKey: domain.BatchKey{ProductID: "LEITE001", Lot: "LOTEA"}, Quantity: 40})
	require.NoError(t, err)
	assert.Equal(t, 60, res.RemainingQuantity)
	assert.Equal(t, 100, res.Before.Quantity)

	_, err = svc.Withdraw(ctx, domain.WithdrawRequest{AreaID: "REF01", BatchKey: domain.BatchKey{ID: batch.ID}, Quantity: 61})
	assert.IsType(t, &apperror.InsufficientStockError{}, err)

	receipt, err := svc.RegisterSale(ctx, domain.SaleRequest{
		AreaID: "REF01", BatchKey: domain.BatchKey{ID: batch.ID}, Quantity: 60, Destination: "Mercado Central", UserID: "joao.silva",
	})
	require.NoError(t, err)
	assert.True(t, receipt.Withdrawal.Removed)
	assert.Equal(t, "2025-12-20", receipt.Sale.ExpirySnapshot)

	batches, err := svc.ListBatches(ctx, "REF01")
	require.NoError(t, err)
	assert.Empty(t, batches)
}
