package reportservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/repository/memrepo"
	"laticinios/internal/service/reportservice"
)

var today = domain.MustParseDate("2025-06-10")

func fixedNow() time.Time { return time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC) }

func seededStore(t *testing.T) *memrepo.Store {
	t.Helper()
	ctx := context.Background()
	store := memrepo.NewStore(logger.NewNop())

	for _, a := range []domain.StorageArea{
		{ID: "REF01", Name: "Câmara Fria Principal", StorageType: domain.StorageRefrigerated},
		{ID: "SECO01", Name: "Depósito Seco", StorageType: domain.StorageDry},
	} {
		_, err := store.CreateArea(ctx, a)
		require.NoError(t, err)
	}
	for _, p := range []domain.CatalogProduct{
		{ID: "IOGUR001", Name: "Iogurte Natural 170g"},
		{ID: "LEITE001", Name: "Leite UHT Integral 1L"},
	} {
		_, err := store.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	intake := []domain.StockBatch{
		{AreaID: "REF01", ProductID: "IOGUR001", Name: "Iogurte Natural 170g", Quantity: 30, ExpiryDate: today.AddDays(-1), Lot: "A"},
		{AreaID: "REF01", ProductID: "IOGUR001", Name: "Iogurte Natural 170g", Quantity: 20, ExpiryDate: today.AddDays(3), Lot: "B"},
		{AreaID: "SECO01", ProductID: "LEITE001", Name: "Leite UHT Integral 1L", Quantity: 100, ExpiryDate: today.AddDays(10), Lot: "C"},
		{AreaID: "SECO01", ProductID: "LEITE001", Name: "Leite UHT Integral 1L", Quantity: 60, ExpiryDate: today.AddDays(3), Lot: "D"},
	}
	for _, b := range intake {
		_, err := store.IntakeBatch(ctx, b)
		require.NoError(t, err)
	}
	return store
}

func newService(store *memrepo.Store) *reportservice.Service {
	return reportservice.NewService(store, store, store, reportservice.Options{
		Location: time.UTC,
		Now:      fixedNow,
	}, logger.NewNop())
}

func TestStockTotals(t *testing.T) {
	svc := newService(seededStore(t))

	totals, err := svc.StockTotals(context.Background())

	require.NoError(t, err)
	want := []domain.ProductTotal{
		{ProductID: "IOGUR001", Name: "Iogurte Natural 170g", Quantity: 50},
		{ProductID: "LEITE001", Name: "Leite UHT Integral 1L", Quantity: 160},
	}
	if diff := cmp.Diff(want, totals); diff != "" {
		t.Errorf("totais por produto (-want +got):\n%s", diff)
	}
}

func TestExpiryAlerts_ClassifiesAndSorts(t *testing.T) {
	svc := newService(seededStore(t))

	alerts, err := svc.ExpiryAlerts(context.Background(), svc.DefaultThreshold())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	type row struct {
		Area   string
		Lot    string
		Status domain.ExpiryStatus
		Days   int
	}
	got := make([]row, len(alerts))
	for i, a := range alerts {
		got[i] = row{a.AreaID, a.Batch.Lot, a.Status, a.DaysUntilExpiry}
	}
	want := []row{
		{"REF01", "A", domain.StatusExpired, -1},
		{"REF01", "B", domain.StatusNearExpiry, 3},
		{"SECO01", "D", domain.StatusNearExpiry, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alertas (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Câmara Fria Principal", alerts[0].AreaName)
}

func TestExpiryAlerts_ZeroThresholdOnlyExpired(t *testing.T) {
	svc := newService(seededStore(t))

	alerts, err := svc.ExpiryAlerts(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.StatusExpired, alerts[0].Status)
}

func TestExpiryAlerts_NegativeThreshold(t *testing.T) {
	svc := newService(seededStore(t))

	_, err := svc.ExpiryAlerts(context.Background(), -1)

	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestToday_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	svc := reportservice.NewService(nil, nil, nil, reportservice.Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC) },
	}, logger.NewNop())

	assert.Equal(t, "2025-06-09", svc.Today().String())
	assert.Equal(t, domain.DefaultExpiryThresholdDays, svc.DefaultThreshold())
}

type failingAreas struct{ mock.Mock }

func (m *failingAreas) ListAreas(ctx context.Context) ([]domain.StorageArea, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.StorageArea), args.Error(1)
}

func TestStockTotals_RepoError(t *testing.T) {
	areas := new(failingAreas)
	areas.On("ListAreas", mock.Anything).Return([]domain.StorageArea(nil), errors.New("connection reset"))
	svc := reportservice.NewService(areas, nil, nil, reportservice.Options{}, logger.NewNop())

	_, err := svc.StockTotals(context.Background())

	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	for _, dest := range []string{"Mercado Central", "Padaria Sol"} {
		_, err := store.AppendSale(ctx, domain.SaleRecord{ProductID: "LEITE001", AreaID: "SECO01", Quantity: 1, Destination: dest, UserID: "admin"})
		require.NoError(t, err)
	}
	svc := newService(store)

	sales, err := svc.ListSales(ctx, domain.SaleFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Padaria Sol", sales[0].Destination)

	_, err = svc.ListSales(ctx, domain.SaleFilter{Limit: -1})
	assert.IsType(t, &apperror.ValidationError{}, err)
}
