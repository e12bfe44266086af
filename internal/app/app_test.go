package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"laticinios/config"
	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(driver string) *config.Config {
	return &config.Config{
		Environment:          "development",
		StoreDriver:          driver,
		SQLitePath:           ":memory:",
		DBTimeout:            2 * time.Second,
		CatalogCacheTTL:      time.Minute,
		JWTSecretKey:         "segredo-de-teste",
		TokenExpiry:          time.Hour,
		RateLimitMaxRequests: 1000,
		RateLimitPeriod:      time.Minute,
		ExpiryAlertDays:      7,
		ExpiryScanCron:       "0 6 * * *",
		Timezone:             "UTC",
	}
}

func open(t *testing.T, cfg *config.Config) (*Repositories, cache.Client) {
	t.Helper()
	log := logger.NewNop()
	kv, err := NewCache(cfg, log)
	require.NoError(t, err)

	repos, err := OpenRepositories(context.Background(), cfg, kv, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos, kv
}

func TestNewCache_MemoryWithoutRedis(t *testing.T) {
	kv, err := NewCache(testConfig(config.DriverMemory), logger.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryClient{}, kv)
}

func TestOpenDB_RejectsMemoryDriver(t *testing.T) {
	_, err := OpenDB(testConfig(config.DriverMemory))

	assert.Error(t, err)
}

func TestSeed_SQLiteIsIdempotent(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	repos, kv := open(t, cfg)
	require.NotNil(t, repos.DB())

	svc := NewServices(cfg, repos, kv, logger.NewNop())
	f, err := seed.Load("")
	require.NoError(t, err)

	first, err := svc.Seeder(logger.NewNop()).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Users: 3, Products: 6, Areas: 3, Batches: 4}, first)

	second, err := svc.Seeder(logger.NewNop()).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Skipped: 16}, second)

	totals, err := svc.Reports.StockTotals(context.Background())
	require.NoError(t, err)
	assert.Len(t, totals, 4)
}

func TestScheduler_InvalidCron(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.ExpiryScanCron = "todo dia"
	repos, kv := open(t, cfg)

	s := NewServices(cfg, repos, kv, logger.NewNop()).Scheduler(cfg, logger.NewNop())

	assert.Error(t, s.Start())
}

func TestHandler_MemoryDriverServesSeededData(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	repos, kv := open(t, cfg)
	assert.Nil(t, repos.DB())

	svc := NewServices(cfg, repos, kv, logger.NewNop())
	f, err := seed.Load("")
	require.NoError(t, err)
	_, err = svc.Seeder(logger.NewNop()).Run(context.Background(), f)
	require.NoError(t, err)

	h := svc.Handler(cfg, kv, logger.NewNop())

	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "admin123"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login domain.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	assert.Equal(t, domain.RoleManager, login.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/v1/areas", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var areas []domain.StorageArea
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&areas))
	assert.Len(t, areas, 3)
}
