package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/session"
	"laticinios/internal/pkg/token"
	"laticinios/internal/repository/memrepo"
	"laticinios/internal/service/areaservice"
	"laticinios/internal/service/catalogservice"
	"laticinios/internal/service/stockservice"
	"laticinios/internal/service/userservice"
)

func newSeeder(store *memrepo.Store) *Seeder {
	log := logger.NewNop()
	users := userservice.NewService(store, token.NewService("k", time.Hour), session.NewStore(cache.NewMemoryClient()), log)
	s := NewSeeder(
		users,
		catalogservice.NewService(store, log),
		areaservice.NewService(store, store, log),
		stockservice.NewService(store, store, store, log),
		time.UTC,
		log,
	)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestLoad_Default(t *testing.T) {
	f, err := Load("")

	require.NoError(t, err)
	assert.Len(t, f.Users, 3)
	assert.Len(t, f.Catalog, 6)
	require.Len(t, f.Areas, 3)
	assert.Equal(t, "REF01", f.Areas[0].ID)
	require.NotNil(t, f.Areas[0].Batches[0].ExpiresInDays)
	assert.Equal(t, 30, *f.Areas[0].Batches[0].ExpiresInDays)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("areas:\n  - id: A1\n    nome: Errado\n"))

	assert.Error(t, err)
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memrepo.NewStore(logger.NewNop())
	s := newSeeder(store)
	f, err := Load("")
	require.NoError(t, err)

	first, err := s.Run(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 3, Products: 6, Areas: 3, Batches: 4}, first)

	batches, err := store.ListBatches(ctx, "REF01")
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "2025-06-16", batches[0].ExpiryDate.String())
	assert.Equal(t, "Iogurte Natural Integral 170g", batches[0].Name)

	second, err := s.Run(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, second.Batches)
	assert.Equal(t, 3+6+3+4, second.Skipped)

	again, err := store.ListBatches(ctx, "SECO01")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 200, again[0].Quantity)

	admin, err := store.FindUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, admin.Role)
}

func TestRun_FailsOnUnknownProduct(t *testing.T) {
	s := newSeeder(memrepo.NewStore(logger.NewNop()))
	days := 3
	f := File{Areas: []Area{{
		ID: "A1", Name: "Área Teste", StorageType: "seco",
		Batches: []Batch{{ProductID: "NADA", Quantity: 1, ExpiresInDays: &days, Lot: "X"}},
	}}}

	_, err := s.Run(context.Background(), f)

	assert.Error(t, err)
}
