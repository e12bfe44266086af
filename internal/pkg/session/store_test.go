package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
)

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(cache.NewMemoryClient())

	info := domain.SessionInfo{SessionID: "abc", Username: "admin", Role: domain.RoleManager}
	require.NoError(t, store.Create(ctx, info, time.Hour))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, info, got)

	require.NoError(t, store.Revoke(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UnknownSession(t *testing.T) {
	_, err := NewStore(cache.NewMemoryClient()).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
