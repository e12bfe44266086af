package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	_, err := c.Get(ctx, "product:LEITE001")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "product:LEITE001", `{"id":"LEITE001"}`, time.Minute))
	val, err := c.Get(ctx, "product:LEITE001")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"LEITE001"}`, val)

	require.NoError(t, c.Delete(ctx, "product:LEITE001"))
	_, err = c.Get(ctx, "product:LEITE001")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Expiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryClient()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "session:abc", "admin", 30*time.Second))

	now = now.Add(29 * time.Second)
	_, err := c.Get(ctx, "session:abc")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_IncrWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryClient()
	c.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "rate-limit:10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// A janela não é renovada por incrementos posteriores.
	now = now.Add(time.Minute)
	n, err := c.Incr(ctx, "rate-limit:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
