package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
)

// ErrNotFound indica sessão inexistente, expirada ou revogada.
var ErrNotFound = errors.New("sessão não encontrada")

const keyPrefix = "session:"

// Store guarda as sessões ativas no cache (Redis ou memória), com TTL igual ao do token.
type Store struct {
	cache cache.Client
}

func NewStore(c cache.Client) *Store {
	return &Store{cache: c}
}

func (s *Store) Create(ctx context.Context, info domain.SessionInfo, ttl time.Duration) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("falha ao serializar sessão: %w", err)
	}
	return s.cache.Set(ctx, keyPrefix+info.SessionID, payload, ttl)
}

func (s *Store) Get(ctx context.Context, sessionID string) (domain.SessionInfo, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return domain.SessionInfo{}, ErrNotFound
	}
	if err != nil {
		return domain.SessionInfo{}, err
	}

	var info domain.SessionInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return domain.SessionInfo{}, fmt.Errorf("sessão corrompida: %w", err)
	}
	info.SessionID = sessionID
	return info, nil
}

func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, keyPrefix+sessionID)
}
