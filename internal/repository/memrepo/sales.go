package memrepo

import (
	"context"
	"fmt"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
)

// AppendSale registra a venda; o histórico nunca é alterado.
func (s *Store) AppendSale(_ context.Context, sale domain.SaleRecord) (domain.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale.ID = s.nextSaleID.Add(1)
	if sale.SoldAt.IsZero() {
		sale.SoldAt = s.now().UTC()
	}
	s.sales = append(s.sales, sale)
	return sale, nil
}

// ListSales devolve as vendas mais recentes primeiro.
func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SaleRecord, 0)
	for i := len(s.sales) - 1; i >= 0; i-- {
		sale := s.sales[i]
		if filter.AreaID != "" && sale.AreaID != filter.AreaID {
			continue
		}
		if filter.ProductID != "" && sale.ProductID != filter.ProductID {
			continue
		}
		out = append(out, sale)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// --- Usuários ---

func (s *Store) SaveUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return domain.User{}, errors.NewConflictError(fmt.Sprintf("Usuário '%s' já existe.", user.Username))
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.users[user.Username] = user
	return user, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return domain.User{}, errors.NewNotFoundError(fmt.Sprintf("Usuário %s não encontrado.", username))
	}
	return user, nil
}
