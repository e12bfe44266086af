// Package memrepo mantém todo o estado do armazém em memória do processo.
// Um único Store satisfaz os contratos de repositório de todos os serviços.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
)

// ledger guarda os lotes de uma área. mu serializa a sequência ler-conferir-gravar
// de entradas, retiradas e correções daquela área.
type ledger struct {
	mu      sync.Mutex
	batches []domain.StockBatch
}

func (l *ledger) find(key domain.BatchKey) int {
	for i, b := range l.batches {
		if key.Matches(b) {
			return i
		}
	}
	return -1
}

func (l *ledger) remove(i int) {
	l.batches = append(l.batches[:i], l.batches[i+1:]...)
}

// Store é o repositório em memória. Ordem de bloqueio: Store.mu e depois ledger.mu.
type Store struct {
	mu      sync.RWMutex
	areas   map[string]domain.StorageArea
	ledgers map[string]*ledger
	catalog map[string]domain.CatalogProduct
	sales   []domain.SaleRecord
	users   map[string]domain.User

	nextBatchID atomic.Int64
	nextSaleID  atomic.Int64

	now    func() time.Time
	logger logger.Logger
}

// NewStore cria um armazém vazio.
func NewStore(log logger.Logger) *Store {
	return &Store{
		areas:   make(map[string]domain.StorageArea),
		ledgers: make(map[string]*ledger),
		catalog: make(map[string]domain.CatalogProduct),
		users:   make(map[string]domain.User),
		now:     time.Now,
		logger:  log,
	}
}

// --- Áreas ---

func (s *Store) CreateArea(_ context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.areas[area.ID]; exists {
		return domain.StorageArea{}, errors.NewConflictError(fmt.Sprintf("Área com ID '%s' já existe.", area.ID))
	}
	s.areas[area.ID] = area
	s.ledgers[area.ID] = &ledger{}

	s.logger.Debug("Área criada em memória.", map[string]interface{}{"area_id": area.ID})
	return area, nil
}

func (s *Store) GetAreaByID(_ context.Context, id string) (domain.StorageArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	area, ok := s.areas[id]
	if !ok {
		return domain.StorageArea{}, errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada.", id))
	}
	return area, nil
}

func (s *Store) ListAreas(_ context.Context) ([]domain.StorageArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	areas := make([]domain.StorageArea, 0, len(s.areas))
	for _, a := range s.areas {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Name != areas[j].Name {
			return areas[i].Name < areas[j].Name
		}
		return areas[i].ID < areas[j].ID
	})
	return areas, nil
}

func (s *Store) UpdateArea(_ context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[area.ID]; !ok {
		return domain.StorageArea{}, errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada para atualização.", area.ID))
	}
	s.areas[area.ID] = area
	return area, nil
}

// DeleteArea recusa a exclusão enquanto a área tiver ao menos um lote.
func (s *Store) DeleteArea(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[id]
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada para exclusão.", id))
	}

	l.mu.Lock()
	count := len(l.batches)
	l.mu.Unlock()
	if count > 0 {
		return errors.NewDeletionBlockedError(fmt.Sprintf("A área %s possui %d lote(s) armazenado(s).", id, count))
	}

	delete(s.areas, id)
	delete(s.ledgers, id)
	return nil
}

// --- Catálogo ---

func (s *Store) CreateProduct(_ context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.catalog[p.ID]; exists {
		return domain.CatalogProduct{}, errors.NewConflictError(fmt.Sprintf("Produto com ID '%s' já existe no catálogo.", p.ID))
	}
	s.catalog[p.ID] = p
	return p, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (domain.CatalogProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.catalog[id]
	if !ok {
		return domain.CatalogProduct{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado no catálogo.", id))
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.CatalogProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.CatalogProduct, 0, len(s.catalog))
	for _, p := range s.catalog {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// UpdateProduct renomeia o produto e propaga o nome aos lotes armazenados.
func (s *Store) UpdateProduct(_ context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[p.ID]; !ok {
		return domain.CatalogProduct{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para atualização.", p.ID))
	}
	s.catalog[p.ID] = p

	for _, l := range s.ledgers {
		l.mu.Lock()
		for i := range l.batches {
			if l.batches[i].ProductID == p.ID {
				l.batches[i].Name = p.Name
			}
		}
		l.mu.Unlock()
	}
	return p, nil
}

// DeleteProduct recusa a exclusão enquanto houver lote ou venda referenciando o produto.
func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[id]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para exclusão.", id))
	}

	for areaID, l := range s.ledgers {
		l.mu.Lock()
		inUse := false
		for _, b := range l.batches {
			if b.ProductID == id {
				inUse = true
				break
			}
		}
		l.mu.Unlock()
		if inUse {
			return errors.NewDeletionBlockedError(fmt.Sprintf("O produto %s possui lotes na área %s.", id, areaID))
		}
	}
	for _, sale := range s.sales {
		if sale.ProductID == id {
			return errors.NewDeletionBlockedError(fmt.Sprintf("O produto %s está referenciado no histórico de vendas.", id))
		}
	}

	delete(s.catalog, id)
	return nil
}
