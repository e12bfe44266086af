// Package seed carrega dados iniciais (usuários, catálogo, áreas e lotes) a partir de YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
)

//go:embed default.yaml
var defaultData []byte

// File é o formato do arquivo de carga.
type File struct {
	Users   []User    `yaml:"users"`
	Catalog []Product `yaml:"catalog"`
	Areas   []Area    `yaml:"areas"`
}

type User struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type Product struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Area struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	StorageType string  `yaml:"storage_type"`
	Batches     []Batch `yaml:"batches"`
}

// Batch aceita validade absoluta (expiry_date) ou relativa ao dia da carga (expires_in_days).
type Batch struct {
	ProductID     string `yaml:"product_id"`
	Quantity      int    `yaml:"quantity"`
	ExpiryDate    string `yaml:"expiry_date"`
	ExpiresInDays *int   `yaml:"expires_in_days"`
	Lot           string `yaml:"lot"`
}

// Load lê o arquivo em path; path vazio usa os dados de demonstração embutidos.
func Load(path string) (File, error) {
	data := defaultData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("falha ao ler arquivo de carga %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodifica o YAML rejeitando campos desconhecidos.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("arquivo de carga inválido: %w", err)
	}
	return f, nil
}

// --- Destinos da carga (serviços) ---

type UserRegistrar interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
}

type ProductCreator interface {
	CreateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error)
}

type AreaCreator interface {
	CreateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error)
}

type StockLoader interface {
	Intake(ctx context.Context, req domain.IntakeRequest) (domain.StockBatch, error)
	ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error)
}

// Summary conta o que foi inserido e o que já existia.
type Summary struct {
	Users, Products, Areas, Batches int
	Skipped                         int
}

// Seeder aplica um File pelas regras de negócio dos serviços.
type Seeder struct {
	users    UserRegistrar
	catalog  ProductCreator
	areas    AreaCreator
	stock    StockLoader
	logger   logger.Logger
	now      func() time.Time
	location *time.Location
}

func NewSeeder(users UserRegistrar, catalog ProductCreator, areas AreaCreator, stock StockLoader, loc *time.Location, log logger.Logger) *Seeder {
	if loc == nil {
		loc = time.Local
	}
	return &Seeder{users: users, catalog: catalog, areas: areas, stock: stock, logger: log, now: time.Now, location: loc}
}

// Run insere os dados ignorando entidades já existentes. Os lotes de uma área
// só são carregados quando a área está vazia, para que rodar duas vezes não some estoque.
func (s *Seeder) Run(ctx context.Context, f File) (Summary, error) {
	var sum Summary
	today := domain.NewDate(s.now().In(s.location))

	for _, u := range f.Users {
		_, err := s.users.Register(ctx, domain.UserRegistration{
			Username: u.Username, Name: u.Name, Password: u.Password, Role: domain.Role(u.Role),
		})
		if skip, err := s.check(err, "usuário", u.Username); err != nil {
			return sum, err
		} else if skip {
			sum.Skipped++
			continue
		}
		sum.Users++
	}

	for _, p := range f.Catalog {
		_, err := s.catalog.CreateProduct(ctx, domain.CatalogProduct{ID: p.ID, Name: p.Name})
		if skip, err := s.check(err, "produto", p.ID); err != nil {
			return sum, err
		} else if skip {
			sum.Skipped++
			continue
		}
		sum.Products++
	}

	for _, a := range f.Areas {
		created, err := s.areas.CreateArea(ctx, domain.StorageArea{ID: a.ID, Name: a.Name, StorageType: domain.StorageType(a.StorageType)})
		skip, err := s.check(err, "área", a.ID)
		if err != nil {
			return sum, err
		}
		areaID := created.ID
		if skip {
			sum.Skipped++
			areaID = a.ID
		} else {
			sum.Areas++
		}

		existing, err := s.stock.ListBatches(ctx, areaID)
		if err != nil {
			return sum, fmt.Errorf("falha ao ler lotes da área %s: %w", areaID, err)
		}
		if len(existing) > 0 {
			sum.Skipped += len(a.Batches)
			continue
		}

		for _, b := range a.Batches {
			expiry := b.ExpiryDate
			if b.ExpiresInDays != nil {
				expiry = today.AddDays(*b.ExpiresInDays).String()
			}
			if _, err := s.stock.Intake(ctx, domain.IntakeRequest{
				AreaID: areaID, ProductID: b.ProductID, Quantity: b.Quantity, ExpiryDate: expiry, Lot: b.Lot,
			}); err != nil {
				return sum, fmt.Errorf("falha ao carregar lote %s da área %s: %w", b.Lot, areaID, err)
			}
			sum.Batches++
		}
	}

	s.logger.Info("Carga inicial concluída.", map[string]interface{}{
		"users": sum.Users, "products": sum.Products, "areas": sum.Areas, "batches": sum.Batches, "skipped": sum.Skipped,
	})
	return sum, nil
}

// check trata ConflictError como "já existe".
func (s *Seeder) check(err error, kind, id string) (bool, error) {
	if err == nil {
		return false, nil
	}
	var conflict *apperror.ConflictError
	if errors.As(err, &conflict) {
		s.logger.Debug("Entidade já existe, ignorada na carga.", map[string]interface{}{"kind": kind, "id": id})
		return true, nil
	}
	return false, fmt.Errorf("falha ao carregar %s %s: %w", kind, id, err)
}
