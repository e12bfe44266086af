// Package app monta as dependências do serviço (Repository -> Service -> Handler)
// a partir da configuração. É usado pelo servidor HTTP e pelo CLI de manutenção.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/config"
	"laticinios/internal/api/area"
	"laticinios/internal/api/catalog"
	"laticinios/internal/api/report"
	"laticinios/internal/api/router"
	"laticinios/internal/api/stock"
	"laticinios/internal/api/user"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/middleware"
	"laticinios/internal/pkg/session"
	"laticinios/internal/pkg/token"
	"laticinios/internal/repository/arearepo"
	"laticinios/internal/repository/catalogrepo"
	"laticinios/internal/repository/memrepo"
	"laticinios/internal/repository/salerepo"
	"laticinios/internal/repository/stockrepo"
	"laticinios/internal/repository/userrepo"
	"laticinios/internal/scheduler"
	"laticinios/internal/seed"
	"laticinios/internal/service/areaservice"
	"laticinios/internal/service/catalogservice"
	"laticinios/internal/service/reportservice"
	"laticinios/internal/service/stockservice"
	"laticinios/internal/service/userservice"
)

// SaleRepository junta a escrita feita pelo estoque e a leitura feita pelos relatórios.
type SaleRepository interface {
	stockservice.SaleAppender
	reportservice.SaleLister
}

// Repositories agrupa a camada de persistência escolhida por STORE_DRIVER.
type Repositories struct {
	Areas   areaservice.AreaRepository
	Catalog catalogservice.CatalogRepository
	Batches stockservice.BatchRepository
	Sales   SaleRepository
	Users   userservice.UserRepository

	db *sqlx.DB
}

// DB devolve a conexão SQL, ou nil no driver em memória.
func (r *Repositories) DB() *sqlx.DB { return r.db }

// Close libera a conexão com o banco, se houver.
func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// OpenDB conecta ao banco relacional do driver configurado.
func OpenDB(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return database.NewPostgresDB(cfg.DatabaseURL)
	case config.DriverSQLite:
		return database.NewSQLiteDB(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q não usa banco relacional", cfg.StoreDriver)
	}
}

// OpenRepositories cria os repositórios. Nos drivers SQL as migrações pendentes são aplicadas antes.
func OpenRepositories(ctx context.Context, cfg *config.Config, cacheClient cache.Client, log logger.Logger) (*Repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memrepo.NewStore(log.Named("memrepo"))
		log.Warn("Usando armazenamento em memória; os dados se perdem ao encerrar.", nil)
		return &Repositories{Areas: store, Catalog: store, Batches: store, Sales: store, Users: store}, nil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Migrações verificadas.", map[string]interface{}{"driver": cfg.StoreDriver, "applied": len(applied)})

	return &Repositories{
		Areas:   arearepo.NewAreaRepository(db, cfg.DBTimeout, log.Named("arearepo")),
		Catalog: catalogrepo.NewCatalogRepository(db, cacheClient, cfg.DBTimeout, cfg.CatalogCacheTTL, log.Named("catalogrepo")),
		Batches: stockrepo.NewStockRepository(db, cfg.DBTimeout, log.Named("stockrepo")),
		Sales:   salerepo.NewSaleRepository(db, cfg.DBTimeout, log.Named("salerepo")),
		Users:   userrepo.NewUserRepository(db, cfg.DBTimeout, log.Named("userrepo")),
		db:      db,
	}, nil
}

// NewCache conecta ao Redis quando REDIS_ADDR está definido; caso contrário usa o cache em processo.
func NewCache(cfg *config.Config, log logger.Logger) (cache.Client, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR vazio; sessões e rate limit ficam em memória.", nil)
		return cache.NewMemoryClient(), nil
	}
	client, err := cache.NewRedisClient(cfg.RedisAddr, cfg.CacheTimeout)
	if err != nil {
		return nil, err
	}
	log.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
	return client, nil
}

// Services é a camada de regras de negócio montada sobre os repositórios.
type Services struct {
	Areas    *areaservice.Service
	Catalog  *catalogservice.Service
	Stock    *stockservice.Service
	Reports  *reportservice.Service
	Users    *userservice.UserService
	Tokens   *token.Service
	Sessions *session.Store

	location *time.Location
}

// NewServices monta os serviços. A configuração já deve ter passado por Validate.
func NewServices(cfg *config.Config, repos *Repositories, cacheClient cache.Client, log logger.Logger) *Services {
	loc, err := cfg.Location()
	if err != nil {
		log.Warn("TIMEZONE inválido; usando o fuso local.", map[string]interface{}{"timezone": cfg.Timezone})
		loc = time.Local
	}

	tokens := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	sessions := session.NewStore(cacheClient)

	return &Services{
		Areas:   areaservice.NewService(repos.Areas, repos.Batches, log.Named("areaservice")),
		Catalog: catalogservice.NewService(repos.Catalog, log.Named("catalogservice")),
		Stock:   stockservice.NewService(repos.Batches, repos.Catalog, repos.Sales, log.Named("stockservice")),
		Reports: reportservice.NewService(repos.Areas, repos.Batches, repos.Sales, reportservice.Options{
			Location:         loc,
			DefaultThreshold: cfg.ExpiryAlertDays,
		}, log.Named("reportservice")),
		Users:    userservice.NewService(repos.Users, tokens, sessions, log.Named("userservice")),
		Tokens:   tokens,
		Sessions: sessions,
		location: loc,
	}
}

// Seeder aplica os dados iniciais pelas mesmas regras da API.
func (s *Services) Seeder(log logger.Logger) *seed.Seeder {
	return seed.NewSeeder(s.Users, s.Catalog, s.Areas, s.Stock, s.location, log.Named("seed"))
}

// Scheduler agenda a varredura diária de vencimentos.
func (s *Services) Scheduler(cfg *config.Config, log logger.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(cfg.ExpiryScanCron, s.location, s.Reports, cfg.ExpiryAlertDays, log.Named("scheduler"))
}

// Handler monta os handlers HTTP e o roteador com autenticação e rate limit.
func (s *Services) Handler(cfg *config.Config, cacheClient cache.Client, log logger.Logger) http.Handler {
	handlers := router.Handlers{
		Area:    area.NewHandler(s.Areas, log.Named("api.area")),
		Catalog: catalog.NewHandler(s.Catalog, log.Named("api.catalog")),
		Stock:   stock.NewHandler(s.Stock, log.Named("api.stock")),
		Report:  report.NewHandler(s.Reports, log.Named("api.report")),
		User:    user.NewHandler(s.Users, log.Named("api.user"), !cfg.IsDevelopment()),
	}

	return router.NewRouter(handlers, router.Options{
		Auth:            middleware.NewAuth(s.Tokens, s.Sessions, log.Named("auth")),
		RateLimitCache:  cacheClient,
		RateLimitMax:    cfg.RateLimitMaxRequests,
		RateLimitPeriod: cfg.RateLimitPeriod,
		Logger:          log.Named("http"),
	})
}
