package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "laticinios/docs" // registra o documento OpenAPI
	"laticinios/internal/api/area"
	"laticinios/internal/api/catalog"
	"laticinios/internal/api/report"
	"laticinios/internal/api/stock"
	"laticinios/internal/api/user"
	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Area    *area.Handler
	Catalog *catalog.Handler
	Stock   *stock.Handler
	Report  *report.Handler
	User    *user.Handler
}

// Options configura os middlewares globais.
type Options struct {
	Auth            *middleware.Auth
	RateLimitCache  cache.Client
	RateLimitMax    int
	RateLimitPeriod time.Duration
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	// authed exige sessão válida; guarded também exige a permissão.
	authed := func(fn http.HandlerFunc) http.Handler {
		return opts.Auth.Authenticate(fn)
	}
	guarded := func(perm domain.Permission, fn http.HandlerFunc) http.Handler {
		return middleware.Chain(fn, opts.Auth.Authenticate, middleware.RequirePermission(perm))
	}

	// --- 1. Rotas públicas ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.HandleFunc("POST /v1/login", h.User.LoginUserHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Sessão e usuários ---
	mux.Handle("POST /v1/logout", authed(h.User.LogoutHandler))
	mux.Handle("GET /v1/me", authed(h.User.MeHandler))
	mux.Handle("POST /v1/users", guarded(domain.PermManageUsers, h.User.RegisterUserHandler))

	// --- 3. Áreas ---
	mux.Handle("GET /v1/areas", guarded(domain.PermViewWarehouse, h.Area.ListAreasHandler))
	mux.Handle("GET /v1/areas/{id}", guarded(domain.PermAreaDetails, h.Area.GetAreaHandler))
	mux.Handle("POST /v1/areas", guarded(domain.PermManageAreas, h.Area.CreateAreaHandler))
	mux.Handle("PUT /v1/areas/{id}", guarded(domain.PermManageAreas, h.Area.UpdateAreaHandler))
	mux.Handle("DELETE /v1/areas/{id}", guarded(domain.PermManageAreas, h.Area.DeleteAreaHandler))

	// --- 4. Lotes, retiradas e vendas ---
	mux.Handle("GET /v1/areas/{id}/batches", guarded(domain.PermAreaDetails, h.Stock.ListBatchesHandler))
	mux.Handle("POST /v1/areas/{id}/batches", guarded(domain.PermManageAreaProducts, h.Stock.IntakeHandler))
	mux.Handle("PUT /v1/areas/{id}/batches/{batchID}", guarded(domain.PermManageAreaProducts, h.Stock.UpdateBatchHandler))
	mux.Handle("DELETE /v1/areas/{id}/batches/{batchID}", guarded(domain.PermManageAreaProducts, h.Stock.DeleteBatchHandler))
	mux.Handle("POST /v1/areas/{id}/withdrawals", guarded(domain.PermRegisterSale, h.Stock.WithdrawHandler))
	mux.Handle("POST /v1/areas/{id}/sales", guarded(domain.PermRegisterSale, h.Stock.RegisterSaleHandler))

	// --- 5. Catálogo ---
	mux.Handle("GET /v1/catalog", guarded(domain.PermViewWarehouse, h.Catalog.ListProductsHandler))
	mux.Handle("GET /v1/catalog/{id}", guarded(domain.PermViewWarehouse, h.Catalog.GetProductHandler))
	mux.Handle("POST /v1/catalog", guarded(domain.PermManageCatalog, h.Catalog.CreateProductHandler))
	mux.Handle("PUT /v1/catalog/{id}", guarded(domain.PermManageCatalog, h.Catalog.UpdateProductHandler))
	mux.Handle("DELETE /v1/catalog/{id}", guarded(domain.PermManageCatalog, h.Catalog.DeleteProductHandler))

	// --- 6. Relatórios ---
	mux.Handle("GET /v1/reports/stock", guarded(domain.PermReports, h.Report.StockTotalsHandler))
	mux.Handle("GET /v1/reports/expiry", guarded(domain.PermReports, h.Report.ExpiryAlertsHandler))
	mux.Handle("GET /v1/reports/sales", guarded(domain.PermReports, h.Report.SalesHandler))

	// --- 7. Middlewares globais ---
	global := []func(http.Handler) http.Handler{middleware.RequestLogger(opts.Logger)}
	if opts.RateLimitCache != nil && opts.RateLimitMax > 0 {
		global = append(global, middleware.RateLimiter(opts.RateLimitCache, opts.RateLimitMax, opts.RateLimitPeriod, opts.Logger))
	}
	return middleware.Chain(mux, global...)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
