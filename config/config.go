package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Drivers de armazenamento aceitos em STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config armazena todas as configurações do aplicativo Laticínios.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Persistência
	StoreDriver string
	DatabaseURL string
	SQLitePath  string
	DBTimeout   time.Duration

	// Cache (Redis); RedisAddr vazio usa cache em memória do processo
	RedisAddr       string
	CacheTimeout    time.Duration
	CatalogCacheTTL time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Vencimentos
	ExpiryAlertDays int
	ExpiryScanCron  string
	Timezone        string

	// Carga inicial; vazio usa os dados de demonstração embutidos
	SeedFile    string
	SeedOnStart bool
}

// LoadConfig carrega as configurações do ambiente. Um arquivo .env, se existir, é lido antes
// e nunca sobrescreve variáveis já definidas.
func LoadConfig(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...) // ausência do .env não é erro

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		// 1. Geral
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		// 2. Persistência
		StoreDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseURL: v.GetString("DATABASE_URL"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		DBTimeout:   time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:       v.GetString("REDIS_ADDR"),
		CacheTimeout:    time.Duration(v.GetInt("CACHE_TIMEOUT_SEC")) * time.Second,
		CatalogCacheTTL: time.Duration(v.GetInt("CATALOG_CACHE_TTL_MIN")) * time.Minute,

		// 4. Segurança (JWT)
		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:  time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,

		// 5. Rate Limiting
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,

		// 6. Vencimentos
		ExpiryAlertDays: v.GetInt("EXPIRY_ALERT_DAYS"),
		ExpiryScanCron:  v.GetString("EXPIRY_SCAN_CRON"),
		Timezone:        v.GetString("TIMEZONE"),

		// 7. Carga inicial
		SeedFile:    v.GetString("SEED_FILE"),
		SeedOnStart: v.GetBool("SEED_ON_START"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "data/laticinios.db")
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("CACHE_TIMEOUT_SEC", 10)
	v.SetDefault("CATALOG_CACHE_TTL_MIN", 10)
	v.SetDefault("JWT_EXPIRY_MIN", 60)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
	v.SetDefault("EXPIRY_ALERT_DAYS", 7)
	v.SetDefault("EXPIRY_SCAN_CRON", "0 6 * * *")
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("SEED_ON_START", false)
}

// Validate confere combinações que impedem a aplicação de subir.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL é obrigatória com STORE_DRIVER=postgres"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH é obrigatório com STORE_DRIVER=sqlite"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q inválido (use postgres, sqlite ou memory)", c.StoreDriver))
	}

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY deve ser definida"))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser maior que zero"))
	}
	if c.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_MIN deve ser maior que zero"))
	}
	if c.ExpiryAlertDays < 0 {
		errs = append(errs, errors.New("EXPIRY_ALERT_DAYS não pode ser negativo"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE inválido: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("erro de configuração: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolve o fuso usado para "hoje" nos alertas de vencimento.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// IsDevelopment indica ambiente de desenvolvimento (logger de console).
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
