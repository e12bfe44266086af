package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"laticinios/config"
	_ "laticinios/docs" // Registra o swagger.json gerado pelo swag
	"laticinios/internal/app"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/seed"
)

// @title           Laticínios API
// @version         1.0
// @description     Controle de estoque do armazém de laticínios: áreas, catálogo, lotes, vendas e relatórios.
// @BasePath        /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço Laticínios...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	var appLog logger.Logger
	if cfg.IsDevelopment() {
		appLog = logger.NewDevelopmentLogger(cfg.LogLevel)
	} else {
		appLog = logger.NewLogger(cfg.LogLevel)
	}
	if s, ok := appLog.(interface{ Sync() error }); ok {
		defer s.Sync()
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "store": cfg.StoreDriver})

	ctx := context.Background()

	// 2. Conexão com Recursos de Infraestrutura
	cacheClient, err := app.NewCache(cfg, appLog)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao cache.", err)
	}

	repos, err := app.OpenRepositories(ctx, cfg, cacheClient, appLog)
	if err != nil {
		appLog.Fatal("Falha ao abrir o armazenamento.", err)
	}
	defer repos.Close()

	// 3. Injeção de Dependências: Repository -> Service -> Handler
	services := app.NewServices(cfg, repos, cacheClient, appLog)

	if cfg.SeedOnStart {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			appLog.Fatal("Falha ao ler arquivo de carga inicial.", err)
		}
		if _, err := services.Seeder(appLog).Run(ctx, f); err != nil {
			appLog.Fatal("Falha na carga inicial.", err)
		}
	}

	sched := services.Scheduler(cfg, appLog)
	if err := sched.Start(); err != nil {
		appLog.Fatal("Falha ao iniciar o agendador.", err)
	}

	// 4. Servidor HTTP
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      services.Handler(cfg, cacheClient, appLog),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor Laticínios ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}
	sched.Stop()

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
