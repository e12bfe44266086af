// Comando de manutenção do banco: migrações goose e carga inicial.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate status
//	go run ./cmd/migrate seed --file dados.yaml
package main

import (
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"laticinios/config"
	"laticinios/internal/app"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/seed"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	envFile  string
	seedFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Migrações e carga inicial do banco de laticínios",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "arquivo .env opcional")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Aplica todas as migrações pendentes",
		Args:  cobra.NoArgs,
		RunE:  c.runUp,
	}
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Desfaz a última migração aplicada",
		Args:  cobra.NoArgs,
		RunE:  c.runDown,
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Lista as migrações e seu estado",
		Args:  cobra.NoArgs,
		RunE:  c.runStatus,
	}
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Carrega usuários, catálogo, áreas e lotes iniciais",
		Long: `Aplica as migrações pendentes e insere os dados do arquivo YAML
(ou da carga padrão embutida). Entidades que já existem são ignoradas.`,
		Args: cobra.NoArgs,
		RunE: c.runSeed,
	}
	seedCmd.Flags().StringVar(&c.seedFile, "file", "", "arquivo YAML de carga (padrão: SEED_FILE ou carga embutida)")

	root.AddCommand(upCmd, downCmd, statusCmd, seedCmd)
	return root
}

func (c *cli) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(c.envFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.StoreDriver == config.DriverMemory {
		return nil, nil, fmt.Errorf("STORE_DRIVER=memory não possui banco para migrar")
	}
	return cfg, logger.NewDevelopmentLogger(cfg.LogLevel), nil
}

func (c *cli) withProvider(fn func(*goose.Provider) error) error {
	cfg, _, err := c.load()
	if err != nil {
		return err
	}
	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := database.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(provider)
}

func (c *cli) runUp(cmd *cobra.Command, _ []string) error {
	return c.withProvider(func(p *goose.Provider) error {
		results, err := p.Up(cmd.Context())
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), r.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "goose up: %d migração(ões) aplicada(s)\n", len(results))
		return nil
	})
}

func (c *cli) runDown(cmd *cobra.Command, _ []string) error {
	return c.withProvider(func(p *goose.Provider) error {
		result, err := p.Down(cmd.Context())
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	})
}

func (c *cli) runStatus(cmd *cobra.Command, _ []string) error {
	return c.withProvider(func(p *goose.Provider) error {
		statuses, err := p.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-20s %s\n", s.State, applied, s.Source.Path)
		}
		return nil
	})
}

func (c *cli) runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := c.load()
	if err != nil {
		return err
	}

	path := c.seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	f, err := seed.Load(path)
	if err != nil {
		return err
	}

	cacheClient, err := app.NewCache(cfg, log)
	if err != nil {
		return err
	}
	repos, err := app.OpenRepositories(cmd.Context(), cfg, cacheClient, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	sum, err := app.NewServices(cfg, repos, cacheClient, log).Seeder(log).Run(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "carga concluída: %d usuários, %d produtos, %d áreas, %d lotes (%d ignorados)\n",
		sum.Users, sum.Products, sum.Areas, sum.Batches, sum.Skipped)
	return nil
}
