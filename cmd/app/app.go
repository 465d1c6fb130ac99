//	@title			Catalog API
//	@version		1.0
//	@description	Категории и продукты каталога
//	@BasePath		/

package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/catalog-api/internal/app"
	config "github.com/DRSN-tech/catalog-api/internal/cfg"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	log := logger.NewSlogLogger()

	if err := newRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(log *logger.SlogLogger) *cobra.Command {
	serve := newServeCmd(log)

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "HTTP API категорий и продуктов",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve, newMigrateCmd(log))
	return root
}

func newServeCmd(log *logger.SlogLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер (по умолчанию)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			application, err := app.NewApp(cfg, log)
			if err != nil {
				log.Errorf(err, "failed to initialize app")
				return err
			}

			return application.Run()
		},
	}
}

func newMigrateCmd(log *logger.SlogLogger) *cobra.Command {
	var steps int

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Управление миграциями схемы",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Применить все новые миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(log, false, 0)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Откатить последние миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return runMigrate(log, true, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "количество откатываемых миграций")

	migrate.AddCommand(up, down)
	return migrate
}

func runMigrate(log *logger.SlogLogger, down bool, steps int) error {
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	if err := app.Migrate(cfg, log, down, steps); err != nil {
		log.Errorf(err, "migration failed")
		return err
	}

	return nil
}

func loadConfig(log *logger.SlogLogger) (*config.Config, error) {
	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return nil, err
	}

	if err := log.SetLevelString(cfg.Log.Level); err != nil {
		log.Warnf("%v, keeping info level", err)
	}

	return cfg, nil
}
