package cmd

import (
	"fmt"

	"countries/config"
	"countries/notify"
	"countries/repository"
	"countries/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRootCommand creates the root command for the countries CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "countries",
		Short:        "Countries catalogue backend",
		Long:         "A REST API and web interface for managing a catalogue of countries.",
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewExportCommand())

	return cmd
}

// app bundles what every subcommand needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *zap.SugaredLogger
	db  *gorm.DB
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log.Desugar())

	// database connection
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		stats := config.GetDBStats(a.db)
		a.log.Debugw("closing database", "openConnections", stats.OpenConnections, "waitCount", stats.WaitCount)
		if err := sqlDB.Close(); err != nil {
			a.log.Warnw("error closing database", "error", err)
		}
	}
	_ = a.log.Sync()
}

func (a *app) notifier() notify.Notifier {
	if a.cfg.NotifyURL == "" {
		return notify.Logger{Log: a.log}
	}
	return notify.NewWebhook(a.cfg.NotifyURL, a.cfg.NotifyTimeout)
}

func (a *app) countryService() *service.CountryService {
	return service.NewCountryService(repository.NewCountryStore(a.db), a.notifier(), a.log)
}

func wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", step, err)
}
