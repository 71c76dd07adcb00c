package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"countries/migrations"
	"countries/server"
	"countries/service"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	Addr   string
	NoSeed bool
}

func NewServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Migrate the database, seed sample data into an empty table, and serve the API and web pages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&opts.NoSeed, "no-seed", false, "do not insert sample data")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	// migrations and seeders
	if err := migrations.Migrate(a.db); err != nil {
		return err
	}
	if !opts.NoSeed {
		if _, err := migrations.Seed(cmd.Context(), a.db, a.log); err != nil {
			return err
		}
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return wrap("database handle", err)
	}

	countries := a.countryService()
	srv, err := server.New(countries, service.NewStatisticsService(countries), sqlDB, a.log)
	if err != nil {
		return err
	}

	addr := a.cfg.HTTPAddr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, addr)
}
