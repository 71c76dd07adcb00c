package cmd

import (
	"bytes"
	"fmt"
	"os"

	"countries/export"
	"countries/migrations"

	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the countries table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if fresh {
				// drop tables
				if err := migrations.Wipe(a.db); err != nil {
					return err
				}
			}
			if err := migrations.Migrate(a.db); err != nil {
				return err
			}
			a.log.Infow("migration complete", "fresh", fresh)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "drop existing tables first")

	return cmd
}

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample countries into an empty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if err := migrations.Migrate(a.db); err != nil {
				return err
			}
			n, err := migrations.Seed(cmd.Context(), a.db, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d countries\n", n)
			return nil
		},
	}
}

func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all countries to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			countries, err := a.countryService().ListAll(cmd.Context())
			if err != nil {
				return wrap("list countries", err)
			}

			var buf bytes.Buffer
			if err := export.WriteXLSX(&buf, countries); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return wrap("write export", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d countries to %s\n", len(countries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "countries.xlsx", "destination file")

	return cmd
}
