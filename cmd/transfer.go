package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"realestate-insights/models"
	"realestate-insights/services"
	"realestate-insights/storage"
	"realestate-insights/utils"
)

func newImportCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV listing export into PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer func() { _ = d.logger.Sync() }()

			if path == "" {
				path = d.cfg.CSVInputPath
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			defer f.Close()

			store, err := storage.NewPostgresStore(cmd.Context(), d.cfg.DSN(), d.retry())
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			n, err := runImport(cmd.Context(), f, store, d.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d offers from %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "CSV file to import (default CSV_INPUT_PATH)")
	return cmd
}

// runImport cleans the CSV offers read from r and replaces the writer's
// contents with them. The writer is closed on return.
func runImport(ctx context.Context, r io.Reader, w storage.ListingWriter, logger *utils.Logger) (int, error) {
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn("closing writer: %v", err)
		}
	}()

	records, err := storage.ReadListingsCSV(r)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	cleaned := services.NewCleaner(logger).Clean(&models.PropertyDataset{TotalCount: len(records), Records: records})
	if cleaned.Len() == 0 {
		return 0, fmt.Errorf("import: no offers left after cleaning")
	}

	if err := w.Write(ctx, cleaned.Records); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	logger.Info("stored %d offers (%d read)", cleaned.Len(), len(records))
	return cleaned.Len(), nil
}

func newExportCmd() *cobra.Command {
	var city, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one city's offers from the configured source as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer func() { _ = d.logger.Sync() }()

			if city == "" {
				city = d.cfg.DefaultCity
			}

			source, closeSource, err := d.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				defer f.Close()
				w = f
			}

			n, err := runExport(cmd.Context(), source, city, w)
			if err != nil {
				return err
			}
			d.logger.Info("exported %d offers for %s", n, city)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city to export (default DEFAULT_CITY)")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return cmd
}

func runExport(ctx context.Context, source storage.DatasetSource, city string, w io.Writer) (int, error) {
	if !models.IsAllowedCity(city) {
		return 0, fmt.Errorf("export: city %q: %w", city, models.ErrUnknownCity)
	}

	dataset, err := source.FetchDashboardData(ctx, city)
	if err != nil {
		return 0, fmt.Errorf("export: fetch %s: %w", city, err)
	}
	if err := storage.WriteListingsCSV(w, dataset.Records); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	return dataset.Len(), nil
}
