package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"realestate-insights/charts"
	"realestate-insights/models"
	"realestate-insights/services"
	"realestate-insights/storage"
	"realestate-insights/utils"
)

type reportOptions struct {
	city       string
	groupField string
	parameter  string
	server     bool
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch one city and print its grouped charts as tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer func() { _ = d.logger.Sync() }()

			if opts.city == "" {
				opts.city = d.cfg.DefaultCity
			}
			if opts.groupField == "" {
				opts.groupField = d.cfg.DefaultGroupField
			}

			source, closeSource, err := d.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			return runReport(cmd.Context(), cmd.OutOrStdout(), source, d.logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.city, "city", "", "city to report on (default DEFAULT_CITY)")
	cmd.Flags().StringVar(&opts.groupField, "field", "", "record path to group by (default DEFAULT_GROUP_FIELD)")
	cmd.Flags().StringVar(&opts.parameter, "parameter", services.DefaultFilterParameter, "statistic shown in the filtered table")
	cmd.Flags().BoolVar(&opts.server, "server", false, "also print the source's own aggregation")

	return cmd
}

func runReport(ctx context.Context, out io.Writer, source storage.DatasetSource, logger *utils.Logger, opts *reportOptions) error {
	if !models.IsAllowedGroupField(opts.groupField) {
		return fmt.Errorf("report: field %q: %w", opts.groupField, models.ErrUnsupportedGroupField)
	}

	pipeline := services.NewPipeline(source,
		services.WithLogger(logger),
		services.WithInitialSelection(opts.city, opts.groupField),
		services.WithFilterParameter(opts.parameter),
	)
	defer func() { _ = pipeline.Shutdown(ctx) }()

	if err := pipeline.Start(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	pipeline.Wait()

	s := pipeline.Snapshot()
	if s.Status == services.StatusFailed {
		return fmt.Errorf("report: fetch %s: %s", opts.city, s.LastError)
	}

	fmt.Fprintf(out, "%s: %d offers grouped by %s\n\n", s.SelectedCity, s.DatasetSize(), s.SelectedGroupField)
	renderChart(out, "Offers by "+s.SelectedGroupField, s.LastComputedChart)
	renderChart(out, "Statistics by "+s.SelectedGroupField, s.LastComputedStatistics)
	renderChart(out, s.FilterParameter+" by "+s.SelectedGroupField, s.LastComputedFilteredChart)
	if s.FilterParameter != models.StatMedianArea {
		renderChart(out, models.StatMedianArea+" by "+s.SelectedGroupField,
			charts.FilterByParameter(s.LastComputedStatistics, models.StatMedianArea))
	}

	fmt.Fprintln(out, s.AveragePriceText)
	fmt.Fprintln(out, s.AveragePricePerMeterText)

	if opts.server {
		grouped, filtered, err := pipeline.ServerStatistics(ctx)
		if err != nil {
			return fmt.Errorf("report: server statistics: %w", err)
		}
		fmt.Fprintln(out)
		renderChart(out, "Source statistics by "+s.SelectedGroupField, grouped)
		renderChart(out, "Source "+s.FilterParameter+" by "+s.SelectedGroupField, filtered)
	}
	return nil
}

// renderChart prints one row per dataset and one column per label.
func renderChart(out io.Writer, title string, chart models.ChartSeriesData) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle(title)

	header := table.Row{"Series"}
	for _, label := range chart.Labels {
		header = append(header, label)
	}
	t.AppendHeader(header)

	for _, ds := range chart.Datasets {
		row := table.Row{ds.Label}
		for _, v := range ds.Data {
			row = append(row, formatValue(v))
		}
		t.AppendRow(row)
	}

	if chart.IsEmpty() {
		t.AppendFooter(table.Row{"no data"})
	}

	t.Render()
	fmt.Fprintln(out)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return services.FormatAmount(v)
}
