// Package charts turns grouped counts and per-group statistics into the
// label/series structures consumed by the presentation layer.
package charts

import (
	"math"
	"sort"
	"strconv"

	"realestate-insights/models"
)

// CountLabel names the single dataset of a count projection.
const CountLabel = "offer count"

// palette is cycled by dataset index.
var palette = []string{
	"rgba(54, 162, 235, 0.7)",
	"rgba(255, 99, 132, 0.7)",
	"rgba(255, 206, 86, 0.7)",
	"rgba(75, 192, 192, 0.7)",
	"rgba(153, 102, 255, 0.7)",
	"rgba(255, 159, 64, 0.7)",
}

// Empty returns the sentinel chart handed out for empty input and after
// failed fetches.
func Empty() models.ChartSeriesData {
	return models.ChartSeriesData{
		Labels: []string{},
		Datasets: []models.ChartDataset{
			{Label: CountLabel, Data: []float64{}},
		},
	}
}

// ColorFor returns the palette colour for the i-th dataset.
func ColorFor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Counts projects a key→count mapping into a single-dataset chart. When
// every key is numeric the labels are sorted by value; otherwise keys are
// emitted in the order given.
func Counts(keys []string, counts map[string]int) models.ChartSeriesData {
	if len(keys) == 0 {
		return Empty()
	}

	labels := make([]string, len(keys))
	copy(labels, keys)
	if values, ok := parseAll(labels); ok {
		sort.SliceStable(labels, func(i, j int) bool { return values[labels[i]] < values[labels[j]] })
	}

	data := make([]float64, len(labels))
	for i, k := range labels {
		data[i] = float64(counts[k])
	}

	return models.ChartSeriesData{
		Labels:   labels,
		Datasets: []models.ChartDataset{{Label: CountLabel, Data: data}},
	}
}

// GroupedStatistics projects ordered group summaries into a chart with
// one label per statistic and one coloured dataset per group.
func GroupedStatistics(groups []models.GroupSummary) models.ChartSeriesData {
	if len(groups) == 0 {
		return Empty()
	}

	labels := make([]string, 0)
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, f := range g.Statistics.Fields() {
			if !seen[f.Name] {
				seen[f.Name] = true
				labels = append(labels, f.Name)
			}
		}
	}

	datasets := make([]models.ChartDataset, 0, len(groups))
	for i, g := range groups {
		values := make(map[string]float64)
		for _, f := range g.Statistics.Fields() {
			values[f.Name] = f.Value
		}

		data := make([]float64, len(labels))
		for j, label := range labels {
			data[j] = values[label]
		}
		datasets = append(datasets, models.ChartDataset{
			Label: g.Key,
			Data:  data,
			Color: ColorFor(i),
		})
	}

	return models.ChartSeriesData{Labels: labels, Datasets: datasets}
}

// FilterByParameter narrows a grouped-statistics chart to one statistic:
// every group keeps a single value and its own label. An unknown
// parameter yields the empty chart.
func FilterByParameter(chart models.ChartSeriesData, parameter string) models.ChartSeriesData {
	idx := -1
	for i, label := range chart.Labels {
		if label == parameter {
			idx = i
			break
		}
	}
	if idx < 0 || len(chart.Datasets) == 0 {
		return Empty()
	}

	datasets := make([]models.ChartDataset, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		var value float64
		if idx < len(ds.Data) {
			value = ds.Data[idx]
		}
		datasets = append(datasets, models.ChartDataset{
			Label: ds.Label,
			Data:  []float64{value},
			Color: ds.Color,
		})
	}

	return models.ChartSeriesData{
		Labels:   []string{parameter},
		Datasets: datasets,
	}
}

func parseAll(keys []string) (map[string]float64, bool) {
	values := make(map[string]float64, len(keys))
	for _, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		values[k] = v
	}
	return values, true
}
