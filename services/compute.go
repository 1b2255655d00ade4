package services

import (
	"realestate-insights/charts"
	"realestate-insights/models"
)

// Projection is the output of one computation pass over a dataset.
type Projection struct {
	Grouped    models.ChartSeriesData // offer counts per group, binned when numeric
	Statistics models.ChartSeriesData // every statistic for every group
	Filtered   models.ChartSeriesData // one statistic for every group
}

// EmptyProjection is the projection of an empty dataset.
func EmptyProjection() Projection {
	return Projection{Grouped: charts.Empty(), Statistics: charts.Empty(), Filtered: charts.Empty()}
}

// Compute runs grouping, binning, statistics and projection over dataset.
// Its only inputs are the dataset, the grouping path and the statistic
// name used for the filtered chart; it has no side effects.
func Compute(dataset *models.PropertyDataset, groupField, parameter string) Projection {
	if dataset.Len() == 0 {
		return EmptyProjection()
	}
	records := dataset.Records

	g := Group(records, groupField)
	keys, counts := g.Keys, g.Counts
	if AllNumeric(keys) {
		keys, counts = binnedCounts(BinCounts(keys, counts, BinSizeFor(groupField)))
	}

	statistics := charts.GroupedStatistics(StatisticsByPath(records, groupField))

	return Projection{
		Grouped:    charts.Counts(keys, counts),
		Statistics: statistics,
		Filtered:   charts.FilterByParameter(statistics, parameter),
	}
}

func binnedCounts(bins []Bin) ([]string, map[string]int) {
	keys := make([]string, 0, len(bins))
	counts := make(map[string]int, len(bins))
	for _, b := range bins {
		keys = append(keys, b.Label)
		counts[b.Label] = b.Count
	}
	return keys, counts
}
