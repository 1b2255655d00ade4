package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-insights/models"
)

func assertAligned(t *testing.T, c models.ChartSeriesData) {
	t.Helper()
	for i, ds := range c.Datasets {
		assert.Len(t, ds.Data, len(c.Labels), "dataset %d not aligned with labels", i)
	}
}

func TestEmptyProjections(t *testing.T) {
	want := models.ChartSeriesData{
		Labels:   []string{},
		Datasets: []models.ChartDataset{{Label: "offer count", Data: []float64{}}},
	}

	assert.Equal(t, want, Counts(nil, nil))
	assert.Equal(t, want, GroupedStatistics(nil))
	assert.Equal(t, want, FilterByParameter(GroupedStatistics(nil), models.StatMedianPricePerMeter))
}

func TestCountsSortsNumericKeys(t *testing.T) {
	keys := []string{"10000", "5000", "-200"}
	counts := map[string]int{"5000": 3, "10000": 2, "-200": 1}

	c := Counts(keys, counts)

	assert.Equal(t, []string{"-200", "5000", "10000"}, c.Labels)
	require.Len(t, c.Datasets, 1)
	assert.Equal(t, CountLabel, c.Datasets[0].Label)
	assert.Equal(t, []float64{1, 3, 2}, c.Datasets[0].Data)
	assertAligned(t, c)
	assert.Equal(t, []string{"10000", "5000", "-200"}, keys, "input keys must not be reordered")
}

func TestCountsKeepsFirstSeenOrderForText(t *testing.T) {
	keys := []string{"block", "tenement", "Unknown", "2"}
	counts := map[string]int{"block": 4, "tenement": 1, "Unknown": 2, "2": 1}

	c := Counts(keys, counts)

	assert.Equal(t, keys, c.Labels)
	assert.Equal(t, []float64{4, 1, 2, 1}, c.Datasets[0].Data)
}

func TestGroupedStatistics(t *testing.T) {
	groups := []models.GroupSummary{
		{Key: "A", Statistics: models.GroupStatistics{MedianPricePerMeter: 100, AveragePrice: 500000, MedianArea: 40, AverageFloor: 2, Count: 3}},
		{Key: "B", Statistics: models.GroupStatistics{MedianPricePerMeter: 200, Count: 1}},
	}

	c := GroupedStatistics(groups)

	assert.Equal(t, []string{
		models.StatMedianPricePerMeter,
		models.StatAveragePrice,
		models.StatMedianArea,
		models.StatAverageFloor,
		models.StatCount,
	}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Equal(t, "A", c.Datasets[0].Label)
	assert.Equal(t, []float64{100, 500000, 40, 2, 3}, c.Datasets[0].Data)
	assert.Equal(t, "rgba(54, 162, 235, 0.7)", c.Datasets[0].Color)
	assert.Equal(t, "rgba(255, 99, 132, 0.7)", c.Datasets[1].Color)
	assertAligned(t, c)
}

func TestColorCyclesEverySixDatasets(t *testing.T) {
	assert.Equal(t, ColorFor(0), ColorFor(6))
	assert.Equal(t, ColorFor(1), ColorFor(13))
	assert.NotEqual(t, ColorFor(0), ColorFor(5))
}

func TestFilterByParameter(t *testing.T) {
	groups := []models.GroupSummary{
		{Key: "A", Statistics: models.GroupStatistics{MedianPricePerMeter: 100, Count: 1}},
		{Key: "B", Statistics: models.GroupStatistics{MedianPricePerMeter: 200, Count: 2}},
	}

	c := FilterByParameter(GroupedStatistics(groups), models.StatMedianPricePerMeter)

	assert.Equal(t, []string{models.StatMedianPricePerMeter}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Equal(t, "A", c.Datasets[0].Label)
	assert.Equal(t, []float64{100}, c.Datasets[0].Data)
	assert.Equal(t, "B", c.Datasets[1].Label)
	assert.Equal(t, []float64{200}, c.Datasets[1].Data)
	assertAligned(t, c)
}

func TestFilterByUnknownParameter(t *testing.T) {
	groups := []models.GroupSummary{{Key: "A", Statistics: models.GroupStatistics{Count: 1}}}

	c := FilterByParameter(GroupedStatistics(groups), "medianPrice")

	assert.Equal(t, Empty(), c)
}

func TestCountsTreatsNonFiniteKeysAsText(t *testing.T) {
	keys := []string{"Infinity", "NaN", "5"}
	counts := map[string]int{"Infinity": 1, "NaN": 1, "5": 2}

	c := Counts(keys, counts)

	assert.Equal(t, keys, c.Labels)
	assert.Equal(t, []float64{1, 1, 2}, c.Datasets[0].Data)
}
