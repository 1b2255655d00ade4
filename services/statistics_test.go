package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-insights/models"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{100, 200, 300}, 200},
		{[]float64{100, 200, 300, 400}, 250},
		{[]float64{300, 100, 200}, 200},
		{[]float64{7}, 7},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := Median(tt.values); got != tt.want {
			t.Errorf("Median(%v) = %v; want %v", tt.values, got, tt.want)
		}
	}
}

func TestMedianOrderIndependentAndBounded(t *testing.T) {
	inputs := [][]float64{
		{5, 1, 9, 3, 3},
		{-4, 10, 2.5, 8},
		{42},
		{1e6, 1e-3, 77, 77, 12, 0},
	}

	for _, values := range inputs {
		reversed := make([]float64, len(values))
		for i, v := range values {
			reversed[len(values)-1-i] = v
		}

		m := Median(values)
		assert.Equal(t, m, Median(reversed), "median of %v", values)

		lo, hi := values[0], values[0]
		for _, v := range values {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		assert.GreaterOrEqual(t, m, lo)
		assert.LessOrEqual(t, m, hi)
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
}

func TestSummarize(t *testing.T) {
	records := []models.PropertyRecord{
		{PricePerMeter: 100, Price: 300000, Area: 30, Floor: 1},
		{PricePerMeter: 300, Price: 500000, Area: 50, Floor: 4},
		{PricePerMeter: 200, Price: 400000, Area: 70, Floor: 1},
	}

	s := Summarize(records)

	assert.Equal(t, models.GroupStatistics{
		MedianPricePerMeter: 200,
		AveragePrice:        400000,
		MedianArea:          50,
		AverageFloor:        2,
		Count:               3,
	}, s)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, models.GroupStatistics{}, Summarize(nil))
}

func TestCalculateStatisticsGroupBySortsByMedianPricePerMeter(t *testing.T) {
	records := []models.PropertyRecord{
		{Market: "primary", PricePerMeter: 300},
		{Market: "secondary", PricePerMeter: 100},
		{Market: "auction", PricePerMeter: 300},
		{Market: "primary", PricePerMeter: 300},
	}

	got := CalculateStatisticsGroupBy(records, func(r models.PropertyRecord) string { return r.Market })

	require.Len(t, got, 3)
	assert.Equal(t, "secondary", got[0].Key)
	assert.Equal(t, "primary", got[1].Key, "ties keep first-seen order")
	assert.Equal(t, "auction", got[2].Key)
	assert.Equal(t, 2, got[1].Statistics.Count)
}

func TestCalculateStatisticsGroupByArbitraryKey(t *testing.T) {
	records := sampleRecords()

	got := CalculateStatisticsGroupBy(records, func(r models.PropertyRecord) bool { return r.Area >= 50 })

	require.Len(t, got, 2)
	total := 0
	for _, g := range got {
		total += g.Statistics.Count
	}
	assert.Equal(t, len(records), total)
	assert.False(t, got[0].Key, "smaller flats have the lower median price per meter")
}

func TestStatisticsByPath(t *testing.T) {
	got := StatisticsByPath(sampleRecords(), "market")

	require.Len(t, got, 2)
	assert.Equal(t, "secondary", got[0].Key)
	assert.Equal(t, 3, got[0].Statistics.Count)
	assert.Equal(t, 11200.0, got[0].Statistics.MedianPricePerMeter)
	assert.Equal(t, "primary", got[1].Key)
	assert.InDelta(t, 16228.57, got[1].Statistics.MedianPricePerMeter, 0.01)
}
