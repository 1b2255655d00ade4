package services

import (
	"fmt"
	"sort"

	"realestate-insights/models"
)

// Median returns the median of values without modifying the input. An
// even number of values yields the mean of the two central elements;
// empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mean returns the arithmetic mean of values, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Summarize computes the statistics for one group of records.
func Summarize(records []models.PropertyRecord) models.GroupStatistics {
	n := len(records)
	if n == 0 {
		return models.GroupStatistics{}
	}

	pricePerMeter := make([]float64, n)
	prices := make([]float64, n)
	areas := make([]float64, n)
	floors := make([]float64, n)
	for i, r := range records {
		pricePerMeter[i] = r.PricePerMeter
		prices[i] = r.Price
		areas[i] = r.Area
		floors[i] = float64(r.Floor)
	}

	return models.GroupStatistics{
		MedianPricePerMeter: Median(pricePerMeter),
		AveragePrice:        Mean(prices),
		MedianArea:          Median(areas),
		AverageFloor:        Mean(floors),
		Count:               n,
	}
}

// KeyedStatistics is the statistics of the group selected by Key.
type KeyedStatistics[K comparable] struct {
	Key        K
	Statistics models.GroupStatistics
}

// CalculateStatisticsGroupBy groups records by keySelector, summarizes
// each group and returns the groups ordered by ascending median price
// per meter. Ties keep the order in which keys were first seen.
func CalculateStatisticsGroupBy[K comparable](
	records []models.PropertyRecord,
	keySelector func(models.PropertyRecord) K,
) []KeyedStatistics[K] {
	grouped := make(map[K][]models.PropertyRecord)
	order := make([]K, 0)

	for _, r := range records {
		key := keySelector(r)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], r)
	}

	result := make([]KeyedStatistics[K], 0, len(order))
	for _, key := range order {
		result = append(result, KeyedStatistics[K]{
			Key:        key,
			Statistics: Summarize(grouped[key]),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Statistics.MedianPricePerMeter < result[j].Statistics.MedianPricePerMeter
	})
	return result
}

// StatisticsByPath is CalculateStatisticsGroupBy keyed by the normalized
// value at path, returned in the shape the chart projector consumes.
func StatisticsByPath(records []models.PropertyRecord, path string) []models.GroupSummary {
	keyed := CalculateStatisticsGroupBy(records, func(r models.PropertyRecord) string {
		return NormalizeKey(Resolve(r, path))
	})
	return ToSummaries(keyed)
}

// ToSummaries converts keyed statistics to string-keyed summaries,
// keeping their order.
func ToSummaries[K comparable](keyed []KeyedStatistics[K]) []models.GroupSummary {
	out := make([]models.GroupSummary, 0, len(keyed))
	for _, k := range keyed {
		out = append(out, models.GroupSummary{
			Key:        fmt.Sprint(k.Key),
			Statistics: k.Statistics,
		})
	}
	return out
}
