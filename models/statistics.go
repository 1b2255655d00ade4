package models

import (
	"errors"
	"slices"
)

// Statistic names, in the order they are emitted as chart labels.
const (
	StatMedianPricePerMeter = "medianPricePerMeter"
	StatAveragePrice        = "averagePrice"
	StatMedianArea          = "medianArea"
	StatAverageFloor        = "averageFloor"
	StatCount               = "count"
)

// StatNames lists every statistic a grouped-statistics chart carries.
var StatNames = []string{
	StatMedianPricePerMeter,
	StatAveragePrice,
	StatMedianArea,
	StatAverageFloor,
	StatCount,
}

// ErrUnknownStatistic is returned for a statistic name outside StatNames.
var ErrUnknownStatistic = errors.New("unknown statistic")

// IsStatName reports whether name is one of StatNames.
func IsStatName(name string) bool {
	return slices.Contains(StatNames, name)
}

// GroupStatistics summarises the records of one group.
//
// AveragePrice and AverageFloor are arithmetic means; the two "median"
// fields are true medians.
type GroupStatistics struct {
	MedianPricePerMeter float64 `json:"medianPricePerMeter"`
	AveragePrice        float64 `json:"averagePrice"`
	MedianArea          float64 `json:"medianArea"`
	AverageFloor        float64 `json:"averageFloor"`
	Count               int     `json:"count"`
}

// StatField is a named statistic value.
type StatField struct {
	Name  string
	Value float64
}

// Fields returns the statistics as ordered name/value pairs.
func (s GroupStatistics) Fields() []StatField {
	return []StatField{
		{Name: StatMedianPricePerMeter, Value: s.MedianPricePerMeter},
		{Name: StatAveragePrice, Value: s.AveragePrice},
		{Name: StatMedianArea, Value: s.MedianArea},
		{Name: StatAverageFloor, Value: s.AverageFloor},
		{Name: StatCount, Value: float64(s.Count)},
	}
}

// GroupSummary pairs a group key with its statistics. Ordered slices of
// GroupSummary are how sorted key→statistics mappings are passed around.
type GroupSummary struct {
	Key        string          `json:"key"`
	Statistics GroupStatistics `json:"statistics"`
}
