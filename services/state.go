package services

import (
	"slices"

	"realestate-insights/models"
)

// Status is the pipeline's position in its fetch/compute cycle.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusFetching  Status = "fetching"
	StatusComputing Status = "computing"
	StatusReady     Status = "ready"
	StatusFailed    Status = "failed"
)

// EngineState is everything the presentation layer reads. It is owned by
// a Pipeline. Snapshots carry their own copies of the charts and the
// timeline; CurrentDataset and Insights are shared with the pipeline and
// must be treated as read-only.
type EngineState struct {
	Version            uint64 `json:"version"`
	Status             Status `json:"status"`
	SelectedCity       string `json:"selectedCity"`
	SelectedGroupField string `json:"selectedGroupField"`
	FilterParameter    string `json:"filterParameter"`
	FetchInFlight      bool   `json:"fetchInFlight"`
	LastError          string `json:"lastError,omitempty"`

	CurrentDataset            *models.PropertyDataset `json:"-"`
	LastComputedChart         models.ChartSeriesData  `json:"lastComputedChart"`
	LastComputedStatistics    models.ChartSeriesData  `json:"lastComputedStatistics"`
	LastComputedFilteredChart models.ChartSeriesData  `json:"lastComputedFilteredChart"`

	Timeline                 []models.TimelinePoint `json:"timeline"`
	Insights                 *models.InsightReport  `json:"-"`
	AveragePriceText         string                 `json:"averagePriceText"`
	AveragePricePerMeterText string                 `json:"averagePricePerMeterText"`
}

// DatasetSize is the number of records currently held.
func (s EngineState) DatasetSize() int {
	return s.CurrentDataset.Len()
}

func (s *EngineState) applyProjection(p Projection) {
	s.LastComputedChart = p.Grouped
	s.LastComputedStatistics = p.Statistics
	s.LastComputedFilteredChart = p.Filtered
}

// clone copies s so that its charts and timeline share nothing with s.
func (s EngineState) clone() EngineState {
	out := s
	out.LastComputedChart = s.LastComputedChart.Clone()
	out.LastComputedStatistics = s.LastComputedStatistics.Clone()
	out.LastComputedFilteredChart = s.LastComputedFilteredChart.Clone()
	out.Timeline = slices.Clone(s.Timeline)
	return out
}
