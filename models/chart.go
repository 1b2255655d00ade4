package models

import "slices"

// ChartDataset is one series of a chart. Data is aligned 1:1 with the
// owning chart's Labels.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color,omitempty"`
}

// ChartSeriesData is the label/series structure handed to the
// presentation layer.
type ChartSeriesData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// IsEmpty reports whether the chart carries no labels.
func (c ChartSeriesData) IsEmpty() bool {
	return len(c.Labels) == 0
}

// Clone returns a copy that shares no slices with c.
func (c ChartSeriesData) Clone() ChartSeriesData {
	out := ChartSeriesData{Labels: slices.Clone(c.Labels)}
	if c.Datasets != nil {
		out.Datasets = make([]ChartDataset, len(c.Datasets))
		for i, ds := range c.Datasets {
			ds.Data = slices.Clone(ds.Data)
			out.Datasets[i] = ds
		}
	}
	return out
}
