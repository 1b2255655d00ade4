package storage

import (
	"context"

	"realestate-insights/models"
)

// DatasetSource is the minimum a fetch collaborator must provide: the
// full set of offers for one city.
type DatasetSource interface {
	FetchDashboardData(ctx context.Context, city string) (*models.PropertyDataset, error)
}

// TimelineSource provides the daily price history of a city.
type TimelineSource interface {
	FetchTimeline(ctx context.Context, city string) ([]models.TimelinePoint, error)
}

// Fetcher is a source that can also aggregate server-side.
type Fetcher interface {
	DatasetSource
	TimelineSource
	FetchGroupedStatistics(ctx context.Context, groupField, city string) (models.ChartSeriesData, error)
	FetchFilteredByParameter(ctx context.Context, groupField, city, parameter string) (models.ChartSeriesData, error)
}

// ListingWriter replaces the offers held by a store that a source later
// reads from.
type ListingWriter interface {
	Write(ctx context.Context, records []models.PropertyRecord) error
	Close() error
}
