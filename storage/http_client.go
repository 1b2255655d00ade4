package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"realestate-insights/models"
)

// ErrUnexpectedStatus is returned when the listings API answers with a
// non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient fetches listings and server-side aggregates from the
// real-estate REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the API rooted at baseURL
// (e.g. "https://host/api/RealEstate").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchDashboardData returns every offer for city.
func (c *HTTPClient) FetchDashboardData(ctx context.Context, city string) (*models.PropertyDataset, error) {
	var dataset models.PropertyDataset
	if err := c.get(ctx, "getRealEstate", url.Values{"city": {city}}, &dataset); err != nil {
		return nil, fmt.Errorf("http: fetch dashboard data: %w", err)
	}
	if dataset.Records == nil {
		dataset.Records = []models.PropertyRecord{}
	}
	return &dataset, nil
}

// FetchGroupedStatistics returns the server-side grouped statistics chart.
func (c *HTTPClient) FetchGroupedStatistics(ctx context.Context, groupField, city string) (models.ChartSeriesData, error) {
	var chart models.ChartSeriesData
	q := url.Values{"groupBy": {groupField}, "city": {city}}
	if err := c.get(ctx, "getGroupedStatistics", q, &chart); err != nil {
		return models.ChartSeriesData{}, fmt.Errorf("http: fetch grouped statistics: %w", err)
	}
	return chart, nil
}

// FetchFilteredByParameter returns the server-side single-statistic chart.
func (c *HTTPClient) FetchFilteredByParameter(ctx context.Context, groupField, city, parameter string) (models.ChartSeriesData, error) {
	var chart models.ChartSeriesData
	q := url.Values{"groupBy": {groupField}, "city": {city}, "parameter": {parameter}}
	if err := c.get(ctx, "getFilteredByParameter", q, &chart); err != nil {
		return models.ChartSeriesData{}, fmt.Errorf("http: fetch filtered by parameter: %w", err)
	}
	return chart, nil
}

// timelineEntry is the wire shape of one timeline point.
type timelineEntry struct {
	AddedDate        string  `json:"addedDate"`
	AvgPricePerMeter float64 `json:"avgPricePerMeter"`
	AvgPrice         float64 `json:"avgPrice"`
	Count            int     `json:"count"`
}

// FetchTimeline returns the daily price history for city.
func (c *HTTPClient) FetchTimeline(ctx context.Context, city string) ([]models.TimelinePoint, error) {
	var entries []timelineEntry
	if err := c.get(ctx, "getTimeLinePrice", url.Values{"city": {city}}, &entries); err != nil {
		return nil, fmt.Errorf("http: fetch timeline: %w", err)
	}

	points := make([]models.TimelinePoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, models.TimelinePoint{
			Date:             e.AddedDate,
			AvgPricePerMeter: e.AvgPricePerMeter,
			AvgPrice:         e.AvgPrice,
			Count:            e.Count,
		})
	}
	return points, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
