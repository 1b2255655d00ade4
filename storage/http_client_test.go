package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_FetchDashboardData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/RealEstate/getRealEstate", r.URL.Path)
		assert.Equal(t, "Katowice", r.URL.Query().Get("city"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalCount": 2,
			"data": [
				{"id": 1, "price": 350000, "pricePerMeter": 7000, "floor": 3, "market": "secondary",
				 "buildingType": "block", "area": 50, "private": false,
				 "location": {"lat": 50.25, "lon": 19.02, "city": "Katowice", "district": "Ligota"},
				 "photos": []},
				{"id": 2, "price": 420000, "pricePerMeter": null, "market": null,
				 "location": {"city": "Katowice"}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/api/RealEstate/", time.Second)
	dataset, err := c.FetchDashboardData(context.Background(), "Katowice")

	require.NoError(t, err)
	assert.Equal(t, 2, dataset.TotalCount)
	require.Len(t, dataset.Records, 2)
	assert.Equal(t, "Ligota", dataset.Records[0].Location.District)
	assert.Equal(t, 0.0, dataset.Records[1].PricePerMeter)
	assert.Equal(t, "", dataset.Records[1].Market)
}

func TestHTTPClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.FetchDashboardData(context.Background(), "Krakow")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPClient_FetchFilteredByParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/getFilteredByParameter", r.URL.Path)
		assert.Equal(t, "market", q.Get("groupBy"))
		assert.Equal(t, "medianArea", q.Get("parameter"))
		_, _ = w.Write([]byte(`{"labels":["medianArea"],"datasets":[{"label":"primary","data":[55]}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	chart, err := c.FetchFilteredByParameter(context.Background(), "market", "Krakow", "medianArea")

	require.NoError(t, err)
	assert.Equal(t, []string{"medianArea"}, chart.Labels)
	assert.Equal(t, []float64{55}, chart.Datasets[0].Data)
}

func TestHTTPClient_FetchTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getTimeLinePrice", r.URL.Path)
		_, _ = w.Write([]byte(`[{"addedDate":"2025-06-01","avgPricePerMeter":12000.5,"avgPrice":500000,"count":4}]`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	points, err := c.FetchTimeline(context.Background(), "Krakow")

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2025-06-01", points[0].Date)
	assert.Equal(t, 12000.5, points[0].AvgPricePerMeter)
	assert.Equal(t, 4, points[0].Count)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.FetchDashboardData(ctx, "Krakow")

	assert.ErrorIs(t, err, context.Canceled)
}
