package services

import (
	"testing"

	"realestate-insights/models"
	"realestate-insights/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func TestCleanerNormalisesText(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := &models.PropertyDataset{TotalCount: 1, Records: []models.PropertyRecord{
		{ID: 1, Title: "  Sunny   flat ", BuildingType: " block\t", Location: models.Location{District: "Nowa   Huta"}},
	}}

	out := c.Clean(in)

	r := out.Records[0]
	if r.Title != "Sunny flat" {
		t.Errorf("Title = %q; want %q", r.Title, "Sunny flat")
	}
	if r.BuildingType != "block" {
		t.Errorf("BuildingType = %q; want %q", r.BuildingType, "block")
	}
	if r.Location.District != "Nowa Huta" {
		t.Errorf("District = %q; want %q", r.Location.District, "Nowa Huta")
	}
	if in.Records[0].Title != "  Sunny   flat " {
		t.Error("Clean must not modify the input dataset")
	}
}

func TestCleanerDeduplicatesOffers(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := &models.PropertyDataset{TotalCount: 4, Records: []models.PropertyRecord{
		{ID: 1, URL: "https://example.pl/1"},
		{ID: 1, URL: "https://example.pl/1"},
		{URL: "https://example.pl/9"},
		{URL: " https://example.pl/9 "},
	}}

	out := c.Clean(in)
	if len(out.Records) != 2 {
		t.Errorf("expected 2 offers after deduplication, got %d", len(out.Records))
	}
	if out.TotalCount != 4 {
		t.Errorf("TotalCount = %d; want source value 4", out.TotalCount)
	}
}

func TestCleanerKeepsAnonymousRecords(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := &models.PropertyDataset{Records: []models.PropertyRecord{{Price: 1}, {Price: 2}}}

	if got := len(c.Clean(in).Records); got != 2 {
		t.Errorf("records without id or url must be kept, got %d", got)
	}
}

func TestCleanerDerivesPricePerMeter(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := &models.PropertyDataset{Records: []models.PropertyRecord{
		{ID: 1, Price: 500000, Area: 50},
		{ID: 2, Price: 500000, Area: 0},
		{ID: 3, Price: 500000, Area: 50, PricePerMeter: 9000},
	}}

	out := c.Clean(in)

	want := []float64{10000, 0, 9000}
	for i, r := range out.Records {
		if r.PricePerMeter != want[i] {
			t.Errorf("record %d PricePerMeter = %.2f; want %.2f", i, r.PricePerMeter, want[i])
		}
	}
}

func TestCleanerNilDataset(t *testing.T) {
	c := NewCleaner(newTestLogger())
	if out := c.Clean(nil); out.Len() != 0 {
		t.Errorf("expected empty dataset, got %d records", out.Len())
	}
}
