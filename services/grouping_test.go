package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-insights/models"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{12000.4, "12000"},
		{12000.5, "12001"},
		{-2.5, "-2"},
		{7, "7"},
		{int64(3), "3"},
		{float32(1.6), "2"},
		{json.Number("41.7"), "42"},
		{true, "true"},
		{false, "false"},
		{nil, UnknownKey},
		{"", UnknownKey},
		{"block", "block"},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%#v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroupByBuildingType(t *testing.T) {
	g := Group(sampleRecords(), "buildingType")

	assert.Equal(t, []string{"block", "apartment", UnknownKey, "tenement"}, g.Keys)
	assert.Equal(t, 2, g.Counts["block"])
	assert.Equal(t, 1, g.Counts[UnknownKey])

	block := g.Groups["block"]
	require.Len(t, block, 2)
	assert.Equal(t, int64(1), block[0].ID, "group order must follow input order")
	assert.Equal(t, int64(3), block[1].ID)
}

func TestGroupByNestedAndMissingPaths(t *testing.T) {
	g := Group(sampleRecords(), "location.district")
	assert.Equal(t, 2, g.Counts["Podgorze"])
	assert.Equal(t, 1, g.Counts[UnknownKey])

	missing := Group(sampleRecords(), "location.street")
	assert.Equal(t, []string{UnknownKey}, missing.Keys)
	assert.Equal(t, 5, missing.Counts[UnknownKey])
}

func TestGroupByBoolean(t *testing.T) {
	g := Group(sampleRecords(), "private")
	assert.Equal(t, 3, g.Counts["false"])
	assert.Equal(t, 2, g.Counts["true"])
}

func TestGroupCountsSumToInput(t *testing.T) {
	records := sampleRecords()
	for _, path := range models.AllowedGroupFields {
		g := Group(records, path)
		assert.Equal(t, len(records), g.Total(), "path %s", path)
	}

	assert.Equal(t, 0, Group(nil, "price").Total())
	assert.Empty(t, Group([]models.PropertyRecord{}, "price").Keys)
}
