package models

import (
	"errors"
	"slices"
)

// AllowedGroupFields are the attribute paths records may be grouped by.
var AllowedGroupFields = []string{
	"price",
	"pricePerMeter",
	"floor",
	"market",
	"buildingType",
	"area",
	"private",
	"location.district",
}

// Cities served by the dashboard.
const (
	CityKatowice = "Katowice"
	CityKrakow   = "Krakow"
)

// AllowedCities lists every selectable city.
var AllowedCities = []string{CityKatowice, CityKrakow}

var (
	// ErrUnsupportedGroupField is returned for a grouping path outside
	// AllowedGroupFields.
	ErrUnsupportedGroupField = errors.New("unsupported group field")
	// ErrUnknownCity is returned for a city outside AllowedCities.
	ErrUnknownCity = errors.New("unknown city")
)

// IsAllowedGroupField reports whether field may be used for grouping.
func IsAllowedGroupField(field string) bool {
	return slices.Contains(AllowedGroupFields, field)
}

// IsAllowedCity reports whether city is selectable.
func IsAllowedCity(city string) bool {
	return slices.Contains(AllowedCities, city)
}
