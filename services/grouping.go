package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"realestate-insights/models"
)

// UnknownKey is the group for records whose path resolves to nothing.
const UnknownKey = "Unknown"

// Grouping is a partition of records by a normalized key.
type Grouping struct {
	Path   string
	Keys   []string // first-seen order
	Groups map[string][]models.PropertyRecord
	Counts map[string]int
}

// Total returns the number of records across all groups.
func (g Grouping) Total() int {
	total := 0
	for _, n := range g.Counts {
		total += n
	}
	return total
}

// Group partitions records by the normalized value found at path. Record
// order inside each group follows input order.
func Group(records []models.PropertyRecord, path string) Grouping {
	g := Grouping{
		Path:   path,
		Keys:   make([]string, 0),
		Groups: make(map[string][]models.PropertyRecord),
		Counts: make(map[string]int),
	}

	for _, r := range records {
		key := NormalizeKey(Resolve(r, path))
		if _, exists := g.Groups[key]; !exists {
			g.Keys = append(g.Keys, key)
		}
		g.Groups[key] = append(g.Groups[key], r)
		g.Counts[key]++
	}
	return g
}

// NormalizeKey turns a resolved attribute value into a group key:
// numbers are rounded to the nearest integer (halves round up), booleans
// become "true"/"false", nil and empty strings become UnknownKey, and
// anything else uses its default string form.
func NormalizeKey(v any) string {
	if v == nil {
		return UnknownKey
	}

	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(math.Floor(f+0.5), 'f', 0, 64)
	}

	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case string:
		if val == "" {
			return UnknownKey
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
