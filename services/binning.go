package services

import (
	"math"
	"sort"
	"strconv"
)

// Bin sizes per grouping field. Fields not listed use DefaultBinSize,
// which keeps integer-level granularity.
const (
	PricePerMeterBinSize = 200
	PriceBinSize         = 5000
	DefaultBinSize       = 1
)

// BinSizeFor returns the bin width used for a grouping field.
func BinSizeFor(field string) float64 {
	switch field {
	case "pricePerMeter":
		return PricePerMeterBinSize
	case "price":
		return PriceBinSize
	default:
		return DefaultBinSize
	}
}

// Bin is one numeric range, labelled by its upper edge.
type Bin struct {
	Label string
	Edge  float64
	Count int
}

// AllNumeric reports whether every key parses as a number. An empty key
// set is not numeric.
func AllNumeric(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if _, ok := parseFinite(k); !ok {
			return false
		}
	}
	return true
}

// parseFinite parses k as a finite number. "NaN" and "Inf" spellings are
// text keys, not numbers.
func parseFinite(k string) (float64, bool) {
	v, err := strconv.ParseFloat(k, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// BinCounts re-buckets numeric keys into fixed-width ranges. Each key
// lands in the bin whose upper edge is ceil(key/binSize)*binSize; counts
// for the same edge are summed. The result is sorted by ascending edge.
// Keys that do not parse are skipped, so callers should check AllNumeric
// first. A non-positive binSize is treated as 1.
func BinCounts(keys []string, counts map[string]int, binSize float64) []Bin {
	if binSize <= 0 {
		binSize = DefaultBinSize
	}

	byEdge := make(map[float64]int)
	for _, k := range keys {
		v, ok := parseFinite(k)
		if !ok {
			continue
		}
		edge := math.Ceil(v/binSize) * binSize
		if edge == 0 {
			edge = 0 // drop the sign of -0
		}
		byEdge[edge] += counts[k]
	}

	bins := make([]Bin, 0, len(byEdge))
	for edge, n := range byEdge {
		bins = append(bins, Bin{
			Label: strconv.FormatFloat(edge, 'f', -1, 64),
			Edge:  edge,
			Count: n,
		})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Edge < bins[j].Edge })
	return bins
}
