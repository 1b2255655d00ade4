package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinSizeFor(t *testing.T) {
	assert.Equal(t, 200.0, BinSizeFor("pricePerMeter"))
	assert.Equal(t, 5000.0, BinSizeFor("price"))
	assert.Equal(t, 1.0, BinSizeFor("area"))
	assert.Equal(t, 1.0, BinSizeFor("location.district"))
}

func TestAllNumeric(t *testing.T) {
	assert.True(t, AllNumeric([]string{"1", "-3", "4800"}))
	assert.False(t, AllNumeric([]string{"1", UnknownKey}))
	assert.False(t, AllNumeric(nil))
}

func TestBinCountsPrice(t *testing.T) {
	keys := []string{"5300", "4800"}
	counts := map[string]int{"4800": 3, "5300": 2}

	bins := BinCounts(keys, counts, BinSizeFor("price"))

	assert.Equal(t, []Bin{
		{Label: "5000", Edge: 5000, Count: 3},
		{Label: "10000", Edge: 10000, Count: 2},
	}, bins)
}

func TestBinCountsMergesSameEdge(t *testing.T) {
	keys := []string{"10001", "10150", "10200", "10201", "0", "-150"}
	counts := map[string]int{"10001": 1, "10150": 2, "10200": 4, "10201": 1, "0": 1, "-150": 1}

	bins := BinCounts(keys, counts, 200)

	assert.Equal(t, []Bin{
		{Label: "0", Edge: 0, Count: 2},
		{Label: "10200", Edge: 10200, Count: 7},
		{Label: "10400", Edge: 10400, Count: 1},
	}, bins)
}

func TestBinCountsPreservesTotal(t *testing.T) {
	g := Group(sampleRecords(), "pricePerMeter")
	bins := BinCounts(g.Keys, g.Counts, BinSizeFor("pricePerMeter"))

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, g.Total(), total)
}

func TestBinCountsUnitSizeKeepsIntegers(t *testing.T) {
	bins := BinCounts([]string{"3", "1", "2"}, map[string]int{"1": 1, "2": 1, "3": 5}, 1)

	labels := make([]string, 0, len(bins))
	for _, b := range bins {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"1", "2", "3"}, labels)
}

func TestNonFiniteKeysAreText(t *testing.T) {
	assert.False(t, AllNumeric([]string{"Infinity", "5"}))
	assert.False(t, AllNumeric([]string{"nan"}))
	assert.False(t, AllNumeric([]string{"-Inf", "1"}))

	bins := BinCounts([]string{"Infinity", "nan", "5"}, map[string]int{"Infinity": 1, "nan": 1, "5": 2}, 1)
	assert.Equal(t, []Bin{{Label: "5", Edge: 5, Count: 2}}, bins)
}
