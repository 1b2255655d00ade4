package services

import (
	"strconv"
	"strings"
	"unicode"

	"realestate-insights/models"
	"realestate-insights/utils"
)

// Cleaner normalises a listing export before it is imported into the
// listings store. The engine itself never cleans what it fetches.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns a new dataset with duplicate offers dropped, text labels
// normalised and missing prices per meter derived from price and area.
// The input dataset is left untouched. TotalCount is carried over as
// reported by the source.
func (c *Cleaner) Clean(in *models.PropertyDataset) *models.PropertyDataset {
	if in == nil {
		return &models.PropertyDataset{Records: []models.PropertyRecord{}}
	}

	seen := make(map[string]struct{})
	out := make([]models.PropertyRecord, 0, len(in.Records))

	for _, r := range in.Records {
		id := recordIdentity(r)
		if id != "" {
			if _, dup := seen[id]; dup {
				c.logger.Debug("[cleaner] Duplicate offer skipped: %s", id)
				continue
			}
			seen[id] = struct{}{}
		}

		r.Title = normaliseText(r.Title)
		r.URL = strings.TrimSpace(r.URL)
		r.Market = normaliseText(r.Market)
		r.BuildingType = normaliseText(r.BuildingType)
		r.Location.City = normaliseText(r.Location.City)
		r.Location.District = normaliseText(r.Location.District)
		if r.PricePerMeter == 0 && r.Area > 0 && r.Price > 0 {
			r.PricePerMeter = r.Price / r.Area
		}

		out = append(out, r)
	}

	if dropped := len(in.Records) - len(out); dropped > 0 {
		c.logger.Info("[cleaner] Cleaned %d → %d offers (dropped %d)", len(in.Records), len(out), dropped)
	}
	return &models.PropertyDataset{TotalCount: in.TotalCount, Records: out}
}

// recordIdentity prefers the API id and falls back to the offer URL.
func recordIdentity(r models.PropertyRecord) string {
	if r.ID != 0 {
		return "id:" + strconv.FormatInt(r.ID, 10)
	}
	if url := strings.TrimSpace(r.URL); url != "" {
		return "url:" + url
	}
	return ""
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
