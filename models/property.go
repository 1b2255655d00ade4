package models

// Location is where a listing sits. Lat/Lon are WGS84 degrees.
type Location struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	District string  `json:"district"`
}

// PropertyRecord is a single real-estate offer as delivered by the
// listings API. Records are treated as immutable once fetched.
type PropertyRecord struct {
	ID            int64    `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	CreatedTime   string   `json:"createdTime"`
	Price         float64  `json:"price"`
	PricePerMeter float64  `json:"pricePerMeter"`
	Floor         int      `json:"floor"`
	Market        string   `json:"market"`
	BuildingType  string   `json:"buildingType"`
	Area          float64  `json:"area"`
	Private       bool     `json:"private"`
	Location      Location `json:"location"`
	Photos        []any    `json:"photos"`
}

// PropertyDataset is one fetch result: the server-side total and the
// records returned for it, in API order.
type PropertyDataset struct {
	TotalCount int              `json:"totalCount"`
	Records    []PropertyRecord `json:"data"`
}

// Len reports the number of records held, treating a nil dataset as empty.
func (d *PropertyDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// TimelinePoint is one day of the per-city price history.
type TimelinePoint struct {
	Date             string  `json:"date"`
	AvgPricePerMeter float64 `json:"avgPricePerMeter"`
	AvgPrice         float64 `json:"avgPrice"`
	Count            int     `json:"count"`
}
