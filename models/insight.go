package models

// InsightReport holds dataset-wide figures shown next to the charts.
type InsightReport struct {
	City                 string          `json:"city"`
	TotalCount           int             `json:"totalCount"`
	Offers               int             `json:"offers"`
	AveragePrice         float64         `json:"averagePrice"`
	AveragePricePerMeter float64         `json:"averagePricePerMeter"`
	MinPrice             float64         `json:"minPrice"`
	MaxPrice             float64         `json:"maxPrice"`
	MostExpensive        *PropertyRecord `json:"mostExpensive,omitempty"`
	OffersByDistrict     map[string]int  `json:"offersByDistrict"`
}
