package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realestate-insights/models"
	"realestate-insights/utils"
)

// amountPrinter groups thousands with "," and uses "." for decimals.
var amountPrinter = message.NewPrinter(language.English)

// InsightService computes dataset-wide figures and their text summaries.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a dataset. Offers without a price are left out of
// the price figures; an empty dataset yields a zero report.
func (s *InsightService) Generate(city string, dataset *models.PropertyDataset) *models.InsightReport {
	report := &models.InsightReport{
		City:             city,
		OffersByDistrict: make(map[string]int),
	}
	if dataset.Len() == 0 {
		return report
	}

	report.TotalCount = dataset.TotalCount
	report.Offers = len(dataset.Records)

	var prices, perMeter []float64
	for i := range dataset.Records {
		r := &dataset.Records[i]
		if r.Price > 0 {
			prices = append(prices, r.Price)
			if report.MostExpensive == nil || r.Price > report.MostExpensive.Price {
				report.MostExpensive = r
			}
		}
		if r.PricePerMeter > 0 {
			perMeter = append(perMeter, r.PricePerMeter)
		}
	}

	if len(prices) > 0 {
		report.MinPrice = prices[0]
		report.MaxPrice = prices[0]
		for _, p := range prices {
			report.MinPrice = min(report.MinPrice, p)
			report.MaxPrice = max(report.MaxPrice, p)
		}
	}
	report.AveragePrice = round2(Mean(prices))
	report.AveragePricePerMeter = round2(Mean(perMeter))

	districts := Group(dataset.Records, "location.district")
	for k, n := range districts.Counts {
		report.OffersByDistrict[k] = n
	}

	s.logger.Debug("[insights] %s: %d offers, avg price %.2f", city, report.Offers, report.AveragePrice)
	return report
}

// AveragePriceText renders the average total price line.
func AveragePriceText(r *models.InsightReport) string {
	return "AVG total price: " + FormatAmount(r.AveragePrice) + " PLN"
}

// AveragePricePerMeterText renders the average price per meter line.
func AveragePricePerMeterText(r *models.InsightReport) string {
	return "AVG price per meter: " + FormatAmount(r.AveragePricePerMeter) + " PLN"
}

// FormatAmount formats v with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
