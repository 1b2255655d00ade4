package services

import "realestate-insights/models"

func sampleRecords() []models.PropertyRecord {
	return []models.PropertyRecord{
		{ID: 1, URL: "https://example.pl/1", Price: 480000, PricePerMeter: 12000, Floor: 2, Market: "secondary", BuildingType: "block", Area: 40, Location: models.Location{City: "Krakow", District: "Podgorze"}},
		{ID: 2, URL: "https://example.pl/2", Price: 730000, PricePerMeter: 14600, Floor: 4, Market: "primary", BuildingType: "apartment", Area: 50, Private: true, Location: models.Location{City: "Krakow", District: "Krowodrza"}},
		{ID: 3, URL: "https://example.pl/3", Price: 399000, PricePerMeter: 9975, Floor: 0, Market: "secondary", BuildingType: "block", Area: 40, Location: models.Location{City: "Krakow", District: "Nowa Huta"}},
		{ID: 4, URL: "https://example.pl/4", Price: 1250000, PricePerMeter: 17857.14, Floor: 7, Market: "primary", BuildingType: "", Area: 70, Location: models.Location{City: "Krakow", District: "Podgorze"}},
		{ID: 5, URL: "https://example.pl/5", Price: 560000, PricePerMeter: 11200, Floor: 1, Market: "secondary", BuildingType: "tenement", Area: 50, Private: true, Location: models.Location{City: "Krakow"}},
	}
}
