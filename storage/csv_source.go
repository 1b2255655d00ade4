package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"realestate-insights/models"
)

// csvColumns is the header of a listings export, in file order.
var csvColumns = []string{
	"id", "url", "title", "created_time", "price", "price_per_meter", "floor",
	"market", "building_type", "area", "private", "lat", "lon", "city", "district",
}

// numberRegexp captures the numeric part of values such as "480 000 zł".
var numberRegexp = regexp.MustCompile(`-?[\d\s\x{00A0}.,]*\d`)

// CSVSource serves offers from a listings export held in memory. It is
// safe for concurrent use once constructed.
type CSVSource struct {
	records []models.PropertyRecord
}

// NewCSVSource reads the CSV file at path. The header row is required;
// columns are matched by name so extra columns are ignored.
func NewCSVSource(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	records, err := ReadListingsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return &CSVSource{records: records}, nil
}

// ReadListingsCSV parses a listings export.
func ReadListingsCSV(r io.Reader) ([]models.PropertyRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.PropertyRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.PropertyRecord, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, _ := strconv.ParseInt(col(row, "id"), 10, 64)
		private, _ := strconv.ParseBool(col(row, "private"))
		records = append(records, models.PropertyRecord{
			ID:            id,
			URL:           col(row, "url"),
			Title:         col(row, "title"),
			CreatedTime:   col(row, "created_time"),
			Price:         parseNumber(col(row, "price")),
			PricePerMeter: parseNumber(col(row, "price_per_meter")),
			Floor:         int(parseNumber(col(row, "floor"))),
			Market:        col(row, "market"),
			BuildingType:  col(row, "building_type"),
			Area:          parseNumber(col(row, "area")),
			Private:       private,
			Location: models.Location{
				Lat:      parseNumber(col(row, "lat")),
				Lon:      parseNumber(col(row, "lon")),
				City:     col(row, "city"),
				District: col(row, "district"),
			},
		})
	}
	return records, nil
}

// parseNumber extracts a number from free-form text. Spaces are treated
// as thousands separators. When both "," and "." appear the last one is
// the decimal separator; a single comma on its own is decimal too.
func parseNumber(raw string) float64 {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\t' {
			return -1
		}
		return r
	}, match)

	comma, dot := strings.LastIndex(cleaned, ","), strings.LastIndex(cleaned, ".")
	switch {
	case comma >= 0 && dot >= 0:
		// whichever separator comes last is the decimal one
		decimal, thousands := ",", "."
		if dot > comma {
			decimal, thousands = ".", ","
		}
		cleaned = strings.ReplaceAll(cleaned, thousands, "")
		cleaned = strings.Replace(cleaned, decimal, ".", 1)
	case comma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// Records returns every offer in the export regardless of city.
func (s *CSVSource) Records() []models.PropertyRecord {
	out := make([]models.PropertyRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FetchDashboardData returns the offers located in city.
func (s *CSVSource) FetchDashboardData(ctx context.Context, city string) (*models.PropertyDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.PropertyRecord, 0)
	for _, r := range s.records {
		if strings.EqualFold(r.Location.City, city) {
			out = append(out, r)
		}
	}
	return &models.PropertyDataset{TotalCount: len(out), Records: out}, nil
}

// FetchTimeline averages prices per creation day for city, oldest first.
func (s *CSVSource) FetchTimeline(ctx context.Context, city string) ([]models.TimelinePoint, error) {
	dataset, err := s.FetchDashboardData(ctx, city)
	if err != nil {
		return nil, err
	}

	type acc struct {
		price, perMeter float64
		count           int
	}
	days := make(map[string]*acc)
	for _, r := range dataset.Records {
		day := r.CreatedTime
		if len(day) > 10 {
			day = day[:10]
		}
		if day == "" {
			continue
		}
		a, ok := days[day]
		if !ok {
			a = &acc{}
			days[day] = a
		}
		a.price += r.Price
		a.perMeter += r.PricePerMeter
		a.count++
	}

	points := make([]models.TimelinePoint, 0, len(days))
	for day, a := range days {
		points = append(points, models.TimelinePoint{
			Date:             day,
			AvgPricePerMeter: a.perMeter / float64(a.count),
			AvgPrice:         a.price / float64(a.count),
			Count:            a.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// WriteListingsCSV writes records as a listings export with a header row.
func WriteListingsCSV(w io.Writer, records []models.PropertyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.URL,
			r.Title,
			r.CreatedTime,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.FormatFloat(r.PricePerMeter, 'f', -1, 64),
			strconv.Itoa(r.Floor),
			r.Market,
			r.BuildingType,
			strconv.FormatFloat(r.Area, 'f', -1, 64),
			strconv.FormatBool(r.Private),
			strconv.FormatFloat(r.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Location.Lon, 'f', -1, 64),
			r.Location.City,
			r.Location.District,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
