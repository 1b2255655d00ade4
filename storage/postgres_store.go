package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"realestate-insights/charts"
	"realestate-insights/models"
	"realestate-insights/utils"
)

// groupExpressions maps each grouping path to the SQL expression that
// yields the same normalized key the in-memory engine produces.
var groupExpressions = map[string]string{
	"price":             "FLOOR(price + 0.5)::bigint::text",
	"pricePerMeter":     "FLOOR(price_per_meter + 0.5)::bigint::text",
	"floor":             "floor::text",
	"market":            "COALESCE(NULLIF(market, ''), 'Unknown')",
	"buildingType":      "COALESCE(NULLIF(building_type, ''), 'Unknown')",
	"area":              "FLOOR(area + 0.5)::bigint::text",
	"private":           "private::text",
	"location.district": "COALESCE(NULLIF(district, ''), 'Unknown')",
}

// PostgresStore serves offers and server-side aggregates from the
// listings table, and accepts imports into it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to
// answer using retry, runs schema migrations and returns a ready store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	if err := retry.Do(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := NewPostgresStoreWithDB(db)
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

// NewPostgresStoreWithDB wraps an already opened database handle.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id              BIGINT        PRIMARY KEY,
			url             TEXT          NOT NULL DEFAULT '',
			title           TEXT          NOT NULL DEFAULT '',
			created_time    TEXT          NOT NULL DEFAULT '',
			price           NUMERIC(14,2) NOT NULL DEFAULT 0,
			price_per_meter NUMERIC(12,2) NOT NULL DEFAULT 0,
			floor           INTEGER       NOT NULL DEFAULT 0,
			market          TEXT          NOT NULL DEFAULT '',
			building_type   TEXT          NOT NULL DEFAULT '',
			area            NUMERIC(10,2) NOT NULL DEFAULT 0,
			private         BOOLEAN       NOT NULL DEFAULT FALSE,
			lat             DOUBLE PRECISION NOT NULL DEFAULT 0,
			lon             DOUBLE PRECISION NOT NULL DEFAULT 0,
			city            TEXT          NOT NULL DEFAULT '',
			district        TEXT          NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_listings_city         ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_created_time ON listings(created_time);
	`)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Clear deletes all existing listings from the table.
func (ps *PostgresStore) Clear(ctx context.Context) error {
	return clearListings(ctx, ps.db)
}

func clearListings(ctx context.Context, db execer) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the table contents with records, inserting in batches.
// The replacement is one transaction: on any error the previous
// contents stay in place.
func (ps *PostgresStore) Write(ctx context.Context, records []models.PropertyRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = clearListings(ctx, tx); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if err = insertBatch(ctx, tx, records[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const listingColumns = 15

func insertBatch(ctx context.Context, db execer, batch []models.PropertyRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*listingColumns)

	for idx, r := range batch {
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*listingColumns+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.ID, r.URL, r.Title, r.CreatedTime, r.Price, r.PricePerMeter, r.Floor,
			r.Market, r.BuildingType, r.Area, r.Private,
			r.Location.Lat, r.Location.Lon, r.Location.City, r.Location.District)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (id, url, title, created_time, price, price_per_meter, floor,
			market, building_type, area, private, lat, lon, city, district)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := db.ExecContext(ctx, query, valueArgs...)
	return err
}

// FetchDashboardData returns every offer stored for city, in id order.
func (ps *PostgresStore) FetchDashboardData(ctx context.Context, city string) (*models.PropertyDataset, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, url, title, created_time, price, price_per_meter, floor,
		       market, building_type, area, private, lat, lon, city, district
		FROM listings
		WHERE city = $1
		ORDER BY id
	`, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch dashboard data: %w", err)
	}
	defer rows.Close()

	records := make([]models.PropertyRecord, 0)
	for rows.Next() {
		var r models.PropertyRecord
		if err := rows.Scan(
			&r.ID, &r.URL, &r.Title, &r.CreatedTime, &r.Price, &r.PricePerMeter, &r.Floor,
			&r.Market, &r.BuildingType, &r.Area, &r.Private,
			&r.Location.Lat, &r.Location.Lon, &r.Location.City, &r.Location.District,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return &models.PropertyDataset{TotalCount: len(records), Records: records}, nil
}

// GroupSummaries aggregates city's offers by groupField in SQL, ordered
// by ascending median price per meter.
func (ps *PostgresStore) GroupSummaries(ctx context.Context, groupField, city string) ([]models.GroupSummary, error) {
	expr, ok := groupExpressions[groupField]
	if !ok {
		return nil, fmt.Errorf("postgres: %w: %q", models.ErrUnsupportedGroupField, groupField)
	}

	query := fmt.Sprintf(`
		SELECT %s AS group_key,
		       COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY price_per_meter), 0),
		       COALESCE(AVG(price), 0),
		       COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY area), 0),
		       COALESCE(AVG(floor), 0),
		       COUNT(*)
		FROM listings
		WHERE city = $1
		GROUP BY group_key
		ORDER BY 2 ASC, MIN(id) ASC
	`, expr)

	rows, err := ps.db.QueryContext(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: group statistics: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.GroupSummary, 0)
	for rows.Next() {
		var g models.GroupSummary
		s := &g.Statistics
		if err := rows.Scan(&g.Key, &s.MedianPricePerMeter, &s.AveragePrice, &s.MedianArea, &s.AverageFloor, &s.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan group: %w", err)
		}
		summaries = append(summaries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate groups: %w", err)
	}
	return summaries, nil
}

// FetchGroupedStatistics returns the grouped statistics chart computed in SQL.
func (ps *PostgresStore) FetchGroupedStatistics(ctx context.Context, groupField, city string) (models.ChartSeriesData, error) {
	summaries, err := ps.GroupSummaries(ctx, groupField, city)
	if err != nil {
		return models.ChartSeriesData{}, err
	}
	return charts.GroupedStatistics(summaries), nil
}

// FetchFilteredByParameter returns one statistic per group, computed in SQL.
func (ps *PostgresStore) FetchFilteredByParameter(ctx context.Context, groupField, city, parameter string) (models.ChartSeriesData, error) {
	grouped, err := ps.FetchGroupedStatistics(ctx, groupField, city)
	if err != nil {
		return models.ChartSeriesData{}, err
	}
	return charts.FilterByParameter(grouped, parameter), nil
}

// FetchTimeline averages prices per creation day for city, oldest first.
func (ps *PostgresStore) FetchTimeline(ctx context.Context, city string) ([]models.TimelinePoint, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT LEFT(created_time, 10) AS day,
		       AVG(price_per_meter),
		       AVG(price),
		       COUNT(*)
		FROM listings
		WHERE city = $1 AND created_time <> ''
		GROUP BY day
		ORDER BY day
	`, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch timeline: %w", err)
	}
	defer rows.Close()

	points := make([]models.TimelinePoint, 0)
	for rows.Next() {
		var p models.TimelinePoint
		if err := rows.Scan(&p.Date, &p.AvgPricePerMeter, &p.AvgPrice, &p.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan timeline: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
