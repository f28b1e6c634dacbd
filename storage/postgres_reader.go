package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// tableNameRegexp accepts "table" or "schema.table" with plain identifiers.
var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgreSQL SQLSTATE codes mapped onto the load/format taxonomy.
const (
	pqUndefinedColumn = "42703"
	pqUndefinedTable  = "42P01"
)

// PostgresSource reads listings from a PostgreSQL table holding the same
// columns as the CSV export.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource opens a connection and pings it with the given retry
// policy; a nil policy pings once. The table name is validated but not
// checked for existence here.
func NewPostgresSource(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresSource, error) {
	if !tableNameRegexp.MatchString(table) {
		return nil, fmt.Errorf("%w: postgres: invalid table name %q", models.ErrDataLoad, table)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: open: %w", models.ErrDataLoad, err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	if err := retry.Do(ctx, "postgres-ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: postgres: %w", models.ErrDataLoad, err)
	}

	return &PostgresSource{db: db, table: table}, nil
}

// Key identifies the table; the DSN is left out so credentials never reach logs.
func (s *PostgresSource) Key() string {
	return "postgres:" + s.table
}

// ReadRaw selects the required columns as text, ordered by id. NULLs become
// missing values.
func (s *PostgresSource) ReadRaw(ctx context.Context) ([]*models.RawListing, error) {
	rows, err := s.db.QueryContext(ctx, selectQuery(s.table))
	if err != nil {
		return nil, classifyPQError(err)
	}
	defer rows.Close()

	var out []*models.RawListing
	cols := make([]sql.NullString, len(RequiredColumns))
	dest := make([]any, len(cols))
	for i := range cols {
		dest[i] = &cols[i]
	}
	values := make([]string, len(cols))

	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: postgres: scan row %d: %w", models.ErrDataLoad, row, err)
		}
		for i, c := range cols {
			values[i] = ""
			if c.Valid {
				values[i] = strings.TrimSpace(c.String)
			}
		}
		out = append(out, rawFromColumns(row, values))
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPQError(err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func selectQuery(table string) string {
	cols := make([]string, len(RequiredColumns))
	for i, c := range RequiredColumns {
		cols[i] = pq.QuoteIdentifier(c) + "::text"
	}
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM " + quoteTable(table) +
		" ORDER BY " + pq.QuoteIdentifier("id")
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// classifyPQError maps a missing column to ErrDataFormat and everything
// else to ErrDataLoad.
func classifyPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUndefinedColumn:
			return fmt.Errorf("%w: postgres: %s", models.ErrDataFormat, pqErr.Message)
		case pqUndefinedTable:
			return fmt.Errorf("%w: postgres: %s", models.ErrDataLoad, pqErr.Message)
		}
	}
	return fmt.Errorf("%w: postgres: query: %w", models.ErrDataLoad, err)
}
