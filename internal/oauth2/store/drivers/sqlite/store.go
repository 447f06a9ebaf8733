// Package sqlite implements the storage contract on a single SQLite
// database, for local development and tests. Records are stored as JSON
// documents in one generic table keyed by (logical table, primary key), so
// the driver stays as schema-less as the production backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"

	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	keys   map[string]string // logical table -> primary key field
	logger *slog.Logger
}

// NewStore opens dsn and returns a Store. keys maps each logical table name
// to its primary key field, mirroring the key schema a DynamoDB deployment
// provisions out-of-band.
func NewStore(dsn string, keys map[string]string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		keys:   keys,
		logger: slogx.Component(logger, "store.sqlite"),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Query(ctx context.Context, table string, criteria store.Criteria) ([]store.Record, error) {
	field, placeholder, err := parseWhere(criteria.Where)
	if err != nil {
		return nil, err
	}

	value, ok := criteria.Values[placeholder]
	if !ok {
		return nil, fmt.Errorf("sqlite: missing bound value %q", placeholder)
	}

	s.logger.DebugContext(ctx, "querying",
		slog.String("table", table),
		slog.String("index", criteria.Index),
		slog.String("where", criteria.Where),
	)

	// Secondary-index criteria run through the same JSON lookup; the index
	// name only matters to the DynamoDB driver.
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM records WHERE tbl = ? AND json_extract(record, ?) = ? ORDER BY key`,
		table, "$."+field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) Put(ctx context.Context, table string, item store.Record) error {
	key, err := s.primaryKey(table, item)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	s.logger.DebugContext(ctx, "putting item", slog.String("table", table))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (tbl, key, record) VALUES (?, ?, ?)
		 ON CONFLICT (tbl, key) DO UPDATE SET record = excluded.record`,
		table, key, string(body),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, key store.Record) error {
	pk, err := s.primaryKey(table, key)
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "deleting item", slog.String("table", table))

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM records WHERE tbl = ? AND key = ?`,
		table, pk,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, table string) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM records WHERE tbl = ? ORDER BY key`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) primaryKey(table string, item store.Record) (string, error) {
	field, ok := s.keys[table]
	if !ok {
		return "", fmt.Errorf("sqlite: no key schema for table %q", table)
	}
	key := item.String(field)
	if key == "" {
		return "", fmt.Errorf("sqlite: item missing primary key %q", field)
	}
	return key, nil
}

func scanRecords(rows *sql.Rows) ([]store.Record, error) {
	var records []store.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, store.Record(record))
	}
	return records, rows.Err()
}

var whereExpr = regexp.MustCompile(`^(\w+)\s*=\s*(:\w+)$`)

// parseWhere splits a "field = :name" key-condition expression into its
// field and placeholder.
func parseWhere(where string) (field, placeholder string, err error) {
	m := whereExpr.FindStringSubmatch(strings.TrimSpace(where))
	if m == nil {
		return "", "", fmt.Errorf("sqlite: unsupported key condition %q", where)
	}
	return m[1], m[2], nil
}
