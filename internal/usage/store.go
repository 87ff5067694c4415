// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usage keeps a ledger of the tokens each model has consumed,
// bucketed by hour, and aggregates it for reporting.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const dbFile = "usage.db"

// Tokens counts tokens for one model. Cached tokens are a subset of Input.
type Tokens struct {
	Input  int `json:"input_tokens" yaml:"input_tokens"`
	Output int `json:"output_tokens" yaml:"output_tokens"`
	Cached int `json:"cached_tokens" yaml:"cached_tokens"`
	Turns  int `json:"turns" yaml:"turns"`
}

// Total returns input plus output tokens.
func (t Tokens) Total() int {
	return t.Input + t.Output
}

func (t *Tokens) add(o Tokens) {
	t.Input += o.Input
	t.Output += o.Output
	t.Cached += o.Cached
	t.Turns += o.Turns
}

// Granularity selects the bucket size of a report.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Hour, Day, Week, Month:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want hour, day, week or month)", s)
}

// Key returns the bucket label for t.
func (g Granularity) Key(t time.Time) string {
	t = t.UTC()
	switch g {
	case Hour:
		return t.Format("2006-01-02 15:00")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Bucket is the usage of every model within one reporting period.
type Bucket struct {
	Key    string
	Models map[string]Tokens
}

// Total sums the tokens of every model in the bucket.
func (b Bucket) Total() int {
	n := 0
	for _, t := range b.Models {
		n += t.Total()
	}
	return n
}

// Store manages the usage ledger SQLite database.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewStore opens or creates dataDir/usage.db and its schema.
func NewStore(dataDir string, log logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{db: db, log: log.WithField("db", dbPath)}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS hourly_usage (
			hour TEXT NOT NULL,
			model TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			cached_tokens INTEGER NOT NULL DEFAULT 0,
			turns INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (hour, model)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hourly_usage_model ON hourly_usage(model)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record adds one turn's tokens to the hour bucket containing at.
func (s *Store) Record(ctx context.Context, model string, t Tokens, at time.Time) error {
	if model == "" {
		model = "unknown"
	}
	hour := at.UTC().Truncate(time.Hour).Format(time.RFC3339)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hourly_usage (hour, model, input_tokens, output_tokens, cached_tokens, turns, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (hour, model) DO UPDATE SET
			input_tokens = input_tokens + excluded.input_tokens,
			output_tokens = output_tokens + excluded.output_tokens,
			cached_tokens = cached_tokens + excluded.cached_tokens,
			turns = turns + 1,
			updated_at = excluded.updated_at`,
		hour, model, t.Input, t.Output, t.Cached, now)
	if err != nil {
		return fmt.Errorf("recording usage: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"hour":   hour,
		"model":  model,
		"input":  t.Input,
		"output": t.Output,
	}).Debug("recorded usage")
	return nil
}

// Report aggregates the ledger into buckets of the given granularity,
// oldest first. Only models matching filter are counted (nil matches all).
// When units is positive only the most recent units buckets are returned.
func (s *Store) Report(ctx context.Context, g Granularity, units int, filter *regexp.Regexp) ([]Bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hour, model, input_tokens, output_tokens, cached_tokens, turns FROM hourly_usage`)
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string]Bucket)
	for rows.Next() {
		var hour, model string
		var t Tokens
		if err := rows.Scan(&hour, &model, &t.Input, &t.Output, &t.Cached, &t.Turns); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		if filter != nil && !filter.MatchString(model) {
			continue
		}
		ts, err := time.Parse(time.RFC3339, hour)
		if err != nil {
			s.log.WithField("hour", hour).Warn("skipping usage row with bad timestamp")
			continue
		}

		key := g.Key(ts)
		b, ok := byKey[key]
		if !ok {
			b = Bucket{Key: key, Models: make(map[string]Tokens)}
			byKey[key] = b
		}
		cur := b.Models[model]
		cur.add(t)
		b.Models[model] = cur
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading usage rows: %w", err)
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })

	if units > 0 && len(buckets) > units {
		buckets = buckets[len(buckets)-units:]
	}
	return buckets, nil
}
