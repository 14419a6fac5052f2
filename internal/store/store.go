// Package store keeps the active dataset in an in-memory SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/asolens/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoDataset is returned when nothing has been loaded yet.
var ErrNoDataset = errors.New("no dataset loaded")

// Store holds at most one dataset. Loading a new one discards the previous.
type Store struct {
	db *sql.DB
}

type datasetMeta struct {
	App             model.AppDetails `json:"app"`
	MissingFields   []string         `json:"missingFields"`
	AvailableFields []string         `json:"availableFields"`
	Issues          []model.RowIssue `json:"issues"`
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			schema TEXT NOT NULL,
			loaded_at TEXT NOT NULL,
			meta TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS keywords (
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			keyword TEXT NOT NULL,
			volume REAL,
			difficulty REAL,
			current_rank REAL,
			record TEXT NOT NULL,
			PRIMARY KEY (dataset_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_keywords_volume ON keywords(volume);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Replace discards the stored dataset and loads ds in its place.
func (s *Store) Replace(ctx context.Context, ds model.ParsedDataset) (err error) {
	meta, err := json.Marshal(datasetMeta{
		App:             ds.App,
		MissingFields:   ds.MissingFields,
		AvailableFields: ds.AvailableFields,
		Issues:          ds.Issues,
	})
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM keywords`, `DELETE FROM datasets`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, source, schema, loaded_at, meta) VALUES (?, ?, ?, ?, ?)`,
		ds.ID, ds.Source, ds.Schema, time.Now().UTC().Format(time.RFC3339Nano), string(meta),
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keywords (dataset_id, position, keyword, volume, difficulty, current_rank, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()
	for i, r := range ds.Keywords {
		var record []byte
		record, err = json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode keyword %q: %w", r.Keyword, err)
		}
		if _, err = stmt.ExecContext(ctx, ds.ID, i, r.Keyword,
			nullable(r.Volume), nullable(r.Difficulty), nullable(r.CurrentRank), string(record)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Dataset returns the stored dataset with all keywords in input order.
func (s *Store) Dataset(ctx context.Context) (model.ParsedDataset, error) {
	var ds model.ParsedDataset
	var meta string
	err := s.db.QueryRowContext(ctx, `SELECT id, source, schema, meta FROM datasets LIMIT 1`).
		Scan(&ds.ID, &ds.Source, &ds.Schema, &meta)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ParsedDataset{}, ErrNoDataset
	}
	if err != nil {
		return model.ParsedDataset{}, err
	}
	var m datasetMeta
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return model.ParsedDataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	ds.App = m.App
	ds.MissingFields = m.MissingFields
	ds.AvailableFields = m.AvailableFields
	ds.Issues = m.Issues
	ds.Keywords, err = s.Keywords(ctx, model.KeywordFilter{})
	if err != nil {
		return model.ParsedDataset{}, err
	}
	return ds, nil
}

// Keywords returns stored keywords matching the filter in input order.
// Zero-valued filter fields do not restrict the result.
func (s *Store) Keywords(ctx context.Context, filter model.KeywordFilter) ([]model.KeywordRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, "instr(lower(keyword), lower(?)) > 0")
		args = append(args, q)
	}
	if filter.MinVolume > 0 {
		clauses = append(clauses, "volume >= ?")
		args = append(args, filter.MinVolume)
	}
	if filter.MaxDifficulty > 0 {
		clauses = append(clauses, "difficulty <= ?")
		args = append(args, filter.MaxDifficulty)
	}
	if filter.RankedOnly {
		clauses = append(clauses, "current_rank IS NOT NULL")
	}
	query := fmt.Sprintf(`SELECT record FROM keywords WHERE %s ORDER BY position ASC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []model.KeywordRecord{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r model.KeywordRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode keyword: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullable(m model.Metric) any {
	if !m.Valid {
		return nil
	}
	return m.Value
}
