// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nse-analyst/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Fetched option-chain snapshots
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL,
		underlying REAL NOT NULL,
		exchange_ts TEXT,
		fetched_at DATETIME NOT NULL,
		strikes TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_expiry
		ON snapshots(symbol, expiry, fetched_at);

	-- Spread analysis runs
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL,
		underlying REAL NOT NULL,
		capital REAL NOT NULL,
		lot_size INTEGER NOT NULL,
		candidate_count INTEGER NOT NULL,
		liquid_count INTEGER NOT NULL,
		top_spreads TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_symbol
		ON analyses(symbol, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot persists a fetched option chain.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.OptionChainSnapshot) error {
	strikes, err := json.Marshal(snapshot.Strikes)
	if err != nil {
		return fmt.Errorf("encoding strikes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (symbol, expiry, underlying, exchange_ts, fetched_at, strikes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.Symbol, snapshot.ExpiryDate, snapshot.UnderlyingValue,
		snapshot.Timestamp, snapshot.FetchedAt, string(strikes))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the most recently fetched snapshot for
// symbol+expiry, or sql.ErrNoRows wrapped when none exists.
func (s *SQLiteStore) GetLatestSnapshot(ctx context.Context, symbol, expiry string) (*models.OptionChainSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, expiry, underlying, exchange_ts, fetched_at, strikes
		FROM snapshots
		WHERE symbol = ? AND expiry = ?
		ORDER BY fetched_at DESC
		LIMIT 1`, symbol, expiry)

	var snap models.OptionChainSnapshot
	var strikes string
	err := row.Scan(&snap.Symbol, &snap.ExpiryDate, &snap.UnderlyingValue,
		&snap.Timestamp, &snap.FetchedAt, &strikes)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(strikes), &snap.Strikes); err != nil {
		return nil, fmt.Errorf("decoding strikes: %w", err)
	}
	return &snap, nil
}

// SaveAnalysis persists a spread-analysis run.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, record *AnalysisRecord) error {
	top, err := json.Marshal(record.TopSpreads)
	if err != nil {
		return fmt.Errorf("encoding spreads: %w", err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (symbol, expiry, underlying, capital, lot_size,
			candidate_count, liquid_count, top_spreads, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Symbol, record.Expiry, record.Underlying, record.Capital,
		record.LotSize, record.CandidateCount, record.LiquidCount,
		string(top), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// GetAnalyses returns analysis runs matching the filter, newest first.
func (s *SQLiteStore) GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Expiry != "" {
		conditions = append(conditions, "expiry = ?")
		args = append(args, filter.Expiry)
	}
	if !filter.StartDate.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.EndDate)
	}

	query := `SELECT id, symbol, expiry, underlying, capital, lot_size,
		candidate_count, liquid_count, top_spreads, created_at FROM analyses`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var top string
		if err := rows.Scan(&rec.ID, &rec.Symbol, &rec.Expiry, &rec.Underlying,
			&rec.Capital, &rec.LotSize, &rec.CandidateCount, &rec.LiquidCount,
			&top, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(top), &rec.TopSpreads); err != nil {
			return nil, fmt.Errorf("decoding spreads: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
