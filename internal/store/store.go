// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"nse-analyst/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Snapshots
	SaveSnapshot(ctx context.Context, snapshot *models.OptionChainSnapshot) error
	GetLatestSnapshot(ctx context.Context, symbol, expiry string) (*models.OptionChainSnapshot, error)

	// Analysis runs
	SaveAnalysis(ctx context.Context, record *AnalysisRecord) error
	GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisRecord, error)

	// Lifecycle
	Close() error
}

// AnalysisRecord captures one spread-analysis run for the history view.
type AnalysisRecord struct {
	ID             int64
	Symbol         string
	Expiry         string
	Underlying     float64
	Capital        float64
	LotSize        int
	CandidateCount int
	LiquidCount    int
	TopSpreads     []models.AnalyzedSpread
	CreatedAt      time.Time
}

// AnalysisFilter represents filters for querying analysis runs.
type AnalysisFilter struct {
	Symbol    string
	Expiry    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
