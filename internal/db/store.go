// Package db persists finished analyses to Postgres. Storage is an audit
// trail, not a dependency of the run: a write failure is logged by the
// caller and never alters the returned result.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// ErrNotFound reports a missing analysis row.
var ErrNotFound = errors.New("analysis not found")

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    request_id      TEXT PRIMARY KEY,
    subject         TEXT NOT NULL,
    subject_context TEXT NOT NULL,
    composite_score DOUBLE PRECISION NOT NULL,
    avg_confidence  DOUBLE PRECISION NOT NULL,
    result          JSONB NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_analyses_subject ON analyses (subject, subject_context);
`

// Store wraps the analyses table.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore wraps an open connection. Use Open for the production path.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Open connects to Postgres, verifies the connection and ensures the
// schema exists.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return NewStore(db, logger), nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping reports connection health for readiness checks.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// SaveAnalysis upserts the finished analysis keyed by request ID.
func (s *Store) SaveAnalysis(ctx context.Context, res models.AnalysisResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", res.RequestID, err)
	}

	const q = `
		INSERT INTO analyses (request_id, subject, subject_context, composite_score, avg_confidence, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (request_id) DO UPDATE SET
			composite_score = EXCLUDED.composite_score,
			avg_confidence  = EXCLUDED.avg_confidence,
			result          = EXCLUDED.result`

	_, err = s.db.ExecContext(ctx, q,
		res.RequestID, res.Subject, res.Context,
		res.Composite.Score, res.AvgConfidence(), payload, res.Timestamp)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", res.RequestID, err)
	}
	s.logger.Debug("analysis persisted",
		zap.String("request_id", res.RequestID),
		zap.Float64("composite", res.Composite.Score))
	return nil
}

// GetAnalysis loads a stored analysis by request ID.
func (s *Store) GetAnalysis(ctx context.Context, requestID string) (*models.AnalysisResult, error) {
	var raw []byte
	err := s.db.QueryRowxContext(ctx,
		`SELECT result FROM analyses WHERE request_id = $1`, requestID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis %s: %w", requestID, err)
	}

	var res models.AnalysisResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", requestID, err)
	}
	return &res, nil
}
