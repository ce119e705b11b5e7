package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	pkgch "FactPull/pkg/clickhouse"
	applogger "FactPull/pkg/logger"
)

// CHSeriesArchive appends finalized series points to ClickHouse for offline
// analysis. One row per (ticker, metric, period) per extraction.
type CHSeriesArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesArchive(ch *pkgch.Client, table string) *CHSeriesArchive {
	return &CHSeriesArchive{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (a *CHSeriesArchive) SetLogger(l *applogger.Logger) { a.l = l }

// Schema returns the idempotent DDL for the archive table.
func Schema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ticker String,
            metric String,
            period Date,
            value Float64,
            extracted_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(extracted_at)
        ORDER BY (ticker, metric, period)`, table),
	}
}

func (a *CHSeriesArchive) Append(ctx context.Context, ticker, metric string, points []models.PeriodPoint) error {
	if len(points) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (ticker, metric, period, value) VALUES (?, ?, ?, ?)", a.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, ticker, metric, p.Period, p.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive insert %s %s %s: %w", ticker, metric, p.Period, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}

	if a.l != nil {
		a.l.Debug("series archived",
			applogger.String("ticker", ticker),
			applogger.String("metric", metric),
			applogger.Int("points", len(points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (a *CHSeriesArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *CHSeriesArchive) Close() error { return a.db.Close() }

var _ domrepo.SeriesArchive = (*CHSeriesArchive)(nil)
