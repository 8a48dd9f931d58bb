package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Repository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0
	poolCfg.MaxConns = 2

	return poolCfg, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS fare_cycles (
			id               BIGSERIAL PRIMARY KEY,
			provider         TEXT        NOT NULL,
			route            TEXT        NOT NULL,
			observed_at      TIMESTAMPTZ NOT NULL,
			valid            BOOLEAN     NOT NULL,
			deal             BOOLEAN     NOT NULL,
			lowest_outbound  BIGINT,
			lowest_return    BIGINT,
			outbound_delta   TEXT        NOT NULL,
			return_delta     TEXT        NOT NULL,
			invalid_reason   TEXT        NOT NULL DEFAULT ''
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure fare_cycles schema: %w", err)
	}

	return nil
}

func (r *Repository) Record(ctx context.Context, result models.CycleResult) error {
	const query = `
		INSERT INTO fare_cycles (
			provider,
			route,
			observed_at,
			valid,
			deal,
			lowest_outbound,
			lowest_return,
			outbound_delta,
			return_delta,
			invalid_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	reason := ""
	if result.InvalidReason != nil {
		reason = result.InvalidReason.Error()
	}

	_, err := r.db.Exec(ctx, query,
		result.Provider,
		result.Route,
		result.At.UTC(),
		result.Valid,
		result.Deal,
		result.LowestOutbound,
		result.LowestReturn,
		deltaLabel(result.OutboundDelta),
		deltaLabel(result.ReturnDelta),
		reason,
	)
	if err != nil {
		return fmt.Errorf("insert fare cycle: %w", err)
	}

	return nil
}

type CycleRow struct {
	Provider       string
	Route          string
	ObservedAt     time.Time
	Valid          bool
	Deal           bool
	LowestOutbound *int64
	LowestReturn   *int64
}

func (r *Repository) Recent(ctx context.Context, route string, limit int) ([]CycleRow, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
		SELECT
			provider,
			route,
			observed_at,
			valid,
			deal,
			lowest_outbound,
			lowest_return
		FROM fare_cycles
		WHERE route = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, route, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent fare cycles: %w", err)
	}
	defer rows.Close()

	result := make([]CycleRow, 0, limit)
	for rows.Next() {
		var row CycleRow
		if err := rows.Scan(
			&row.Provider,
			&row.Route,
			&row.ObservedAt,
			&row.Valid,
			&row.Deal,
			&row.LowestOutbound,
			&row.LowestReturn,
		); err != nil {
			return nil, fmt.Errorf("scan fare cycle: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fare cycles: %w", err)
	}

	return result, nil
}

func deltaLabel(d models.Delta) string {
	switch d.Kind {
	case models.DeltaDown, models.DeltaUp:
		return fmt.Sprintf("%s:%d", d.Kind, d.Amount)
	default:
		return d.Kind.String()
	}
}
