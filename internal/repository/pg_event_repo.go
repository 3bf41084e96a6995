package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizlink/digest-engine/internal/domain"
)

type pgEventRepository struct {
	pool *pgxpool.Pool
}

// NewPgEventRepository returns an EventRepository backed by PostgreSQL.
func NewPgEventRepository(pool *pgxpool.Pool) EventRepository {
	return &pgEventRepository{pool: pool}
}

func (r *pgEventRepository) Insert(ctx context.Context, e *domain.QueuedEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, kind, batch_key, payload, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.Kind, e.BatchKey, e.Payload, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *pgEventRepository) GetByID(ctx context.Context, id string) (*domain.QueuedEvent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, kind, batch_key, payload, created_at, processed_at, batch_id
		FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *pgEventRepository) FindPending(ctx context.Context, limit int) ([]*domain.QueuedEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, batch_key, payload, created_at, processed_at, batch_id
		FROM events
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("find pending events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *pgEventRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE processed_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending events: %w", err)
	}
	return n, nil
}

func (r *pgEventRepository) MarkProcessed(ctx context.Context, ids []string, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET processed_at = $1
		WHERE id = ANY($2) AND processed_at IS NULL`, at, ids)
	if err != nil {
		return 0, fmt.Errorf("mark processed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgEventRepository) CreateBatch(ctx context.Context, b *domain.Batch, at time.Time) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO batches (id, batch_key, kind, event_ids, recipients, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.BatchKey, b.Kind, b.EventIDs, b.Recipients, b.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE events
		SET processed_at = $1, batch_id = $2
		WHERE id = ANY($3) AND processed_at IS NULL`, at, b.ID, b.EventIDs)
	if err != nil {
		return 0, fmt.Errorf("claim batch events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *pgEventRepository) GetBatch(ctx context.Context, id string) (*domain.Batch, []*domain.QueuedEvent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, batch_key, kind, event_ids, recipients, created_at
		FROM batches WHERE id = $1`, id)

	var b domain.Batch
	err := row.Scan(&b.ID, &b.BatchKey, &b.Kind, &b.EventIDs, &b.Recipients, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get batch: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, batch_key, payload, created_at, processed_at, batch_id
		FROM events WHERE batch_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get batch events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	return &b, events, err
}

// ---- helpers ----

// scanEvent reads a single event row from any pgx row type.
func scanEvent(row pgx.Row) (*domain.QueuedEvent, error) {
	var e domain.QueuedEvent
	err := row.Scan(
		&e.ID, &e.Kind, &e.BatchKey, &e.Payload,
		&e.CreatedAt, &e.ProcessedAt, &e.BatchID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]*domain.QueuedEvent, error) {
	var result []*domain.QueuedEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
