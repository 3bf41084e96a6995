package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizlink/digest-engine/internal/domain"
)

type pgPreferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPgPreferenceRepository returns a PreferenceRepository backed by PostgreSQL.
func NewPgPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &pgPreferenceRepository{pool: pool}
}

func (r *pgPreferenceRepository) ListEnabled(ctx context.Context) ([]*domain.BatchingPreference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT admin_group_id, batching_enabled, window_seconds, min_batch_size,
		       primary_recipient, extra_recipients, kinds
		FROM batch_preferences
		WHERE batching_enabled = TRUE
		ORDER BY admin_group_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list enabled preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*domain.BatchingPreference
	for rows.Next() {
		var p domain.BatchingPreference
		var windowSeconds int
		var kinds []string
		err := rows.Scan(
			&p.AdminGroupID, &p.BatchingEnabled, &windowSeconds, &p.MinBatchSize,
			&p.PrimaryRecipient, &p.ExtraRecipients, &kinds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		p.Window = time.Duration(windowSeconds) * time.Second
		p.Kinds = make([]domain.Kind, len(kinds))
		for i, k := range kinds {
			p.Kinds[i] = domain.Kind(k)
		}
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}
