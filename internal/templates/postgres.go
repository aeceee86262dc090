package templates

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresOverrides stores tenant template overrides in the
// template_overrides table, keyed by (owner_key, template_id).
type PostgresOverrides struct {
	db *sql.DB
}

func NewPostgresOverrides(db *sql.DB) *PostgresOverrides {
	return &PostgresOverrides{db: db}
}

func (r *PostgresOverrides) GetOverride(ctx context.Context, tenantKey, templateID string) (*Override, error) {
	const query = `SELECT subject, body, updated_at FROM template_overrides WHERE owner_key = $1 AND template_id = $2`

	var o Override
	err := r.db.QueryRowContext(ctx, query, tenantKey, templateID).Scan(&o.Subject, &o.Body, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query override: %w", err)
	}
	return &o, nil
}

// UpsertOverride writes subject/body with merge semantics: only the columns it
// owns are touched, so concurrent writers to other columns are not stomped.
// Same-column writes are last-write-wins.
func (r *PostgresOverrides) UpsertOverride(ctx context.Context, tenantKey, templateID, subject, body string) error {
	const query = `
		INSERT INTO template_overrides (owner_key, template_id, subject, body, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_key, template_id)
		DO UPDATE SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, tenantKey, templateID, subject, body, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}
