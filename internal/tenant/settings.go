// Package tenant provides read access to per-restaurant settings.
package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Settings is one restaurant account's configuration. RestaurantName may be
// empty when the tenant never completed onboarding.
type Settings struct {
	OwnerKey       string    `json:"ownerKey"`
	RestaurantName string    `json:"restaurantName,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SettingsReader is the collaborator the sender resolver and the notification
// actions depend on. GetSettingsByID returns (nil, nil) for an unknown owner.
type SettingsReader interface {
	GetSettingsByID(ctx context.Context, ownerKey string) (*Settings, error)
}

// PostgresSettings reads tenant settings from the tenant_settings table.
type PostgresSettings struct {
	db *sql.DB
}

func NewPostgresSettings(db *sql.DB) *PostgresSettings {
	return &PostgresSettings{db: db}
}

func (r *PostgresSettings) GetSettingsByID(ctx context.Context, ownerKey string) (*Settings, error) {
	const query = `SELECT owner_key, COALESCE(restaurant_name, ''), updated_at FROM tenant_settings WHERE owner_key = $1`

	var s Settings
	err := r.db.QueryRowContext(ctx, query, ownerKey).Scan(&s.OwnerKey, &s.RestaurantName, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &s, nil
}

// ResolveAPIToken maps a tenant API token to its owner key. Used once per
// request by the auth middleware; an unknown token returns ("", nil).
func (r *PostgresSettings) ResolveAPIToken(ctx context.Context, token string) (string, error) {
	const query = `SELECT owner_key FROM tenant_settings WHERE api_token = $1`

	var ownerKey string
	err := r.db.QueryRowContext(ctx, query, token).Scan(&ownerKey)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve api token: %w", err)
	}
	return ownerKey, nil
}
