// Package sender resolves the from-identity of outgoing notification emails.
package sender

import (
	"context"
	"strings"

	"tablenotify/internal/common/logger"
	"tablenotify/internal/tenant"
)

// Identity is the resolved from name/address pair.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Resolver derives the sender identity for an outgoing message. The
// from-address is always the deployment's single verified address; only the
// display name varies per tenant.
type Resolver struct {
	settings     tenant.SettingsReader
	fromAddress  string
	fallbackName string
	logger       logger.Logger
}

func NewResolver(settings tenant.SettingsReader, fromAddress, fallbackName string, log logger.Logger) *Resolver {
	return &Resolver{
		settings:     settings,
		fromAddress:  fromAddress,
		fallbackName: fallbackName,
		logger:       log.WithFields(map[string]interface{}{"component": "sender-resolver"}),
	}
}

// Resolve never fails. An explicit name+email pair wins unconditionally.
// Otherwise the owner key (falling back to the authenticated actor) selects
// the tenant whose restaurant name becomes the display name; every failure
// path degrades to the fallback name.
func (r *Resolver) Resolve(ctx context.Context, explicitName, explicitEmail, ownerKey, actorKey string) Identity {
	if explicitName != "" && explicitEmail != "" {
		return Identity{Name: explicitName, Email: explicitEmail}
	}

	owner := ownerKey
	if owner == "" {
		owner = actorKey
	}

	name := r.fallbackName
	if owner != "" && r.settings != nil {
		settings, err := r.settings.GetSettingsByID(ctx, owner)
		if err != nil {
			r.logger.Warn("settings lookup failed, using fallback sender name", map[string]interface{}{
				"owner": owner,
				"error": err.Error(),
			})
		} else if settings != nil && strings.TrimSpace(settings.RestaurantName) != "" {
			name = settings.RestaurantName
		}
	}

	return Identity{Name: name, Email: r.fromAddress}
}
