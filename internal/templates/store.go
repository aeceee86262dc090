package templates

import (
	"context"
	"strings"

	"tablenotify/internal/common/errors"
	"tablenotify/internal/common/logger"
)

// OverrideRepository is the persistence collaborator for tenant template
// overrides. GetOverride returns (nil, nil) when no override exists.
type OverrideRepository interface {
	GetOverride(ctx context.Context, tenantKey, templateID string) (*Override, error)
	UpsertOverride(ctx context.Context, tenantKey, templateID, subject, body string) error
}

// Store resolves notification templates: tenant override when one exists and
// is non-empty, compiled-in default otherwise.
type Store struct {
	overrides OverrideRepository
	logger    logger.Logger
}

func NewStore(overrides OverrideRepository, log logger.Logger) *Store {
	return &Store{
		overrides: overrides,
		logger:    log.WithFields(map[string]interface{}{"component": "template-store"}),
	}
}

// GetTemplate never fails: any lookup problem degrades to the compiled-in
// default for templateID. The second return value is false only when
// templateID is outside the closed set, which callers treat as an error.
func (s *Store) GetTemplate(ctx context.Context, templateID, tenantKey string) (Template, bool) {
	def, ok := Default(templateID)
	if !ok {
		return Template{}, false
	}

	if tenantKey == "" || s.overrides == nil {
		return def, true
	}

	override, err := s.overrides.GetOverride(ctx, tenantKey, templateID)
	if err != nil {
		s.logger.Warn("override lookup failed, using default", map[string]interface{}{
			"templateId": templateID,
			"tenant":     tenantKey,
			"error":      err.Error(),
		})
		return def, true
	}
	if override == nil || strings.TrimSpace(override.Subject) == "" || strings.TrimSpace(override.Body) == "" {
		return def, true
	}

	// The override customizes wording only; the placeholder contract stays
	// with the compiled-in definition.
	updatedAt := override.UpdatedAt
	return Template{
		ID:           templateID,
		Subject:      override.Subject,
		Body:         override.Body,
		Placeholders: def.Placeholders,
		UpdatedAt:    &updatedAt,
	}, true
}

// SaveTemplate upserts a tenant override. Writes require an authenticated
// tenant; a missing or malformed templateID is a validation error.
func (s *Store) SaveTemplate(ctx context.Context, templateID, tenantKey, subject, body string) error {
	if tenantKey == "" {
		return errors.NewAuthenticationRequiredError("template overrides can only be saved by a tenant")
	}
	if strings.TrimSpace(templateID) == "" {
		return errors.NewValidationError("templateId is required")
	}
	if !IsValidKind(templateID) {
		return errors.NewTemplateInvalidError(templateID)
	}

	if err := s.overrides.UpsertOverride(ctx, tenantKey, templateID, subject, body); err != nil {
		return errors.NewTemplateSaveFailedError(err)
	}

	s.logger.Info("template override saved", map[string]interface{}{
		"templateId": templateID,
		"tenant":     tenantKey,
	})
	return nil
}
