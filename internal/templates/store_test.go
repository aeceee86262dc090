package templates

import (
	"context"
	"errors"
	"testing"
	"time"

	"tablenotify/internal/common/logger"

	stderrors "tablenotify/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Repository
// ==========================

type MockOverrides struct {
	mock.Mock
}

func (m *MockOverrides) GetOverride(ctx context.Context, tenantKey, templateID string) (*Override, error) {
	args := m.Called(ctx, tenantKey, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Override), args.Error(1)
}

func (m *MockOverrides) UpsertOverride(ctx context.Context, tenantKey, templateID, subject, body string) error {
	args := m.Called(ctx, tenantKey, templateID, subject, body)
	return args.Error(0)
}

// ==========================
// GetTemplate
// ==========================

func TestGetTemplate_DefaultWhenNoOverride(t *testing.T) {
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).Return(nil, nil)

	store := NewStore(repo, logger.NewNoOpLogger())
	tpl, ok := store.GetTemplate(context.Background(), KindBookingAccepted, "tenant-1")

	require.True(t, ok)
	def, _ := Default(KindBookingAccepted)
	assert.Equal(t, def.Subject, tpl.Subject)
	assert.Equal(t, def.Body, tpl.Body)
	assert.Nil(t, tpl.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestGetTemplate_OverrideWins(t *testing.T) {
	now := time.Now().UTC()
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindWaitingList).Return(&Override{
		Subject:   "Custom subject",
		Body:      "Custom body {{guestName}}",
		UpdatedAt: now,
	}, nil)

	store := NewStore(repo, logger.NewNoOpLogger())
	tpl, ok := store.GetTemplate(context.Background(), KindWaitingList, "tenant-1")

	require.True(t, ok)
	assert.Equal(t, "Custom subject", tpl.Subject)
	assert.Equal(t, "Custom body {{guestName}}", tpl.Body)
	require.NotNil(t, tpl.UpdatedAt)
	assert.Equal(t, now, *tpl.UpdatedAt)

	// Placeholder contract comes from the compiled-in default, not the override.
	def, _ := Default(KindWaitingList)
	assert.Equal(t, def.Placeholders, tpl.Placeholders)
}

func TestGetTemplate_EmptyOverrideFallsBackToDefault(t *testing.T) {
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindNoAvailability).Return(&Override{
		Subject: "  ",
		Body:    "",
	}, nil)

	store := NewStore(repo, logger.NewNoOpLogger())
	tpl, ok := store.GetTemplate(context.Background(), KindNoAvailability, "tenant-1")

	require.True(t, ok)
	def, _ := Default(KindNoAvailability)
	assert.Equal(t, def.Subject, tpl.Subject)
}

func TestGetTemplate_LookupErrorDegradesToDefault(t *testing.T) {
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).
		Return(nil, errors.New("connection refused"))

	store := NewStore(repo, logger.NewNoOpLogger())
	tpl, ok := store.GetTemplate(context.Background(), KindBookingAccepted, "tenant-1")

	require.True(t, ok)
	def, _ := Default(KindBookingAccepted)
	assert.Equal(t, def.Body, tpl.Body)
}

func TestGetTemplate_NoTenantSkipsLookup(t *testing.T) {
	repo := new(MockOverrides)

	store := NewStore(repo, logger.NewNoOpLogger())
	tpl, ok := store.GetTemplate(context.Background(), KindUpgradePlan, "")

	require.True(t, ok)
	def, _ := Default(KindUpgradePlan)
	assert.Equal(t, def.Subject, tpl.Subject)
	repo.AssertNotCalled(t, "GetOverride", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTemplate_UnknownKind(t *testing.T) {
	store := NewStore(new(MockOverrides), logger.NewNoOpLogger())
	_, ok := store.GetTemplate(context.Background(), "password-reset", "tenant-1")
	assert.False(t, ok)
}

// ==========================
// SaveTemplate
// ==========================

func TestSaveTemplate_Upserts(t *testing.T) {
	repo := new(MockOverrides)
	repo.On("UpsertOverride", mock.Anything, "tenant-1", KindBookingAccepted, "S", "B").Return(nil)

	store := NewStore(repo, logger.NewNoOpLogger())
	err := store.SaveTemplate(context.Background(), KindBookingAccepted, "tenant-1", "S", "B")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSaveTemplate_RequiresTenant(t *testing.T) {
	store := NewStore(new(MockOverrides), logger.NewNoOpLogger())
	err := store.SaveTemplate(context.Background(), KindBookingAccepted, "", "S", "B")

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeAuthenticationRequired, stdErr.Code)
}

func TestSaveTemplate_RejectsEmptyTemplateID(t *testing.T) {
	store := NewStore(new(MockOverrides), logger.NewNoOpLogger())
	err := store.SaveTemplate(context.Background(), "  ", "tenant-1", "S", "B")

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.Normalize(err).Code)
}

func TestSaveTemplate_RejectsUnknownTemplateID(t *testing.T) {
	store := NewStore(new(MockOverrides), logger.NewNoOpLogger())
	err := store.SaveTemplate(context.Background(), "password-reset", "tenant-1", "S", "B")

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeTemplateInvalid, stderrors.Normalize(err).Code)
}

// Round-trip through the store layer: a saved override is what a subsequent
// get resolves.
func TestSaveThenGet_RoundTrip(t *testing.T) {
	now := time.Now().UTC()
	repo := new(MockOverrides)
	repo.On("UpsertOverride", mock.Anything, "tenant-1", KindBookingAccepted, "S", "B").Return(nil)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).Return(&Override{
		Subject:   "S",
		Body:      "B",
		UpdatedAt: now,
	}, nil)

	store := NewStore(repo, logger.NewNoOpLogger())
	require.NoError(t, store.SaveTemplate(context.Background(), KindBookingAccepted, "tenant-1", "S", "B"))

	tpl, ok := store.GetTemplate(context.Background(), KindBookingAccepted, "tenant-1")
	require.True(t, ok)
	assert.Equal(t, "S", tpl.Subject)
	assert.Equal(t, "B", tpl.Body)
}
