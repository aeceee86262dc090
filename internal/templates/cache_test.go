package templates

import (
	"context"
	"testing"
	"time"

	"tablenotify/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, inner OverrideRepository) (*CachedOverrides, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCachedOverrides(inner, client, time.Minute, logger.NewNoOpLogger()), mr
}

func TestCachedOverrides_ReadThrough(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).
		Return(&Override{Subject: "S", Body: "B", UpdatedAt: now}, nil).Once()

	cache, _ := newTestCache(t, repo)

	// First read misses the cache and hits the repository.
	o, err := cache.GetOverride(context.Background(), "tenant-1", KindBookingAccepted)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "S", o.Subject)

	// Second read is served from the cache; the mock allows only one call.
	o, err = cache.GetOverride(context.Background(), "tenant-1", KindBookingAccepted)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "B", o.Body)
	repo.AssertExpectations(t)
}

func TestCachedOverrides_MissIsNotCached(t *testing.T) {
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindWaitingList).
		Return(nil, nil).Twice()

	cache, _ := newTestCache(t, repo)

	for i := 0; i < 2; i++ {
		o, err := cache.GetOverride(context.Background(), "tenant-1", KindWaitingList)
		require.NoError(t, err)
		assert.Nil(t, o)
	}
	repo.AssertExpectations(t)
}

func TestCachedOverrides_UpsertInvalidates(t *testing.T) {
	now := time.Now().UTC()
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).
		Return(&Override{Subject: "old", Body: "old", UpdatedAt: now}, nil).Once()
	repo.On("UpsertOverride", mock.Anything, "tenant-1", KindBookingAccepted, "new", "new").Return(nil)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).
		Return(&Override{Subject: "new", Body: "new", UpdatedAt: now}, nil).Once()

	cache, mr := newTestCache(t, repo)
	ctx := context.Background()

	_, err := cache.GetOverride(ctx, "tenant-1", KindBookingAccepted)
	require.NoError(t, err)
	assert.True(t, mr.Exists("tpl:tenant-1:"+KindBookingAccepted))

	require.NoError(t, cache.UpsertOverride(ctx, "tenant-1", KindBookingAccepted, "new", "new"))
	assert.False(t, mr.Exists("tpl:tenant-1:"+KindBookingAccepted))

	o, err := cache.GetOverride(ctx, "tenant-1", KindBookingAccepted)
	require.NoError(t, err)
	assert.Equal(t, "new", o.Subject)
}

func TestCachedOverrides_BrokenCacheFallsThrough(t *testing.T) {
	now := time.Now().UTC()
	repo := new(MockOverrides)
	repo.On("GetOverride", mock.Anything, "tenant-1", KindBookingAccepted).
		Return(&Override{Subject: "S", Body: "B", UpdatedAt: now}, nil)

	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("tpl:tenant-1:" + KindBookingAccepted).SetErr(assert.AnError)
	redisMock.Regexp().ExpectSet("tpl:tenant-1:"+KindBookingAccepted, `.*`, time.Minute).SetErr(assert.AnError)

	cache := NewCachedOverrides(repo, client, time.Minute, logger.NewNoOpLogger())
	o, err := cache.GetOverride(context.Background(), "tenant-1", KindBookingAccepted)

	// A broken cache never breaks the lookup.
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "S", o.Subject)
}
