package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCache struct{ err error }

func (f failingCache) Get(context.Context, string, interface{}) error { return f.err }
func (f failingCache) Set(context.Context, string, interface{}, time.Duration) error {
	return f.err
}
func (f failingCache) DeleteByPattern(context.Context, string) error { return f.err }

func TestRememberComputesOnceThenHits(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, zap.NewNop(), true)
	calls := 0
	compute := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	got, hit, err := Remember(context.Background(), cache, "k", 0, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, hit, err = Remember(context.Background(), cache, "k", 0, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, calls)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 1e-9)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	_, _, err := Remember(context.Background(), cache, "k", 0, func() (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)

	got, hit, err := Remember(context.Background(), cache, "k", 0, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, got)
}

func TestCacheServiceDisabledOrFailingBackendMisses(t *testing.T) {
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	var dest int
	assert.False(t, nilSvc.Get(context.Background(), "k", &dest))
	assert.NoError(t, nilSvc.Invalidate(context.Background(), "*"))

	disabled := NewCacheService(newMemoryCache(), nil, 0, nil, false)
	assert.False(t, disabled.Enabled())

	broken := NewCacheService(failingCache{err: errors.New("redis down")}, nil, 0, zap.NewNop(), true)
	assert.False(t, broken.Get(context.Background(), "k", &dest))
	broken.Set(context.Background(), "k", 1, 0)
	assert.Error(t, broken.Invalidate(context.Background(), "attendance:*"))

	got, hit, err := Remember(context.Background(), broken, "k", 0, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, got)
}
