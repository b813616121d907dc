package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/piano-academy-api/pkg/errors"
)

type cacheRepoFake struct {
	entries map[string][]byte
	failGet bool
}

func newCacheRepoFake() *cacheRepoFake {
	return &cacheRepoFake{entries: map[string][]byte{}}
}

func (f *cacheRepoFake) Get(ctx context.Context, key string, dest interface{}) error {
	if f.failGet {
		return errors.New("connection refused")
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *cacheRepoFake) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *cacheRepoFake) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range f.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.entries, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newCacheRepoFake()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil)

	var out map[string]int
	assert.False(t, svc.Get(context.Background(), FinanceSummaryKey(2024), &out))

	svc.Set(context.Background(), FinanceSummaryKey(2024), map[string]int{"year": 2024}, 0)
	svc.Set(context.Background(), "other", 1, 0)
	require.True(t, svc.Get(context.Background(), "finance:summary:2024", &out))
	assert.Equal(t, 2024, out["year"])

	svc.InvalidateFinance(context.Background())
	assert.False(t, svc.Get(context.Background(), FinanceSummaryKey(2024), &out))
	assert.Contains(t, repo.entries, "other")
}

func TestCacheServiceBackendErrorIsMiss(t *testing.T) {
	repo := newCacheRepoFake()
	repo.failGet = true
	svc := NewCacheService(repo, nil, 0, nil)

	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))
}

func TestDisabledCacheService(t *testing.T) {
	svc := NewCacheService(nil, nil, 0, nil)
	assert.False(t, svc.Enabled())
	svc.Set(context.Background(), "k", 1, 0)
	svc.InvalidateFinance(context.Background())
	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))
}
