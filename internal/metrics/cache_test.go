package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/tolutally/matchbox-web/internal/cache"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/mocks"
)

func TestCacheWrapper_GetTokenStats_CacheHit(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	ctrl := gomock.NewController(t)
	mockSource := mocks.NewMockStatsSource(ctrl)
	// No expectations: if Stats is called, gomock fails automatically

	wrapper := NewCacheWrapper(mockSource, memCache)

	_ = memCache.Set(ctx, KeyTokensTotal, 10, time.Minute)
	_ = memCache.Set(ctx, KeyTokensActive, 6, time.Minute)
	_ = memCache.Set(ctx, KeyTokensUsed, 3, time.Minute)
	_ = memCache.Set(ctx, KeyTokensExpired, 1, time.Minute)

	stats, err := wrapper.GetTokenStats(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.Total != 10 || stats.Active != 6 || stats.Used != 3 || stats.Expired != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCacheWrapper_GetTokenStats_CacheMiss(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	ctrl := gomock.NewController(t)
	mockSource := mocks.NewMockStatsSource(ctrl)
	mockSource.EXPECT().
		Stats(gomock.Any()).
		Return(core.TokenStats{Total: 5, Active: 2, Used: 2, Expired: 1}, nil).
		Times(1)

	wrapper := NewCacheWrapper(mockSource, memCache)

	stats, err := wrapper.GetTokenStats(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.Total != 5 || stats.Active != 2 || stats.Used != 2 || stats.Expired != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Second call is served from cache; Times(1) enforces no second scan
	if _, err := wrapper.GetTokenStats(ctx, time.Minute); err != nil {
		t.Fatalf("Expected no error on cached call, got %v", err)
	}

	cached, err := memCache.Get(ctx, KeyTokensUsed)
	if err != nil || cached != 2 {
		t.Errorf("Expected cached used=2, got %d err=%v", cached, err)
	}
}

func TestCacheWrapper_GetTokenStats_SourceError(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	ctrl := gomock.NewController(t)
	mockSource := mocks.NewMockStatsSource(ctrl)
	expectedErr := errors.New("store unreachable")
	mockSource.EXPECT().Stats(gomock.Any()).Return(core.TokenStats{}, expectedErr).Times(1)

	wrapper := NewCacheWrapper(mockSource, memCache)

	_, err := wrapper.GetTokenStats(ctx, time.Minute)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected source error, got %v", err)
	}

	if _, err := memCache.Get(ctx, KeyTokensTotal); err == nil {
		t.Error("Failed fetch must not populate the cache")
	}
}
