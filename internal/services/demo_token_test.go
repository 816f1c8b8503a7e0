package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/metrics"
	"github.com/tolutally/matchbox-web/internal/mocks"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/tokenstore"
)

var tokenPattern = regexp.MustCompile(`^DEMO-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}$`)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupTokenService(t *testing.T, fallback string) (*DemoTokenService, *testClock) {
	t.Helper()
	clock := newTestClock()
	store := tokenstore.NewMemoryStoreWithClock(clock.Now)
	cfg := &config.Config{PrivateDemoPassword: fallback}
	svc := NewDemoTokenService(store, cfg, nil, metrics.NewNoopMetrics()).WithClock(clock.Now)
	return svc, clock
}

func TestGenerate_Defaults(t *testing.T) {
	svc, clock := setupTokenService(t, "")

	res, err := svc.Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Tokens, 1)
	assert.Equal(t, DefaultExpiryHours, res.ExpiresInHours)
	assert.Equal(t, clock.Now().Add(48*time.Hour), res.ExpiresAt)
	assert.Regexp(t, tokenPattern, res.Tokens[0])
}

func TestGenerate_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		req       GenerateRequest
		wantCount int
		wantHours int
	}{
		{"count above max", GenerateRequest{Count: 50}, 20, 48},
		{"negative count", GenerateRequest{Count: -3}, 1, 48},
		{"hours above max", GenerateRequest{ExpiresInHours: 10000}, 1, 720},
		{"negative hours", GenerateRequest{ExpiresInHours: -5}, 1, 1},
		{"explicit values", GenerateRequest{Count: 5, ExpiresInHours: 24}, 5, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTokenService(t, "")
			res, err := svc.Generate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Len(t, res.Tokens, tt.wantCount)
			assert.Equal(t, tt.wantHours, res.ExpiresInHours)
		})
	}
}

func TestGenerate_SharedExpiry(t *testing.T) {
	svc, clock := setupTokenService(t, "")
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateRequest{Count: 5, ExpiresInHours: 24, Note: "pilot"})
	require.NoError(t, err)
	require.Len(t, res.Tokens, 5)

	seen := make(map[string]bool)
	for _, id := range res.Tokens {
		assert.Regexp(t, tokenPattern, id)
		assert.False(t, seen[id], "ids must be unique")
		seen[id] = true

		stored, err := svc.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(24*time.Hour).UnixMilli(), stored.ExpiresAt.UnixMilli())
		assert.Equal(t, res.ExpiresAt.UnixMilli(), stored.ExpiresAt.UnixMilli())
		assert.Equal(t, "pilot", stored.Note)
		assert.False(t, stored.Used)
	}
}

func TestGenerate_StoreNotConfigured(t *testing.T) {
	svc := NewDemoTokenService(nil, &config.Config{}, nil, metrics.NewNoopMetrics())

	_, err := svc.Generate(context.Background(), GenerateRequest{Count: 1})
	assert.ErrorIs(t, err, ErrStoreNotConfigured)
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	gomock.InOrder(
		store.EXPECT().Create(gomock.Any(), gomock.Any(), 48*time.Hour+DefaultTokenRetention).Return(tokenstore.ErrTokenExists),
		store.EXPECT().Create(gomock.Any(), gomock.Any(), 48*time.Hour+DefaultTokenRetention).Return(nil),
	)

	svc := NewDemoTokenService(store, &config.Config{}, nil, metrics.NewNoopMetrics())
	res, err := svc.Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Tokens, 1)
}

func TestGenerate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	store.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tokenstore.ErrTokenExists).
		Times(maxCreateAttempts)

	svc := NewDemoTokenService(store, &config.Config{}, nil, metrics.NewNoopMetrics())
	_, err := svc.Generate(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, tokenstore.ErrTokenExists)
}

func TestGenerate_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	store.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.Join(tokenstore.ErrStoreUnavailable, errors.New("dial tcp: refused")))

	rec := mocks.NewMockRecorder(ctrl)
	rec.EXPECT().RecordTokensGenerated(0, false)
	rec.EXPECT().RecordStoreError("create")

	svc := NewDemoTokenService(store, &config.Config{}, nil, rec)
	_, err := svc.Generate(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrStoreNotConfigured)
}

func TestValidate_ConsumesOnce(t *testing.T) {
	svc, _ := setupTokenService(t, "")
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateRequest{})
	require.NoError(t, err)
	id := res.Tokens[0]

	got, err := svc.Validate(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	require.NotNil(t, got.Token)
	assert.True(t, got.Token.Used)
	assert.NotNil(t, got.Token.UsedAt)

	_, err = svc.Validate(ctx, id)
	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	assert.True(t, IsValidationFailure(err))
}

func TestValidate_Normalizes(t *testing.T) {
	svc, _ := setupTokenService(t, "")
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateRequest{})
	require.NoError(t, err)
	id := res.Tokens[0]

	// "DEMO-ABCD-EFGH" typed as "  demo abcd efgh "
	raw := "  " + strings.ToLower(id[:4]) + " " + strings.ToLower(id[5:9]) + "\t" + strings.ToLower(id[10:]) + " "
	_, err = svc.Validate(ctx, raw)
	assert.NoError(t, err)
}

func TestValidate_Expired(t *testing.T) {
	svc, clock := setupTokenService(t, "")
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateRequest{ExpiresInHours: 1})
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)

	_, err = svc.Validate(ctx, res.Tokens[0])
	assert.ErrorIs(t, err, ErrTokenExpired)

	stored, err := svc.store.Get(ctx, res.Tokens[0])
	require.NoError(t, err)
	assert.False(t, stored.Used, "expired tokens are never marked used")
}

func TestValidate_Unknown(t *testing.T) {
	svc, _ := setupTokenService(t, "")

	_, err := svc.Validate(context.Background(), "DEMO-ZZZZ-ZZZZ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Required(t *testing.T) {
	svc, _ := setupTokenService(t, "")

	_, err := svc.Validate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrTokenRequired)
}

func TestValidate_ConcurrentSingleSuccess(t *testing.T) {
	svc, _ := setupTokenService(t, "")
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateRequest{})
	require.NoError(t, err)

	var ok, used atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := svc.Validate(ctx, res.Tokens[0])
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrTokenAlreadyUsed):
				used.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int64(1), ok.Load())
	assert.Equal(t, int64(19), used.Load())
}

func TestValidate_FallbackWhenUnconfigured(t *testing.T) {
	tests := []struct {
		name     string
		static   string
		raw      string
		accepted bool
	}{
		{"exact match", "OpenSesame", "OpenSesame", true},
		{"case-insensitive via normalization", "OpenSesame", "opensesame", true},
		{"wrong password", "OpenSesame", "nope", false},
		{"empty static rejects everything", "", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDemoTokenService(
				nil,
				&config.Config{PrivateDemoPassword: tt.static},
				nil,
				metrics.NewNoopMetrics(),
			)
			res, err := svc.Validate(context.Background(), tt.raw)
			if tt.accepted {
				require.NoError(t, err)
				assert.True(t, res.Fallback)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_FallbackWhenUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	store.EXPECT().
		Consume(gomock.Any(), "PRIVATE-PASS", gomock.Any()).
		Return(nil, errors.Join(tokenstore.ErrStoreUnavailable, errors.New("timeout"))).
		Times(2)

	rec := mocks.NewMockRecorder(ctrl)
	rec.EXPECT().RecordStoreError("consume").Times(2)
	rec.EXPECT().RecordTokenValidation(ValidationFallback, gomock.Any())
	rec.EXPECT().RecordTokenValidation(ValidationFallbackRejected, gomock.Any())

	svc := NewDemoTokenService(store, &config.Config{PrivateDemoPassword: "private pass"}, nil, rec)

	res, err := svc.Validate(context.Background(), "private pass")
	require.NoError(t, err)
	assert.True(t, res.Fallback)

	svc.fallbackPassword = "something else"
	_, err = svc.Validate(context.Background(), "private pass")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RecordsDistinctCause(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	rec := mocks.NewMockRecorder(ctrl)

	store.EXPECT().Consume(gomock.Any(), "DEMO-AAAA-BBBB", gomock.Any()).Return(nil, tokenstore.ErrTokenExpired)
	rec.EXPECT().RecordTokenValidation(ValidationExpired, gomock.Any())

	svc := NewDemoTokenService(store, &config.Config{}, nil, rec)
	_, err := svc.Validate(context.Background(), "demo-aaaa-bbbb")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_UnexpectedStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	store.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	svc := NewDemoTokenService(store, &config.Config{PrivateDemoPassword: "x"}, nil, metrics.NewNoopMetrics())
	_, err := svc.Validate(context.Background(), "DEMO-AAAA-BBBB")
	require.Error(t, err)
	assert.False(t, IsValidationFailure(err))
}

func TestList_StatusAndOrder(t *testing.T) {
	svc, clock := setupTokenService(t, "")
	ctx := context.Background()

	first, err := svc.Generate(ctx, GenerateRequest{ExpiresInHours: 1})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.Generate(ctx, GenerateRequest{ExpiresInHours: 48})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	third, err := svc.Generate(ctx, GenerateRequest{ExpiresInHours: 48})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, third.Tokens[0])
	require.NoError(t, err)

	clock.Advance(time.Hour)

	res, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, res.Tokens, 3)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Active)
	assert.Equal(t, 1, res.Used)
	assert.Equal(t, 1, res.Expired)
	assert.Empty(t, res.Warning)

	assert.Equal(t, third.Tokens[0], res.Tokens[0].ID)
	assert.Equal(t, models.TokenStatusUsed, res.Tokens[0].Status)
	assert.Equal(t, second.Tokens[0], res.Tokens[1].ID)
	assert.Equal(t, models.TokenStatusActive, res.Tokens[1].Status)
	assert.Equal(t, first.Tokens[0], res.Tokens[2].ID)
	assert.Equal(t, models.TokenStatusExpired, res.Tokens[2].Status)

	// Listing is pure
	again, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Total, again.Total)
	assert.Equal(t, res.Expired, again.Expired)
}

func TestList_NotConfigured(t *testing.T) {
	svc := NewDemoTokenService(nil, &config.Config{}, nil, metrics.NewNoopMetrics())

	res, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Tokens)
	assert.Equal(t, WarningStoreNotConfigured, res.Warning)
}

func TestList_Unreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenStore(ctrl)
	store.EXPECT().List(gomock.Any()).Return(nil, errors.Join(tokenstore.ErrStoreUnavailable, errors.New("eof")))

	svc := NewDemoTokenService(store, &config.Config{}, nil, metrics.NewNoopMetrics())
	res, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WarningStoreUnavailable, res.Warning)
}

func TestDelete_Selectors(t *testing.T) {
	svc, clock := setupTokenService(t, "")
	ctx := context.Background()

	expiring, err := svc.Generate(ctx, GenerateRequest{Count: 2, ExpiresInHours: 1})
	require.NoError(t, err)
	lasting, err := svc.Generate(ctx, GenerateRequest{Count: 3, ExpiresInHours: 48})
	require.NoError(t, err)
	_, err = svc.Validate(ctx, lasting.Tokens[0])
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	t.Run("no selector", func(t *testing.T) {
		_, err := svc.Delete(ctx, DeleteSelector{})
		assert.ErrorIs(t, err, ErrNoDeleteSelector)
	})

	t.Run("used only", func(t *testing.T) {
		n, err := svc.Delete(ctx, DeleteSelector{Used: true})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("expired with token ignored", func(t *testing.T) {
		n, err := svc.Delete(ctx, DeleteSelector{Expired: true, Token: lasting.Tokens[1]})
		require.NoError(t, err)
		assert.Equal(t, 2, n, "bulk selector takes precedence over token")

		_, err = svc.store.Get(ctx, lasting.Tokens[1])
		assert.NoError(t, err)
		_, err = svc.store.Get(ctx, expiring.Tokens[0])
		assert.ErrorIs(t, err, tokenstore.ErrTokenNotFound)
	})

	t.Run("single token idempotent", func(t *testing.T) {
		n, err := svc.Delete(ctx, DeleteSelector{Token: strings.ToLower(lasting.Tokens[1])})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = svc.Delete(ctx, DeleteSelector{Token: lasting.Tokens[1]})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("all", func(t *testing.T) {
		n, err := svc.Delete(ctx, DeleteSelector{All: true, Used: true})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		res, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
	})
}

func TestDelete_NotConfigured(t *testing.T) {
	svc := NewDemoTokenService(nil, &config.Config{}, nil, metrics.NewNoopMetrics())

	_, err := svc.Delete(context.Background(), DeleteSelector{All: true})
	assert.ErrorIs(t, err, ErrStoreNotConfigured)
}

// Three one-hour tokens go from active to expired on the same clock the
// store uses, then an expired sweep removes all of them.
func TestLifecycle_ExpireAndSweep(t *testing.T) {
	svc, clock := setupTokenService(t, "")
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateRequest{Count: 3, ExpiresInHours: 1, Note: "QA"})
	require.NoError(t, err)

	res, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Active)

	clock.Advance(61 * time.Minute)

	res, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 0, res.Active)
	assert.Equal(t, 3, res.Expired)

	n, err := svc.Delete(ctx, DeleteSelector{Expired: true})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestLifecycle_StoreDropsRecordAfterRetention(t *testing.T) {
	clock := newTestClock()
	store := tokenstore.NewMemoryStoreWithClock(clock.Now)
	cfg := &config.Config{TokenRetention: 30 * time.Minute}
	svc := NewDemoTokenService(store, cfg, nil, metrics.NewNoopMetrics()).WithClock(clock.Now)
	ctx := context.Background()

	gen, err := svc.Generate(ctx, GenerateRequest{ExpiresInHours: 1})
	require.NoError(t, err)

	clock.Advance(89 * time.Minute)
	res, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)

	clock.Advance(2 * time.Minute)
	res, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	_, err = svc.Validate(ctx, gen.Tokens[0])
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStats(t *testing.T) {
	svc, _ := setupTokenService(t, "")
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateRequest{Count: 3})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Active)
}

func TestDeleteSelector_Name(t *testing.T) {
	assert.Equal(t, "all", DeleteSelector{All: true, Used: true}.Name())
	assert.Equal(t, "used_expired", DeleteSelector{Used: true, Expired: true}.Name())
	assert.Equal(t, "used", DeleteSelector{Used: true}.Name())
	assert.Equal(t, "expired", DeleteSelector{Expired: true}.Name())
	assert.Equal(t, "single", DeleteSelector{Token: "DEMO-AAAA-BBBB"}.Name())
	assert.Equal(t, "none", DeleteSelector{}.Name())
}
