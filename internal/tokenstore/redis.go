package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/token"
)

// Compile-time interface check.
var _ core.TokenStore = (*RedisStore)(nil)

const scanBatchSize = 200

// Consume result codes returned by consumeScript.
const (
	consumeOK int64 = iota
	consumeNotFound
	consumeUsed
	consumeExpired
	consumeMalformed
)

// consumeScript performs the check-and-set in one round trip. The TTL set at
// creation is preserved with KEEPTTL.
var consumeScript = rueidis.NewLuaScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return {1}
end
local ok, rec = pcall(cjson.decode, raw)
if ok and type(rec) == 'string' then
  ok, rec = pcall(cjson.decode, rec)
end
if not ok or type(rec) ~= 'table' then
  return {4}
end
if rec.used then
  return {2, raw}
end
local now = tonumber(ARGV[1])
if now > tonumber(rec.expiresAt) then
  return {3, raw}
end
rec.used = true
rec.usedAt = now
local out = cjson.encode(rec)
redis.call('SET', KEYS[1], out, 'KEEPTTL')
return {0, out}
`)

// RedisStore persists tokens in Redis through rueidis.
type RedisStore struct {
	client    rueidis.Client
	keyPrefix string
	owned     bool
	logger    *slog.Logger
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Logger    *slog.Logger
}

// NewRedisStore dials Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{opts.Addr},
		Password:     opts.Password,
		SelectDB:     opts.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", opts.Addr, err)
	}

	s := NewRedisStoreWithClient(client, opts.KeyPrefix, opts.Logger)
	s.owned = true
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client. Close leaves it open.
func NewRedisStoreWithClient(
	client rueidis.Client,
	keyPrefix string,
	logger *slog.Logger,
) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = token.DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Client exposes the underlying connection for sharing with caches.
func (s *RedisStore) Client() rueidis.Client {
	return s.client
}

func (s *RedisStore) key(id string) string {
	return token.Key(s.keyPrefix, id)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// Create writes the record with SET NX EX.
func (s *RedisStore) Create(ctx context.Context, t *models.DemoToken, ttl time.Duration) error {
	raw, err := token.Encode(t)
	if err != nil {
		return err
	}

	cmd := s.client.B().Set().
		Key(s.key(t.ID)).
		Value(string(raw)).
		Nx().
		ExSeconds(ttlSeconds(ttl)).
		Build()

	err = s.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		return nil
	case rueidis.IsRedisNil(err):
		return fmt.Errorf("%w: %s", ErrTokenExists, t.ID)
	default:
		return unavailable(err)
	}
}

// Get loads one record.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.DemoToken, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.key(id)).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrTokenNotFound
		}
		return nil, unavailable(err)
	}

	raw, err := resp.ToString()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", token.ErrMalformedRecord, err)
	}
	return token.Decode(id, []byte(raw))
}

// Consume runs the atomic check-and-set script.
func (s *RedisStore) Consume(
	ctx context.Context,
	id string,
	now time.Time,
) (*models.DemoToken, error) {
	resp := consumeScript.Exec(
		ctx,
		s.client,
		[]string{s.key(id)},
		[]string{strconv.FormatInt(now.UnixMilli(), 10)},
	)
	if err := resp.Error(); err != nil {
		return nil, unavailable(err)
	}

	parts, err := resp.ToArray()
	if err != nil || len(parts) == 0 {
		return nil, fmt.Errorf("%w: unexpected consume reply", ErrStoreUnavailable)
	}
	code, err := parts[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("%w: unexpected consume reply", ErrStoreUnavailable)
	}

	var raw []byte
	if len(parts) > 1 {
		if v, err := parts[1].ToString(); err == nil {
			raw = []byte(v)
		}
	}
	return s.consumeResult(id, code, raw, now)
}

// consumeResult maps a script reply onto the store contract. A consumed
// record that no longer decodes still counts as consumed.
func (s *RedisStore) consumeResult(
	id string,
	code int64,
	raw []byte,
	now time.Time,
) (*models.DemoToken, error) {
	var t *models.DemoToken
	if raw != nil {
		var err error
		if t, err = token.Decode(id, raw); err != nil {
			s.logger.Warn("Consume returned a malformed token record", "id", id, "error", err)
			t = nil
		}
	}

	switch code {
	case consumeOK:
		if t == nil {
			t = &models.DemoToken{ID: id}
			t.MarkUsed(now)
		}
		return t, nil
	case consumeNotFound:
		return nil, ErrTokenNotFound
	case consumeUsed:
		return t, ErrTokenAlreadyUsed
	case consumeExpired:
		return t, ErrTokenExpired
	default:
		return nil, token.ErrMalformedRecord
	}
}

// scanKeys walks the keyspace with SCAN MATCH <prefix>*.
func (s *RedisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().
			Cursor(cursor).
			Match(s.keyPrefix + "*").
			Count(scanBatchSize).
			Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, unavailable(err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

// List scans every record and decodes it. Keys that vanish between SCAN and
// MGET and values that fail to decode are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*models.DemoToken, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.DemoToken, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))
		batch := keys[start:end]

		values, err := s.client.Do(ctx, s.client.B().Mget().Key(batch...).Build()).ToArray()
		if err != nil {
			return nil, unavailable(err)
		}

		for i, val := range values {
			if val.IsNil() {
				continue
			}
			raw, err := val.ToString()
			if err != nil {
				continue
			}
			id := token.IDFromKey(s.keyPrefix, batch[i])
			t, err := token.Decode(id, []byte(raw))
			if err != nil {
				s.logger.Warn("Skipping malformed token record", "id", id, "error", err)
				continue
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// Delete issues one DEL for all ids.
func (s *RedisStore) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	n, err := s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).AsInt64()
	if err != nil {
		return 0, unavailable(err)
	}
	return int(n), nil
}

// Health pings Redis.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the connection when this store created it.
func (s *RedisStore) Close() error {
	if s.owned {
		s.client.Close()
	}
	return nil
}

// Name identifies the backend in logs and health output.
func (s *RedisStore) Name() string {
	return "redis"
}

// IsUnavailable reports whether err came from an unreachable backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// ttlSeconds rounds a TTL up to whole seconds, minimum one.
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
