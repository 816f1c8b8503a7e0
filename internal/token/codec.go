package token

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/tolutally/matchbox-web/internal/models"
)

const (
	// Alphabet excludes I, O, 0 and 1 to avoid transcription mistakes.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// Prefix is the fixed leading group of every id.
	Prefix = "DEMO"

	// DefaultKeyPrefix namespaces token records in the store.
	DefaultKeyPrefix = "demo_token:"

	groupLen = 4
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	wellFormed    = regexp.MustCompile(`^DEMO-[` + Alphabet + `]{4}-[` + Alphabet + `]{4}$`)
)

// Generate returns a fresh DEMO-XXXX-XXXX id drawn from a cryptographic source.
func Generate() (string, error) {
	code := make([]byte, 2*groupLen)
	limit := big.NewInt(int64(len(Alphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
		}
		code[i] = Alphabet[n.Int64()]
	}

	return Prefix + "-" + string(code[:groupLen]) + "-" + string(code[groupLen:]), nil
}

// Normalize uppercases and trims raw input and turns whitespace runs into
// single hyphens, so "demo abcd efgh" and "DEMO-ABCD-EFGH" match.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return whitespaceRun.ReplaceAllString(s, "-")
}

// IsWellFormed reports whether id already matches the external format.
func IsWellFormed(id string) bool {
	return wellFormed.MatchString(id)
}

// Key returns the store key for id.
func Key(prefix, id string) string {
	return prefix + id
}

// IDFromKey strips the namespace from a store key.
func IDFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, prefix)
}

// Record is the persisted JSON shape. Timestamps are milliseconds since epoch.
type Record struct {
	Used      bool   `json:"used"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	UsedAt    *int64 `json:"usedAt,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Encode serializes t into the store value.
func Encode(t *models.DemoToken) ([]byte, error) {
	rec := Record{
		Used:      t.Used,
		CreatedAt: t.CreatedAt.UnixMilli(),
		ExpiresAt: t.ExpiresAt.UnixMilli(),
		Note:      t.Note,
	}
	if t.Used && t.UsedAt != nil {
		ms := t.UsedAt.UnixMilli()
		rec.UsedAt = &ms
	}
	return json.Marshal(rec)
}

// Decode parses a store value into a DemoToken with the given id. Values that
// were written as a JSON string holding the object are unwrapped once.
func Decode(id string, raw []byte) (*models.DemoToken, error) {
	data := raw
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		data = []byte(inner)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.ExpiresAt == 0 {
		return nil, fmt.Errorf("%w: missing expiresAt", ErrMalformedRecord)
	}

	t := &models.DemoToken{
		ID:        id,
		Used:      rec.Used,
		CreatedAt: time.UnixMilli(rec.CreatedAt),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt),
		Note:      rec.Note,
	}
	if rec.Used && rec.UsedAt != nil {
		usedAt := time.UnixMilli(*rec.UsedAt)
		t.UsedAt = &usedAt
	}
	return t, nil
}
