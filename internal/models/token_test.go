package models

import (
	"testing"
	"time"
)

func TestDemoToken_IsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired",
			expiresAt: now.Add(time.Hour),
			want:      false,
		},
		{
			name:      "expiry instant is still valid",
			expiresAt: now,
			want:      false,
		},
		{
			name:      "already expired",
			expiresAt: now.Add(-time.Millisecond),
			want:      true,
		},
		{
			name:      "zero time is expired",
			expiresAt: time.Time{},
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &DemoToken{ExpiresAt: tt.expiresAt}
			if got := tok.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDemoToken_Status(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token DemoToken
		want  TokenStatus
	}{
		{
			name:  "active",
			token: DemoToken{ExpiresAt: now.Add(time.Hour)},
			want:  TokenStatusActive,
		},
		{
			name:  "expired",
			token: DemoToken{ExpiresAt: now.Add(-time.Hour)},
			want:  TokenStatusExpired,
		},
		{
			name:  "used wins over expired",
			token: DemoToken{Used: true, ExpiresAt: now.Add(-time.Hour)},
			want:  TokenStatusUsed,
		},
		{
			name:  "used and still within window",
			token: DemoToken{Used: true, ExpiresAt: now.Add(time.Hour)},
			want:  TokenStatusUsed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Status(now); got != tt.want {
				t.Errorf("Status() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDemoToken_MarkUsed(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := &DemoToken{}

	tok.MarkUsed(at)

	if !tok.Used {
		t.Fatal("expected token to be used")
	}
	if tok.UsedAt == nil || !tok.UsedAt.Equal(at) {
		t.Errorf("UsedAt = %v, want %v", tok.UsedAt, at)
	}
}

func TestDemoToken_TTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tok := &DemoToken{ExpiresAt: now.Add(90 * time.Minute)}
	if got := tok.TTL(now); got != 90*time.Minute {
		t.Errorf("TTL() = %v, want 90m", got)
	}

	tok.ExpiresAt = now.Add(-time.Minute)
	if got := tok.TTL(now); got != 0 {
		t.Errorf("TTL() = %v, want 0", got)
	}
}
