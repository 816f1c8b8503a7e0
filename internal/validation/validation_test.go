package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"valid", "jane.doe@clinic.com", ""},
		{"valid with plus", "jane+demo@clinic.io", ""},
		{"empty", "  ", MsgEmailRequired},
		{"no at", "jane.clinic.com", MsgEmailInvalid},
		{"short tld", "jane@clinic.c", MsgEmailInvalid},
		{"disposable", "jane@Mailinator.com", MsgEmailDisposable},
		{"fake exact", "test@clinic.com", MsgEmailFake},
		{"fake with 123", "asdf123@clinic.com", MsgEmailFake},
		{"fake prefix only is fine", "tester@clinic.com", ""},
		{"demo placeholder", "demo@clinic.com", MsgEmailFake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"us example number", "+12015550123", true},
		{"us national format", "(201) 555-0123", true},
		{"uk london", "+442071838750", true},
		{"empty", "", false},
		{"letters", "call me", false},
		{"too short", "+1555", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Phone(tt.phone)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLooksFake(t *testing.T) {
	tests := []struct {
		phone string
		fake  bool
	}{
		{"5555555555", true},
		{"+1 (212) 123-4567890", true},
		{"0987654321", true},
		{"12233332265", true},
		{"", true},
		{"+12015550123", false},
		{"+442071838750", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.fake, LooksFake(tt.phone))
		})
	}
}

func TestIsBot(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsBot(start, start.Add(1500*time.Millisecond)))
	assert.False(t, IsBot(start, start.Add(2*time.Second)))
	assert.False(t, IsBot(start, start.Add(time.Minute)))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, MsgPhoneInvalid, Message(&FieldError{Field: "phone", Message: MsgPhoneInvalid}))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
