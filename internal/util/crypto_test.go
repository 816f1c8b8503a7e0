package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hex(t *testing.T) {
	h := SHA256Hex("a@b.com|5550001111")
	assert.Len(t, h, 64)
	assert.Equal(t, h, SHA256Hex("a@b.com|5550001111"))
	assert.NotEqual(t, h, SHA256Hex("a@b.com|5550001112"))
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("secret", "secret"))
	assert.False(t, ConstantTimeEqual("secret", "Secret"))
	assert.False(t, ConstantTimeEqual("secret", ""))
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DEMO-AB12-CD34", "DEMO-AB**-****"},
		{"DEMO-AB", "*******"},
		{"abc", "***"},
		{"", ""},
		{"PRIVATEPASS", "PRIVATE****"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskToken(tt.in))
		})
	}
}
