package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := NewLinkCode()
		require.NoError(t, err)
		require.Len(t, code, 32)
		_, ok := NormalizeLinkCode(code)
		require.True(t, ok)
		_, dup := seen[code]
		require.False(t, dup)
		seen[code] = struct{}{}
	}
}

func TestNewToken_DefaultSize(t *testing.T) {
	tok, err := NewToken(0)
	require.NoError(t, err)
	assert.Len(t, tok, 64)
}

func TestNormalizeLinkCode(t *testing.T) {
	const code = "0123456789abcdef0123456789abcdef"
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{code, code, true},
		{"  «0123456789ABCDEF0123456789ABCDEF».", code, true},
		{"`" + code + "`", code, true},
		{"0123-4567-89ab-cdef-0123-4567-89ab-cdef", code, true},
		{"abc123", "", false},
		{"", "", false},
		{code + "00", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeLinkCode(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "https://t.me/MyAuthBot?start=abc", DeepLink("@MyAuthBot", "abc"))
	assert.Equal(t, "https://t.me/MyAuthBot?start=abc", DeepLink("MyAuthBot", "abc"))
}
