package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// LinkCodeBytes is the entropy of a linking code: 128 bits, 32 hex chars.
const LinkCodeBytes = 16

func NewToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 бит по умолчанию
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func NewLinkCode() (string, error) {
	return NewToken(LinkCodeBytes)
}

// NormalizeLinkCode cleans up a code pasted into chat: quotes, punctuation and
// case are dropped. Returns false unless exactly 32 hex digits remain.
func NormalizeLinkCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”«»<>.,;:()[]{}\\")
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != LinkCodeBytes*2 {
		return "", false
	}
	return code, true
}

// DeepLink builds the t.me link that opens the bot with /start <code>.
func DeepLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", strings.TrimPrefix(botUsername, "@"), code)
}
