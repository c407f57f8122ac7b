package models

import "time"

// LinkingCode is a single-use token that proves control of an account and is
// exchanged for a binding between that account and a Telegram chat.
type LinkingCode struct {
	Code      string    `json:"code"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now.
// A code expiring exactly at now is still valid.
func (c *LinkingCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

type VerifyCodeRequest struct {
	Code           string `json:"code" binding:"required"`
	ChannelAddress string `json:"channel_address" binding:"required,max=64"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4096"`
}
