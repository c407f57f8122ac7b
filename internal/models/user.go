package models

import "time"

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // не отдаём наружу
	Name         string `json:"name"`

	// адрес привязанного канала (Telegram chat id); nil до первой успешной привязки
	ChannelAddress *string    `json:"channel_address,omitempty"`
	LinkedAt       *time.Time `json:"linked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Summary is what the linker hands back to the caller after a successful bind.
type Summary struct {
	ID             int     `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	ChannelAddress *string `json:"channel_address,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Name: u.Name, ChannelAddress: u.ChannelAddress}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
