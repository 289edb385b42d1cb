package model

import "time"

// Session is a server-side authenticated session. Anonymous visitors hold a
// session token cookie too, but no row exists for them.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has passed its idle deadline.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// FlashLevel is the severity of a flash message.
type FlashLevel string

// Flash levels.
const (
	FlashInfo  FlashLevel = "info"
	FlashError FlashLevel = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level FlashLevel `json:"level"`
	Text  string     `json:"text"`
}

// Info builds an info flash.
func Info(text string) Flash {
	return Flash{Level: FlashInfo, Text: text}
}

// Error builds an error flash.
func Error(text string) Flash {
	return Flash{Level: FlashError, Text: text}
}
