package models

import "time"

// User is an application account. TelegramID, FullName and Email are
// optional; an empty string means the column is NULL. TelegramID, when
// present, is unique across all users.
type User struct {
	ID              int64
	FullName        string
	Email           string
	IsVerifiedEmail bool
	TelegramID      string
	CreatedAt       time.Time
}
