package models

import (
	"database/sql"
	"time"
)

// User represents a Telegram user learning with the bot
type User struct {
	ID                   int64        `json:"id" db:"id"` // Telegram User ID
	Username             string       `json:"username" db:"username"`
	FirstName            string       `json:"first_name" db:"first_name"`
	LastName             string       `json:"last_name" db:"last_name"`
	IsActive             bool         `json:"is_active" db:"is_active"`
	NotificationsEnabled bool         `json:"notifications_enabled" db:"notifications_enabled"`
	Experience           int          `json:"experience" db:"experience"`
	Level                int          `json:"level" db:"level"` // 1-25, derived from Experience
	CurrentStreak        int          `json:"current_streak" db:"current_streak"`
	BestStreak           int          `json:"best_streak" db:"best_streak"`
	LastPracticeDate     sql.NullTime `json:"last_practice_date" db:"last_practice_date"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
}

// DisplayName returns the name shown on the leaderboard.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return "Пользователь"
}
