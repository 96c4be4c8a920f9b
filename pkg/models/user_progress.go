package models

import (
	"database/sql"
	"time"
)

// UserProgress tracks a user's spaced repetition schedule for a single word
type UserProgress struct {
	ID               int64        `json:"id" db:"id"`
	UserID           int64        `json:"user_id" db:"user_id"`
	WordID           int64        `json:"word_id" db:"word_id"`
	MistakeCount     int          `json:"mistake_count" db:"mistake_count"`
	CorrectCount     int          `json:"correct_count" db:"correct_count"`
	IntervalPosition int          `json:"interval_position" db:"interval_position"` // Index into the review delay table
	NextDue          time.Time    `json:"next_due" db:"next_due"`
	Mastered         bool         `json:"mastered" db:"mastered"` // Never reverts once set
	LastReviewed     sql.NullTime `json:"last_reviewed" db:"last_reviewed"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}
