package models

import (
	"database/sql"
	"time"
)

// SessionMode distinguishes regular practice from the follow-up kinds
type SessionMode string

const (
	ModeRegular  SessionMode = "regular"
	ModeErrors   SessionMode = "errors"   // Replays the mistakes of the previous session
	ModeMastered SessionMode = "mastered" // Read-only review of mastered words
)

// TrainingSession is one practice run
type TrainingSession struct {
	ID          int64        `json:"id" db:"id"`
	UserID      int64        `json:"user_id" db:"user_id"`
	Category    Category     `json:"category" db:"category"` // A word category or CategoryMixed
	Mode        SessionMode  `json:"mode" db:"mode"`
	Total       int          `json:"total" db:"total"`
	Correct     int          `json:"correct" db:"correct"`
	Incorrect   int          `json:"incorrect" db:"incorrect"`
	StartedAt   time.Time    `json:"started_at" db:"started_at"`
	CompletedAt sql.NullTime `json:"completed_at" db:"completed_at"`
}

// TrainingAnswer is an append-only record of one answer within a session
type TrainingAnswer struct {
	ID         int64     `json:"id" db:"id"`
	SessionID  int64     `json:"session_id" db:"session_id"`
	WordID     int64     `json:"word_id" db:"word_id"`
	RawAnswer  string    `json:"raw_answer" db:"raw_answer"`
	Correct    bool      `json:"correct" db:"correct"`
	AnsweredAt time.Time `json:"answered_at" db:"answered_at"`
}
