package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/orfobot/pkg/models"
)

// ReminderPreviewSize is how many due words a reminder lists
const ReminderPreviewSize = 5

// DictionaryEntry is a word as seen in a user's personal dictionary
type DictionaryEntry struct {
	WordID           int64           `db:"word_id"`
	Form             string          `db:"form"`
	Category         models.Category `db:"category"`
	CorrectCount     int             `db:"correct_count"`
	MistakeCount     int             `db:"mistake_count"`
	IntervalPosition int             `db:"interval_position"`
	NextDue          time.Time       `db:"next_due"`
	Mastered         bool            `db:"mastered"`
	Due              bool            `db:"-"`
}

// DueReminder describes a user who has words waiting for review
type DueReminder struct {
	UserID    int64    `db:"user_id"`
	FirstName string   `db:"first_name"`
	DueCount  int      `db:"due_count"`
	Words     []string `db:"-"` // Up to ReminderPreviewSize forms, most overdue first
}

// UserProgressRepository handles database operations for user progress
type UserProgressRepository struct {
	db sqlx.ExtContext
}

// Get returns progress for a specific user and word, or nil when the word was never attempted
func (r *UserProgressRepository) Get(ctx context.Context, userID, wordID int64) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := r.db.Rebind(`
		SELECT id, user_id, word_id, mistake_count, correct_count, interval_position,
			next_due, mastered, last_reviewed, created_at
		FROM user_progress
		WHERE user_id = ? AND word_id = ?
	`)
	err := sqlx.GetContext(ctx, r.db, &progress, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return &progress, nil
}

// Save inserts or replaces the progress record of (user, word) and fills its ID
func (r *UserProgressRepository) Save(ctx context.Context, p *models.UserProgress) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO user_progress (
			user_id, word_id, mistake_count, correct_count, interval_position,
			next_due, mastered, last_reviewed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			mistake_count = excluded.mistake_count,
			correct_count = excluded.correct_count,
			interval_position = excluded.interval_position,
			next_due = excluded.next_due,
			mastered = excluded.mastered,
			last_reviewed = excluded.last_reviewed
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		p.UserID,
		p.WordID,
		p.MistakeCount,
		p.CorrectCount,
		p.IntervalPosition,
		p.NextDue.UTC(),
		p.Mastered,
		utcNullTime(p.LastReviewed),
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return nil
}

// DueWords returns words due for review, most overdue first. A limit of 0 means no limit.
func (r *UserProgressRepository) DueWords(ctx context.Context, userID int64, category models.Category, now time.Time, limit int) ([]models.Word, error) {
	filter, args := categoryFilter(category)
	query := `
		SELECT ` + wordColumns + `
		FROM user_progress p
		JOIN words w ON w.id = p.word_id
		WHERE p.user_id = ? AND p.mastered = ? AND p.next_due <= ?` + filter + `
		ORDER BY p.next_due ASC, w.id ASC`

	params := append([]interface{}{userID, false, now.UTC()}, args...)
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, r.db.Rebind(query), params...); err != nil {
		return nil, fmt.Errorf("failed to get due words: %w", err)
	}
	return words, nil
}

// DueCount returns how many words are due for a user
func (r *UserProgressRepository) DueCount(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM user_progress WHERE user_id = ? AND mastered = ? AND next_due <= ?")
	if err := sqlx.GetContext(ctx, r.db, &n, query, userID, false, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due words: %w", err)
	}
	return n, nil
}

// Dictionary returns every word the user has attempted
func (r *UserProgressRepository) Dictionary(ctx context.Context, userID int64) ([]DictionaryEntry, error) {
	query := r.db.Rebind(`
		SELECT w.id AS word_id, w.form, w.category, p.correct_count, p.mistake_count,
			p.interval_position, p.next_due, p.mastered
		FROM user_progress p
		JOIN words w ON w.id = p.word_id
		WHERE p.user_id = ?
		ORDER BY p.mastered ASC, p.next_due ASC
	`)
	var entries []DictionaryEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get dictionary: %w", err)
	}
	return entries, nil
}

// UsersWithDueWords returns reachable users who opted into reminders and have due words
func (r *UserProgressRepository) UsersWithDueWords(ctx context.Context, now time.Time) ([]DueReminder, error) {
	query := r.db.Rebind(`
		SELECT u.id AS user_id, u.first_name, COUNT(*) AS due_count
		FROM users u
		JOIN user_progress p ON p.user_id = u.id
		WHERE u.notifications_enabled = ? AND u.is_active = ? AND p.mastered = ? AND p.next_due <= ?
		GROUP BY u.id, u.first_name
		ORDER BY u.id
	`)
	var reminders []DueReminder
	if err := sqlx.SelectContext(ctx, r.db, &reminders, query, true, true, false, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get users with due words: %w", err)
	}

	for i := range reminders {
		words, err := r.DueWords(ctx, reminders[i].UserID, models.CategoryMixed, now, ReminderPreviewSize)
		if err != nil {
			return nil, err
		}
		for _, w := range words {
			reminders[i].Words = append(reminders[i].Words, w.Form)
		}
	}
	return reminders, nil
}

func utcNullTime(t sql.NullTime) sql.NullTime {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}
