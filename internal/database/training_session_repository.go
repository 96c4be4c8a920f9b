package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/orfobot/pkg/models"
)

// TrainingSessionRepository handles database operations for training sessions and their answers
type TrainingSessionRepository struct {
	db sqlx.ExtContext
}

// Create inserts a new session and fills its ID
func (r *TrainingSessionRepository) Create(ctx context.Context, s *models.TrainingSession) error {
	if s.Mode == "" {
		s.Mode = models.ModeRegular
	}
	query := r.db.Rebind(`
		INSERT INTO training_sessions (user_id, category, mode, total, correct, incorrect, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		s.UserID,
		string(s.Category),
		string(s.Mode),
		s.Total,
		s.Correct,
		s.Incorrect,
		s.StartedAt.UTC(),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create training session: %w", err)
	}
	return nil
}

// GetByID returns a session by ID
func (r *TrainingSessionRepository) GetByID(ctx context.Context, id int64) (*models.TrainingSession, error) {
	var s models.TrainingSession
	query := r.db.Rebind(`
		SELECT id, user_id, category, mode, total, correct, incorrect, started_at, completed_at
		FROM training_sessions WHERE id = ?
	`)
	if err := sqlx.GetContext(ctx, r.db, &s, query, id); err != nil {
		return nil, notFound(err, "get training session")
	}
	return &s, nil
}

// LastCompleted returns the most recently completed session of a user
func (r *TrainingSessionRepository) LastCompleted(ctx context.Context, userID int64) (*models.TrainingSession, error) {
	var s models.TrainingSession
	query := r.db.Rebind(`
		SELECT id, user_id, category, mode, total, correct, incorrect, started_at, completed_at
		FROM training_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`)
	if err := sqlx.GetContext(ctx, r.db, &s, query, userID); err != nil {
		return nil, notFound(err, "get last training session")
	}
	return &s, nil
}

// UpdateCounts stores the running tally of a session
func (r *TrainingSessionRepository) UpdateCounts(ctx context.Context, s *models.TrainingSession) error {
	query := r.db.Rebind("UPDATE training_sessions SET correct = ?, incorrect = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, s.Correct, s.Incorrect, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update training session: %w", err)
	}
	return requireAffected(res, "update training session")
}

// Complete marks a session finished
func (r *TrainingSessionRepository) Complete(ctx context.Context, id int64, at time.Time) error {
	query := r.db.Rebind("UPDATE training_sessions SET completed_at = ? WHERE id = ? AND completed_at IS NULL")
	res, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete training session: %w", err)
	}
	return requireAffected(res, "complete training session")
}

// AddAnswer appends an answer to a session
func (r *TrainingSessionRepository) AddAnswer(ctx context.Context, a *models.TrainingAnswer) error {
	query := r.db.Rebind(`
		INSERT INTO training_answers (session_id, word_id, raw_answer, correct, answered_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		a.SessionID,
		a.WordID,
		a.RawAnswer,
		a.Correct,
		a.AnsweredAt.UTC(),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to add answer: %w", err)
	}
	return nil
}

// Answers returns the answers of a session in order
func (r *TrainingSessionRepository) Answers(ctx context.Context, sessionID int64) ([]models.TrainingAnswer, error) {
	query := r.db.Rebind(`
		SELECT id, session_id, word_id, raw_answer, correct, answered_at
		FROM training_answers WHERE session_id = ? ORDER BY id
	`)
	var answers []models.TrainingAnswer
	if err := sqlx.SelectContext(ctx, r.db, &answers, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	return answers, nil
}

// MistakenWords returns the distinct words answered incorrectly in a session
func (r *TrainingSessionRepository) MistakenWords(ctx context.Context, sessionID int64) ([]models.Word, error) {
	query := r.db.Rebind(`
		SELECT ` + wordColumns + `
		FROM words w
		WHERE w.id IN (
			SELECT a.word_id FROM training_answers a WHERE a.session_id = ? AND a.correct = ?
		)
		ORDER BY w.id
	`)
	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, query, sessionID, false); err != nil {
		return nil, fmt.Errorf("failed to get mistaken words: %w", err)
	}
	return words, nil
}
