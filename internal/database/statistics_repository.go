package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/orfobot/pkg/models"
)

// StatisticsRepository computes per-user statistics
type StatisticsRepository struct {
	db sqlx.ExtContext
}

// ForUser returns dictionary counters as of now and session counters since the given time.
// A zero since covers all time.
func (r *StatisticsRepository) ForUser(ctx context.Context, userID int64, now, since time.Time) (*models.Statistics, error) {
	var stats models.Statistics

	progressQuery := r.db.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN mastered = ? THEN 1 ELSE 0 END), 0) AS in_learning,
			COALESCE(SUM(CASE WHEN mastered = ? THEN 1 ELSE 0 END), 0) AS mastered,
			COALESCE(SUM(CASE WHEN mastered = ? AND next_due <= ? THEN 1 ELSE 0 END), 0) AS due_now
		FROM user_progress
		WHERE user_id = ?
	`)
	row := r.db.QueryRowxContext(ctx, progressQuery, false, true, false, now.UTC(), userID)
	if err := row.Scan(&stats.InLearning, &stats.Mastered, &stats.DueNow); err != nil {
		return nil, fmt.Errorf("failed to get progress statistics: %w", err)
	}

	sessionQuery := r.db.Rebind(`
		SELECT COUNT(*) FROM training_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND started_at >= ?
	`)
	if err := sqlx.GetContext(ctx, r.db, &stats.CompletedSessions, sessionQuery, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	answerQuery := r.db.Rebind(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN a.correct = ? THEN 1 ELSE 0 END), 0)
		FROM training_answers a
		JOIN training_sessions s ON s.id = a.session_id
		WHERE s.user_id = ? AND a.answered_at >= ?
	`)
	row = r.db.QueryRowxContext(ctx, answerQuery, true, userID, since.UTC())
	if err := row.Scan(&stats.WordsAnswered, &stats.CorrectAnswers); err != nil {
		return nil, fmt.Errorf("failed to get answer statistics: %w", err)
	}

	return &stats, nil
}

// Totals returns global counters for the admin panel
func (r *StatisticsRepository) Totals(ctx context.Context) (users, words, sessions int, err error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM words),
		(SELECT COUNT(*) FROM training_sessions WHERE completed_at IS NOT NULL)`
	if err = r.db.QueryRowxContext(ctx, query).Scan(&users, &words, &sessions); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get totals: %w", err)
	}
	return users, words, sessions, nil
}
