package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/orfobot/pkg/models"
)

const userColumns = `id, username, first_name, last_name, is_active, notifications_enabled,
	experience, level, current_streak, best_streak, last_practice_date, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db sqlx.ExtContext
}

// GetByID returns a user by Telegram ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		return nil, notFound(err, "get user by ID")
	}
	return &user, nil
}

// Upsert registers a user or refreshes the Telegram profile fields of an existing one.
// Learning state is never touched.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Level == 0 {
		user.Level = 1
	}
	query := r.db.Rebind(`
		INSERT INTO users (id, username, first_name, last_name, is_active, notifications_enabled, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			is_active = excluded.is_active
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		true,
		true,
		user.Level,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UpdateStats persists experience, level and streak fields
func (r *UserRepository) UpdateStats(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		UPDATE users
		SET experience = ?, level = ?, current_streak = ?, best_streak = ?, last_practice_date = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		user.Experience,
		user.Level,
		user.CurrentStreak,
		user.BestStreak,
		user.LastPracticeDate,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	return requireAffected(res, "update user stats")
}

// SetNotifications turns reminders on or off for a user
func (r *UserRepository) SetNotifications(ctx context.Context, userID int64, enabled bool) error {
	query := r.db.Rebind("UPDATE users SET notifications_enabled = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification setting: %w", err)
	}
	return requireAffected(res, "update notification setting")
}

// SetActive marks a user as reachable or not, e.g. after they blocked the bot
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	query := r.db.Rebind("UPDATE users SET is_active = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, active, userID); err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}
	return nil
}

// Leaderboard returns the top users by level, then experience
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM users ORDER BY level DESC, experience DESC, id ASC LIMIT ?")
	var users []models.User
	if err := sqlx.SelectContext(ctx, r.db, &users, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
