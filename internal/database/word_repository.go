package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/orfobot/pkg/models"
)

const wordColumns = `w.id, w.form, w.definition, w.explanation, w.category, w.difficulty,
	w.pattern, w.hidden_letters, w.created_at`

// WordRepository handles database operations for words
type WordRepository struct {
	db sqlx.ExtContext
}

// categoryFilter returns an SQL fragment restricting words to category.
// An empty category or CategoryMixed matches every word.
func categoryFilter(category models.Category) (string, []interface{}) {
	if category == "" || category == models.CategoryMixed {
		return "", nil
	}
	return " AND w.category = ?", []interface{}{string(category)}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT " + wordColumns + " FROM words w WHERE w.id = ?")
	if err := sqlx.GetContext(ctx, r.db, &word, query, id); err != nil {
		return nil, notFound(err, "get word by ID")
	}
	return &word, nil
}

// formKey is the case-folded spelling words are unique by
func formKey(form string) string {
	return strings.ToLower(strings.TrimSpace(form))
}

// GetByForm returns a word by its spelling, ignoring case
func (r *WordRepository) GetByForm(ctx context.Context, form string) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT " + wordColumns + " FROM words w WHERE w.form_key = ?")
	if err := sqlx.GetContext(ctx, r.db, &word, query, formKey(form)); err != nil {
		return nil, notFound(err, "get word by form")
	}
	return &word, nil
}

// GetAll returns words of a category ordered by spelling
func (r *WordRepository) GetAll(ctx context.Context, category models.Category) ([]models.Word, error) {
	filter, args := categoryFilter(category)
	query := r.db.Rebind("SELECT " + wordColumns + " FROM words w WHERE 1=1" + filter + " ORDER BY w.form")

	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return words, nil
}

// Create inserts a new word and fills its ID
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.CreatedAt.IsZero() {
		word.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO words (form, form_key, definition, explanation, category, difficulty, pattern, hidden_letters, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		word.Form,
		formKey(word.Form),
		word.Definition,
		word.Explanation,
		string(word.Category),
		word.Difficulty,
		word.Pattern,
		word.HiddenLetters,
		word.CreatedAt,
	).Scan(&word.ID)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// Delete removes a word together with its answers and progress records.
// Run it inside Store.WithTx so the cascade is atomic.
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	// Сначала зависимые таблицы
	for _, table := range []string{"training_answers", "user_progress"} {
		query := r.db.Rebind("DELETE FROM " + table + " WHERE word_id = ?")
		if _, err := r.db.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete %s of word: %w", table, err)
		}
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM words WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return requireAffected(res, "delete word")
}

// CountByCategory returns the number of words per category
func (r *WordRepository) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT category, COUNT(*) FROM words GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count words by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan word count: %w", err)
		}
		counts[models.Category(category)] = n
	}
	return counts, rows.Err()
}

// NewForUser returns random words the user has never attempted
func (r *WordRepository) NewForUser(ctx context.Context, userID int64, category models.Category, limit int) ([]models.Word, error) {
	filter, args := categoryFilter(category)
	query := r.db.Rebind(`
		SELECT ` + wordColumns + `
		FROM words w
		WHERE NOT EXISTS (
			SELECT 1 FROM user_progress p WHERE p.word_id = w.id AND p.user_id = ?
		)` + filter + `
		ORDER BY RANDOM()
		LIMIT ?`)

	params := append([]interface{}{userID}, args...)
	params = append(params, limit)

	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, query, params...); err != nil {
		return nil, fmt.Errorf("failed to get new words: %w", err)
	}
	return words, nil
}

// MasteredForUser returns random words the user has mastered
func (r *WordRepository) MasteredForUser(ctx context.Context, userID int64, category models.Category, limit int) ([]models.Word, error) {
	filter, args := categoryFilter(category)
	query := r.db.Rebind(`
		SELECT ` + wordColumns + `
		FROM words w
		JOIN user_progress p ON p.word_id = w.id
		WHERE p.user_id = ? AND p.mastered = ?` + filter + `
		ORDER BY RANDOM()
		LIMIT ?`)

	params := append([]interface{}{userID, true}, args...)
	params = append(params, limit)

	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, query, params...); err != nil {
		return nil, fmt.Errorf("failed to get mastered words: %w", err)
	}
	return words, nil
}
