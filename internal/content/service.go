package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/pkg/models"
)

// ErrDuplicateWord is returned when a word with the same spelling already exists
var ErrDuplicateWord = errors.New("word already exists")

// Service validates and stores words
type Service struct {
	store *database.Store
}

// NewService creates a content service
func NewService(store *database.Store) *Service {
	return &Service{store: store}
}

// Overview holds the counters of the admin panel
type Overview struct {
	Users      int
	Words      int
	Sessions   int
	ByCategory map[models.Category]int
}

// Exists reports whether a word with this spelling is stored, ignoring case
func (s *Service) Exists(ctx context.Context, form string) (bool, error) {
	_, err := s.store.Words.GetByForm(ctx, form)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create validates a word and stores it
func (s *Service) Create(ctx context.Context, w *models.Word) error {
	w.Form = strings.TrimSpace(w.Form)
	w.Pattern = strings.TrimSpace(w.Pattern)
	if err := puzzle.Validate(*w); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(r database.Repositories) error {
		_, err := r.Words.GetByForm(ctx, w.Form)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrDuplicateWord, w.Form)
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		return r.Words.Create(ctx, w)
	})
}

// Delete removes a word by spelling with its progress records and answers
func (s *Service) Delete(ctx context.Context, form string) (*models.Word, error) {
	var deleted *models.Word
	err := s.store.WithTx(ctx, func(r database.Repositories) error {
		w, err := r.Words.GetByForm(ctx, form)
		if err != nil {
			return err
		}
		deleted = w
		return r.Words.Delete(ctx, w.ID)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// List returns the words of a category, every word for CategoryMixed
func (s *Service) List(ctx context.Context, category models.Category) ([]models.Word, error) {
	return s.store.Words.GetAll(ctx, category)
}

// Overview returns the admin panel counters
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	users, words, sessions, err := s.store.Statistics.Totals(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.store.Words.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{Users: users, Words: words, Sessions: sessions, ByCategory: byCategory}, nil
}
