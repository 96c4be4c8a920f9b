// Package training runs practice sessions: it selects words, asks them one by one
// and folds every answer into progress, experience and streaks.
package training

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/leveling"
	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/internal/spaced_repetition"
	"github.com/example/orfobot/pkg/models"
)

var (
	// ErrUserNotFound is returned for learners that never registered
	ErrUserNotFound = errors.New("user not found")
	// ErrStaleSession is returned for answers to a session that is no longer active
	ErrStaleSession = errors.New("training session is not active")
)

// DefaultWordsPerTraining is the session size used when none is requested
const DefaultWordsPerTraining = 25

// Config holds the tunables of the Service
type Config struct {
	WordsPerTraining int
	Location         *time.Location   // Calendar used for streak days
	Now              func() time.Time // Clock, time.Now when nil
}

// Service is the session orchestrator
type Service struct {
	store    *database.Store
	sessions SessionStore
	tracker  *spaced_repetition.Tracker
	engine   *leveling.Engine
	cfg      Config
}

// NewService wires the orchestrator
func NewService(store *database.Store, sessions SessionStore, tracker *spaced_repetition.Tracker, engine *leveling.Engine, cfg Config) *Service {
	if cfg.WordsPerTraining <= 0 {
		cfg.WordsPerTraining = DefaultWordsPerTraining
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    store,
		sessions: sessions,
		tracker:  tracker,
		engine:   engine,
		cfg:      cfg,
	}
}

// Question is one word presented to the learner
type Question struct {
	SessionID string
	Mode      models.SessionMode
	Category  models.Category // Category of the session, may be CategoryMixed
	Number    int             // 1-based
	Total     int
	Word      models.Word
	Puzzle    puzzle.Puzzle
}

// Outcome is the verdict on one answer
type Outcome struct {
	Word     models.Word
	Correct  bool
	Expected string
	Answer   string
	Reward   int
	LevelUp  bool
	Level    int
	Answered int // Answers given in the session so far

	Next    *Question // Nil when the session is over
	Summary *Summary  // Set when the session is over
}

// Summary describes a finished session
type Summary struct {
	SessionID string
	Mode      models.SessionMode
	Category  models.Category
	Total     int
	Answered  int
	Correct   int
	Incorrect int
	Mistakes  []models.Word

	Streak                 int
	NewRecord              bool
	ErrorPracticeAvailable bool
}

// Accuracy returns the share of correct answers in percent
func (s *Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered) * 100
}

// Register creates the learner or refreshes their Telegram profile
func (s *Service) Register(ctx context.Context, user *models.User) error {
	return s.store.Users.Upsert(ctx, user)
}

// SelectWords fills up to half of count with due reviews, most overdue first,
// and the rest with random words the learner has never attempted.
func (s *Service) SelectWords(ctx context.Context, userID int64, category models.Category, count int) ([]models.Word, error) {
	if count <= 0 {
		return nil, nil
	}

	var due []models.Word
	if half := count / 2; half > 0 {
		var err error
		due, err = s.store.Progress.DueWords(ctx, userID, category, s.cfg.Now(), half)
		if err != nil {
			return nil, err
		}
	}

	fresh, err := s.store.Words.NewForUser(ctx, userID, category, count-len(due))
	if err != nil {
		return nil, err
	}

	words := make([]models.Word, 0, len(due)+len(fresh))
	seen := make(map[int64]bool, cap(words))
	for _, w := range append(due, fresh...) {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		words = append(words, w)
	}
	return words, nil
}

// Start opens a regular session, replacing any session the learner had open.
// A nil question means there are no words to practice.
func (s *Service) Start(ctx context.Context, userID int64, category models.Category, count int) (*Question, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.cfg.WordsPerTraining
	}

	words, err := s.SelectWords(ctx, userID, category, count)
	if err != nil {
		return nil, fmt.Errorf("failed to select words: %w", err)
	}
	return s.begin(ctx, userID, category, models.ModeRegular, words)
}

// StartErrorPractice replays the mistakes of the learner's last completed session.
// It returns nil when there is nothing to replay or the last session was itself error practice.
func (s *Service) StartErrorPractice(ctx context.Context, userID int64) (*Question, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	last, err := s.store.Sessions.LastCompleted(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if last.Mode == models.ModeErrors {
		return nil, nil
	}

	words, err := s.store.Sessions.MistakenWords(ctx, last.ID)
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, userID, last.Category, models.ModeErrors, words)
}

// StartMasteredReview practices mastered words without touching their schedule
func (s *Service) StartMasteredReview(ctx context.Context, userID int64, category models.Category, count int) (*Question, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.cfg.WordsPerTraining
	}

	words, err := s.store.Words.MasteredForUser(ctx, userID, category, count)
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, userID, category, models.ModeMastered, words)
}

func (s *Service) begin(ctx context.Context, userID int64, category models.Category, mode models.SessionMode, candidates []models.Word) (*Question, error) {
	// Все задания строятся до записи сессии: слово с битым шаблоном пропускается
	words := make([]models.Word, 0, len(candidates))
	puzzles := make([]puzzle.Puzzle, 0, len(candidates))
	for _, w := range candidates {
		p, err := puzzle.Generate(w)
		if err != nil {
			log.Printf("Skipping word %d in training: %v", w.ID, err)
			continue
		}
		words = append(words, w)
		puzzles = append(puzzles, p)
	}
	if len(words) == 0 {
		return nil, nil
	}
	if category == "" {
		category = models.CategoryMixed
	}

	record := models.TrainingSession{
		UserID:    userID,
		Category:  category,
		Mode:      mode,
		Total:     len(words),
		StartedAt: s.cfg.Now(),
	}
	if err := s.store.Sessions.Create(ctx, &record); err != nil {
		return nil, err
	}

	sess := &Session{
		Handle:  uuid.NewString(),
		Record:  record,
		Words:   words,
		Puzzles: puzzles,
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if prev, ok := s.sessions.Put(userID, sess); ok {
		prev.mu.Lock()
		prev.closed = true
		prev.mu.Unlock()
		log.Printf("Training session %d of user %d superseded by %d", prev.Record.ID, userID, record.ID)
	}

	return question(sess), nil
}

// question describes the word being asked. Caller holds sess.mu.
func question(sess *Session) *Question {
	return &Question{
		SessionID: sess.Handle,
		Mode:      sess.Record.Mode,
		Category:  sess.Record.Category,
		Number:    sess.Index + 1,
		Total:     len(sess.Words),
		Word:      sess.Words[sess.Index],
		Puzzle:    sess.Puzzles[sess.Index],
	}
}

// Current returns the question the learner is expected to answer, or nil
func (s *Service) Current(userID int64) (*Question, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.Index >= len(sess.Words) {
		return nil, nil
	}
	return question(sess), nil
}

// SubmitChoice answers question number (1-based) of a choice puzzle with the option at index.
// A press for any question other than the one being asked is stale.
func (s *Service) SubmitChoice(ctx context.Context, userID int64, handle string, number, index int) (*Outcome, error) {
	return s.submit(ctx, userID, handle, number, func(p *puzzle.Puzzle) (string, error) {
		if index < 0 || index >= len(p.Options) {
			return "", fmt.Errorf("%w: option %d out of range", ErrStaleSession, index)
		}
		return p.Options[index], nil
	})
}

// Submit answers the current puzzle with raw text
func (s *Service) Submit(ctx context.Context, userID int64, handle, answer string) (*Outcome, error) {
	return s.submit(ctx, userID, handle, 0, func(*puzzle.Puzzle) (string, error) {
		return answer, nil
	})
}

// submit records an answer to the current question. A non-zero number must match it.
func (s *Service) submit(ctx context.Context, userID int64, handle string, number int, answerOf func(*puzzle.Puzzle) (string, error)) (*Outcome, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok || sess.Handle != handle {
		return nil, ErrStaleSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed || sess.Index >= len(sess.Words) {
		return nil, ErrStaleSession
	}
	if number != 0 && number != sess.Index+1 {
		return nil, fmt.Errorf("%w: question %d already answered", ErrStaleSession, number)
	}

	current := &sess.Puzzles[sess.Index]
	answer, err := answerOf(current)
	if err != nil {
		return nil, err
	}

	word := sess.Words[sess.Index]
	now := s.cfg.Now()
	outcome := &Outcome{
		Word:     word,
		Expected: current.Expected,
		Answer:   answer,
		Correct:  puzzle.Check(word.Category, current.Expected, answer),
	}

	record := sess.Record
	if outcome.Correct {
		record.Correct++
	} else {
		record.Incorrect++
	}

	err = s.store.WithTx(ctx, func(r database.Repositories) error {
		err := r.Sessions.AddAnswer(ctx, &models.TrainingAnswer{
			SessionID:  record.ID,
			WordID:     word.ID,
			RawAnswer:  answer,
			Correct:    outcome.Correct,
			AnsweredAt: now,
		})
		if err != nil {
			return err
		}
		if err := r.Sessions.UpdateCounts(ctx, &record); err != nil {
			return err
		}

		if record.Mode != models.ModeMastered {
			progress, err := r.Progress.Get(ctx, userID, word.ID)
			if err != nil {
				return err
			}
			next := s.tracker.Review(progress, userID, word.ID, outcome.Correct, now)
			if err := r.Progress.Save(ctx, next); err != nil {
				return err
			}
		}

		if !outcome.Correct {
			return nil
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return userErr(err)
		}
		outcome.Reward = s.engine.Reward(word.Difficulty, sess.Streak)
		outcome.LevelUp = s.engine.AddExperience(user, outcome.Reward)
		outcome.Level = user.Level
		return r.Users.UpdateStats(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	// Committed; now the in-memory tally may move
	sess.Record = record
	sess.Index++
	if outcome.Correct {
		sess.Streak++
	} else {
		sess.Streak = 0
		sess.Mistakes = append(sess.Mistakes, word)
	}
	outcome.Answered = sess.Answered()

	if sess.Index < len(sess.Words) {
		outcome.Next = question(sess)
		return outcome, nil
	}

	summary, err := s.finalize(ctx, userID, sess)
	if err != nil {
		return nil, err
	}
	outcome.Summary = summary
	return outcome, nil
}

// Finish ends the learner's session early. Answers already given are kept.
func (s *Service) Finish(ctx context.Context, userID int64) (*Summary, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, ErrStaleSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, ErrStaleSession
	}
	return s.finalize(ctx, userID, sess)
}

// finalize completes the session and, if anything was answered, the day's streak.
// Caller holds sess.mu.
func (s *Service) finalize(ctx context.Context, userID int64, sess *Session) (*Summary, error) {
	now := s.cfg.Now()
	summary := &Summary{
		SessionID: sess.Handle,
		Mode:      sess.Record.Mode,
		Category:  sess.Record.Category,
		Total:     len(sess.Words),
		Answered:  sess.Answered(),
		Correct:   sess.Record.Correct,
		Incorrect: sess.Record.Incorrect,
		Mistakes:  sess.Mistakes,
	}

	err := s.store.WithTx(ctx, func(r database.Repositories) error {
		if err := r.Sessions.Complete(ctx, sess.Record.ID, now); err != nil {
			return err
		}
		if summary.Answered == 0 {
			return nil
		}

		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return userErr(err)
		}
		summary.Streak, summary.NewRecord = s.engine.UpdateStreak(user, now)
		return r.Users.UpdateStats(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete training session: %w", err)
	}

	sess.closed = true
	sess.Record.CompletedAt.Time, sess.Record.CompletedAt.Valid = now, true
	s.sessions.Remove(userID, sess.Handle)

	summary.ErrorPracticeAvailable = sess.Record.Mode != models.ModeErrors && len(sess.Mistakes) > 0
	return summary, nil
}

// DueWords returns the learner's words due for review now, most overdue first
func (s *Service) DueWords(ctx context.Context, userID int64, category models.Category) ([]models.Word, error) {
	return s.store.Progress.DueWords(ctx, userID, category, s.cfg.Now(), 0)
}

// Profile is a snapshot of a learner's level and experience
type Profile struct {
	User            models.User
	LevelName       string
	LevelExperience int // Experience earned inside the current level
	LevelSpan       int // Experience the current level spans, 0 at the top level
	DueNow          int
}

// Profile returns the level and experience snapshot of a learner
func (s *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, userErr(err)
	}
	due, err := s.store.Progress.DueCount(ctx, userID, s.cfg.Now())
	if err != nil {
		return nil, err
	}

	current, span := s.engine.Progress(user.Experience, user.Level)
	return &Profile{
		User:            *user,
		LevelName:       leveling.LevelName(user.Level),
		LevelExperience: current,
		LevelSpan:       span,
		DueNow:          due,
	}, nil
}

// Statistics returns the learner's statistics for the last days, or all time when days is 0
func (s *Service) Statistics(ctx context.Context, userID int64, days int) (*models.Statistics, error) {
	now := s.cfg.Now()
	var since time.Time
	if days > 0 {
		since = now.AddDate(0, 0, -days)
	}
	return s.store.Statistics.ForUser(ctx, userID, now, since)
}

// Dictionary returns every word the learner has attempted, due ones marked
func (s *Service) Dictionary(ctx context.Context, userID int64) ([]database.DictionaryEntry, error) {
	entries, err := s.store.Progress.Dictionary(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.cfg.Now()
	for i := range entries {
		e := &entries[i]
		e.Due = s.tracker.IsDue(&models.UserProgress{NextDue: e.NextDue, Mastered: e.Mastered}, now)
	}
	return entries, nil
}

// Leaderboard returns the top learners by level, then experience
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	return s.store.Users.Leaderboard(ctx, limit)
}

// SetNotifications turns the learner's reminders on or off
func (s *Service) SetNotifications(ctx context.Context, userID int64, enabled bool) error {
	return userErr(s.store.Users.SetNotifications(ctx, userID, enabled))
}

// Deactivate stops reminders to a learner who can no longer be reached
func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	return s.store.Users.SetActive(ctx, userID, false)
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return userErr(err)
	}
	return nil
}

func userErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
