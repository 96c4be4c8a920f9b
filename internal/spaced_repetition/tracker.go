package spaced_repetition

import (
	"database/sql"
	"time"

	"github.com/example/orfobot/pkg/models"
)

// DefaultIntervals is the forgetting-curve delay table
var DefaultIntervals = []time.Duration{
	20 * time.Minute,
	time.Hour,
	9 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
	6 * 24 * time.Hour,
	31 * 24 * time.Hour,
}

// DefaultMasteryThreshold is the number of correct answers that masters a word
const DefaultMasteryThreshold = 10

// Tracker moves per-word progress records along the delay table
type Tracker struct {
	// Задержки до следующего повторения, по позиции
	Intervals []time.Duration
	// Число верных ответов, после которого слово считается выученным
	MasteryThreshold int
}

// NewTracker создает трекер с настройками по умолчанию
func NewTracker() *Tracker {
	return &Tracker{
		Intervals:        DefaultIntervals,
		MasteryThreshold: DefaultMasteryThreshold,
	}
}

// LastIndex is the highest valid interval position
func (t *Tracker) LastIndex() int {
	return len(t.Intervals) - 1
}

// Delay returns the review delay for a position, clamped to the table
func (t *Tracker) Delay(position int) time.Duration {
	if position < 0 {
		position = 0
	}
	if position > t.LastIndex() {
		position = t.LastIndex()
	}
	return t.Intervals[position]
}

// Review applies one answer to a progress record and returns the updated record.
// A nil progress means the word was never attempted; a new record is created for it.
// The passed record is not modified.
func (t *Tracker) Review(progress *models.UserProgress, userID, wordID int64, correct bool, now time.Time) *models.UserProgress {
	var next models.UserProgress
	if progress != nil {
		next = *progress
	} else {
		next = models.UserProgress{UserID: userID, WordID: wordID, CreatedAt: now}
	}

	if correct {
		next.CorrectCount++
		if next.IntervalPosition < t.LastIndex() {
			next.IntervalPosition++
		}
		if next.IntervalPosition >= t.LastIndex() || next.CorrectCount >= t.MasteryThreshold {
			next.Mastered = true
		}
	} else {
		// Ошибка возвращает слово в начало таблицы, но не снимает статус "выучено"
		next.MistakeCount++
		next.IntervalPosition = 0
	}

	next.NextDue = now.Add(t.Delay(next.IntervalPosition))
	next.LastReviewed = sql.NullTime{Time: now, Valid: true}
	return &next
}

// IsDue reports whether a word should be reviewed at now
func (t *Tracker) IsDue(progress *models.UserProgress, now time.Time) bool {
	if progress == nil || progress.Mastered {
		return false
	}
	return !progress.NextDue.After(now)
}
