package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/pkg/models"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestReviewNewWordCorrect(t *testing.T) {
	tr := NewTracker()

	p := tr.Review(nil, 1, 2, true, t0)

	require.NotNil(t, p)
	assert.Equal(t, int64(1), p.UserID)
	assert.Equal(t, int64(2), p.WordID)
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, 0, p.MistakeCount)
	assert.Equal(t, 1, p.IntervalPosition)
	assert.Equal(t, t0.Add(time.Hour), p.NextDue)
	assert.False(t, p.Mastered)
	assert.True(t, p.LastReviewed.Valid)
}

func TestReviewNewWordIncorrect(t *testing.T) {
	tr := NewTracker()

	p := tr.Review(nil, 1, 2, false, t0)

	assert.Equal(t, 1, p.MistakeCount)
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 0, p.IntervalPosition)
	assert.Equal(t, t0.Add(20*time.Minute), p.NextDue)
}

func TestReviewIncorrectResetsPosition(t *testing.T) {
	tr := NewTracker()
	p := &models.UserProgress{UserID: 1, WordID: 2, IntervalPosition: 4, CorrectCount: 4, MistakeCount: 1}

	next := tr.Review(p, 1, 2, false, t0)

	assert.Equal(t, 0, next.IntervalPosition)
	assert.Equal(t, 2, next.MistakeCount)
	assert.Equal(t, 4, next.CorrectCount)
	assert.Equal(t, t0.Add(20*time.Minute), next.NextDue)
	assert.Equal(t, 4, p.IntervalPosition, "input record must not change")
}

func TestReviewReachesLastIntervalAndMasters(t *testing.T) {
	tr := NewTracker()

	var p *models.UserProgress
	now := t0
	for i := 0; i < tr.LastIndex(); i++ {
		p = tr.Review(p, 1, 2, true, now)
		now = p.NextDue
	}

	assert.Equal(t, tr.LastIndex(), p.IntervalPosition)
	assert.True(t, p.Mastered)

	p = tr.Review(p, 1, 2, true, now)
	assert.Equal(t, tr.LastIndex(), p.IntervalPosition, "position is clamped")
	assert.Equal(t, now.Add(31*24*time.Hour), p.NextDue)
}

func TestReviewMasteredByCorrectCount(t *testing.T) {
	tr := &Tracker{Intervals: DefaultIntervals, MasteryThreshold: 3}
	p := &models.UserProgress{IntervalPosition: 0, CorrectCount: 2}

	next := tr.Review(p, 1, 2, true, t0)

	assert.True(t, next.Mastered)
	assert.Equal(t, 1, next.IntervalPosition)
}

func TestMasteredIsMonotone(t *testing.T) {
	tr := NewTracker()
	p := &models.UserProgress{IntervalPosition: 6, CorrectCount: 12, Mastered: true}

	next := tr.Review(p, 1, 2, false, t0)

	assert.True(t, next.Mastered)
	assert.Equal(t, 0, next.IntervalPosition)
}

func TestIsDue(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.IsDue(nil, t0))
	assert.True(t, tr.IsDue(&models.UserProgress{NextDue: t0}, t0))
	assert.False(t, tr.IsDue(&models.UserProgress{NextDue: t0.Add(time.Second)}, t0))
	assert.False(t, tr.IsDue(&models.UserProgress{NextDue: t0.Add(-time.Hour), Mastered: true}, t0))
}

func TestPositionStaysInRange(t *testing.T) {
	tr := NewTracker()
	var p *models.UserProgress
	answers := []bool{true, true, false, true, true, true, true, true, true, true, false, true}
	for _, correct := range answers {
		p = tr.Review(p, 1, 2, correct, t0)
		assert.GreaterOrEqual(t, p.IntervalPosition, 0)
		assert.LessOrEqual(t, p.IntervalPosition, tr.LastIndex())
		assert.Equal(t, t0.Add(tr.Delay(p.IntervalPosition)), p.NextDue)
	}
}
