// Package leveling computes experience rewards, levels and daily streaks.
package leveling

import (
	"database/sql"
	"math"
	"time"

	"github.com/example/orfobot/pkg/models"
)

// MaxLevel is the terminal level
const MaxLevel = 25

const (
	baseReward          = 10
	difficultyBonus     = 2
	streakBonus         = 1
	streakBonusCap      = 10
	baseLevelExperience = 100
)

// Engine holds the experience thresholds of every level
type Engine struct {
	thresholds []int // thresholds[i] is the experience needed for level i+1
	location   *time.Location
}

// NewEngine computes the level table. Streak days are counted in loc.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{thresholds: computeThresholds(), location: loc}
}

func computeThresholds() []int {
	thresholds := make([]int, 1, MaxLevel)
	for level := 2; level <= MaxLevel; level++ {
		l := float64(level)
		var need int
		switch {
		case level <= 10:
			need = int(baseLevelExperience*math.Pow(l, 1.5) + (l-1)*50)
		case level <= 15:
			need = int(baseLevelExperience*math.Pow(l, 1.8) + (l-1)*100)
		default:
			need = int(baseLevelExperience*math.Pow(l, 1.9) + (l-1)*150)
		}
		thresholds = append(thresholds, thresholds[len(thresholds)-1]+need)
	}
	return thresholds
}

// Threshold returns the experience at which a level starts
func (e *Engine) Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return e.thresholds[level-1]
}

// Reward returns the experience for a correct answer.
// streak is the number of consecutive correct answers before this one.
func (e *Engine) Reward(difficulty, streak int) int {
	if streak > streakBonusCap {
		streak = streakBonusCap
	}
	if streak < 0 {
		streak = 0
	}
	return baseReward + difficulty*difficultyBonus + streak*streakBonus
}

// LevelFor returns the highest level whose threshold does not exceed experience
func (e *Engine) LevelFor(experience int) int {
	level := 1
	for i, threshold := range e.thresholds {
		if experience < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// Progress returns the experience earned inside the current level and the level's span.
// At the terminal level the span is 0.
func (e *Engine) Progress(experience, level int) (current, span int) {
	if level >= MaxLevel {
		return experience - e.Threshold(MaxLevel), 0
	}
	start := e.Threshold(level)
	return experience - start, e.Threshold(level+1) - start
}

// AddExperience credits experience to a user and recomputes the level
func (e *Engine) AddExperience(user *models.User, amount int) (levelUp bool) {
	old := user.Level
	user.Experience += amount
	user.Level = e.LevelFor(user.Experience)
	return user.Level > old
}

// UpdateStreak records a completed session at now. The streak grows once per calendar day.
func (e *Engine) UpdateStreak(user *models.User, now time.Time) (streak int, record bool) {
	today := e.day(now)

	if user.LastPracticeDate.Valid {
		last := e.day(user.LastPracticeDate.Time)
		switch {
		case !last.Before(today):
			// Уже занимался сегодня
			return user.CurrentStreak, false
		case last.Equal(today.AddDate(0, 0, -1)):
			user.CurrentStreak++
		default:
			user.CurrentStreak = 1
		}
	} else {
		user.CurrentStreak = 1
	}

	user.LastPracticeDate = sql.NullTime{Time: now.UTC(), Valid: true}
	if user.CurrentStreak > user.BestStreak {
		user.BestStreak = user.CurrentStreak
		record = true
	}
	return user.CurrentStreak, record
}

// day truncates t to midnight of its calendar day in the engine's location
func (e *Engine) day(t time.Time) time.Time {
	y, m, d := t.In(e.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.location)
}
