package leveling

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/pkg/models"
)

func TestThresholdsStrictlyIncrease(t *testing.T) {
	e := NewEngine(time.UTC)

	assert.Equal(t, 0, e.Threshold(1))
	// 100*2^1.5 + 50 = 332.84
	assert.Equal(t, 332, e.Threshold(2))
	for level := 2; level <= MaxLevel; level++ {
		assert.Greater(t, e.Threshold(level), e.Threshold(level-1), "level %d", level)
	}
}

func TestLevelForIsMonotone(t *testing.T) {
	e := NewEngine(time.UTC)

	prev := 1
	for exp := 0; exp <= e.Threshold(MaxLevel)+1000; exp += 37 {
		level := e.LevelFor(exp)
		require.GreaterOrEqual(t, level, prev)
		require.LessOrEqual(t, level, MaxLevel)
		prev = level
	}
	assert.Equal(t, MaxLevel, prev)

	assert.Equal(t, 1, e.LevelFor(331))
	assert.Equal(t, 2, e.LevelFor(332))
}

func TestReward(t *testing.T) {
	e := NewEngine(time.UTC)

	assert.Equal(t, 12, e.Reward(1, 0))
	assert.Equal(t, 23, e.Reward(5, 3))
	assert.Equal(t, 30, e.Reward(5, 42))
}

func TestAddExperienceLevelUp(t *testing.T) {
	e := NewEngine(time.UTC)
	user := &models.User{Level: 1, Experience: 320}

	assert.False(t, e.AddExperience(user, 5))
	assert.True(t, e.AddExperience(user, 20))
	assert.Equal(t, 2, user.Level)
	assert.Equal(t, 345, user.Experience)

	current, span := e.Progress(user.Experience, user.Level)
	assert.Equal(t, 13, current)
	assert.Equal(t, e.Threshold(3)-e.Threshold(2), span)

	_, span = e.Progress(e.Threshold(MaxLevel), MaxLevel)
	assert.Zero(t, span)
}

func TestUpdateStreak(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	e := NewEngine(loc)
	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, loc) }
	practiced := func(t time.Time) sql.NullTime { return sql.NullTime{Time: t, Valid: true} }

	user := &models.User{}
	streak, record := e.UpdateStreak(user, day(1, 10))
	assert.Equal(t, 1, streak)
	assert.True(t, record)

	streak, record = e.UpdateStreak(user, day(1, 23))
	assert.Equal(t, 1, streak, "same day does not count twice")
	assert.False(t, record)

	streak, _ = e.UpdateStreak(user, day(2, 0))
	assert.Equal(t, 2, streak)
	assert.Equal(t, 2, user.BestStreak)

	streak, record = e.UpdateStreak(user, day(5, 12))
	assert.Equal(t, 1, streak, "gap resets")
	assert.False(t, record)
	assert.Equal(t, 2, user.BestStreak)

	// 23:30 UTC on May 5 is already May 6 in Moscow
	user = &models.User{CurrentStreak: 4, BestStreak: 4, LastPracticeDate: practiced(day(5, 12))}
	streak, record = e.UpdateStreak(user, time.Date(2024, 5, 5, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, 5, streak)
	assert.True(t, record)

	user = &models.User{CurrentStreak: 3, LastPracticeDate: practiced(day(9, 12))}
	streak, _ = e.UpdateStreak(user, day(8, 12))
	assert.Equal(t, 3, streak, "practice date in the future leaves the streak alone")
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "Новичок", LevelName(1))
	assert.Equal(t, "Величайший", LevelName(25))
	assert.Equal(t, "Уровень 26", LevelName(26))
}
