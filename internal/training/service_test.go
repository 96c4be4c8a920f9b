package training

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/leveling"
	"github.com/example/orfobot/internal/spaced_repetition"
	"github.com/example/orfobot/pkg/models"
)

const testUser int64 = 100

type testEnv struct {
	svc   *Service
	store *database.Store
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{store: store, now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	env.svc = NewService(store, NewMemorySessionStore(), spaced_repetition.NewTracker(), leveling.NewEngine(time.UTC), Config{
		WordsPerTraining: 25,
		Now:              func() time.Time { return env.now },
	})

	require.NoError(t, env.svc.Register(context.Background(), &models.User{ID: testUser, FirstName: "Маша"}))
	return env
}

func (e *testEnv) addWord(t *testing.T, w models.Word) models.Word {
	t.Helper()
	if w.Difficulty == 0 {
		w.Difficulty = 1
	}
	require.NoError(t, e.store.Words.Create(context.Background(), &w))
	return w
}

func (e *testEnv) rootWord(t *testing.T, form string) models.Word {
	return e.addWord(t, models.Word{Form: form, Category: models.CategoryRoots, Pattern: "_" + string([]rune(form)[1:]), HiddenLetters: string([]rune(form)[:1])})
}

func TestSelectWordsMixesDueAndNew(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var due []int64
	for i := 0; i < 503; i++ {
		w := env.addWord(t, models.Word{
			Form:          fmt.Sprintf("слово%d", i),
			Category:      models.CategoryRoots,
			Pattern:       "_",
			HiddenLetters: "с",
		})
		if i < 3 {
			due = append(due, w.ID)
			require.NoError(t, env.store.Progress.Save(ctx, &models.UserProgress{
				UserID:       testUser,
				WordID:       w.ID,
				MistakeCount: 1,
				NextDue:      env.now.Add(-time.Duration(i+1) * time.Minute),
			}))
		}
	}

	words, err := env.svc.SelectWords(ctx, testUser, models.CategoryMixed, 25)
	require.NoError(t, err)
	require.Len(t, words, 25)

	// Most overdue first
	assert.Equal(t, []int64{due[2], due[1], due[0]}, []int64{words[0].ID, words[1].ID, words[2].ID})

	seen := make(map[int64]bool)
	for _, w := range words {
		assert.False(t, seen[w.ID], "duplicate word %d", w.ID)
		seen[w.ID] = true
	}
}

func TestSelectWordsShortWhenNotEnough(t *testing.T) {
	env := newTestEnv(t)

	env.rootWord(t, "дом")
	env.rootWord(t, "сад")
	env.addWord(t, models.Word{Form: "тОрты", Category: models.CategoryStress, Pattern: "т(о)рт(ы)"})

	words, err := env.svc.SelectWords(context.Background(), testUser, models.CategoryRoots, 25)
	require.NoError(t, err)
	assert.Len(t, words, 2)
}

func TestStartWithoutWords(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.svc.Start(context.Background(), testUser, models.CategoryMixed, 10)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestStartUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Start(context.Background(), 999, models.CategoryMixed, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCorrectAnswerOnNewWord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	word := env.addWord(t, models.Word{Form: "домой", Category: models.CategoryRoots, Pattern: "д_мой", HiddenLetters: "о", Difficulty: 2})

	q, err := env.svc.Start(ctx, testUser, models.CategoryRoots, 10)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Number)
	assert.Equal(t, 1, q.Total)
	assert.Equal(t, "д_мой", q.Puzzle.Challenge)

	out, err := env.svc.Submit(ctx, testUser, q.SessionID, " О ")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 14, out.Reward)
	assert.Nil(t, out.Next)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 1, out.Summary.Correct)
	assert.Equal(t, 1, out.Summary.Streak)
	assert.True(t, out.Summary.NewRecord)
	assert.False(t, out.Summary.ErrorPracticeAvailable)

	p, err := env.store.Progress.Get(ctx, testUser, word.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.IntervalPosition)
	assert.Equal(t, 1, p.CorrectCount)
	assert.False(t, p.Mastered)
	assert.Equal(t, env.now.Add(time.Hour), p.NextDue)

	user, err := env.store.Users.GetByID(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 14, user.Experience)
	assert.Equal(t, 1, user.CurrentStreak)

	_, err = env.svc.Submit(ctx, testUser, q.SessionID, "о")
	assert.ErrorIs(t, err, ErrStaleSession)
}

func TestSessionFlowAndErrorPractice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rootWord(t, "дом")
	env.rootWord(t, "сад")
	env.rootWord(t, "лес")

	q, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 3)
	require.NoError(t, err)
	require.NotNil(t, q)

	var out *Outcome
	rewards := []int{}
	for i := 0; q != nil; i++ {
		answer := q.Puzzle.Expected
		if i == 1 {
			answer = "ъ"
		}
		out, err = env.svc.Submit(ctx, testUser, q.SessionID, answer)
		require.NoError(t, err)
		assert.Equal(t, i+1, out.Answered)
		if out.Correct {
			rewards = append(rewards, out.Reward)
		}
		q = out.Next
	}
	// The streak bonus restarts after the mistake
	assert.Equal(t, []int{12, 12}, rewards)

	require.NotNil(t, out.Summary)
	assert.Equal(t, 3, out.Summary.Answered)
	assert.Equal(t, 2, out.Summary.Correct)
	assert.Equal(t, 1, out.Summary.Incorrect)
	require.Len(t, out.Summary.Mistakes, 1)
	assert.True(t, out.Summary.ErrorPracticeAvailable)

	mistaken := out.Summary.Mistakes[0]
	p, err := env.store.Progress.Get(ctx, testUser, mistaken.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.MistakeCount)
	assert.Equal(t, 0, p.IntervalPosition)

	q, err = env.svc.StartErrorPractice(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, models.ModeErrors, q.Mode)
	assert.Equal(t, 1, q.Total)
	assert.Equal(t, mistaken.ID, q.Word.ID)

	out, err = env.svc.Submit(ctx, testUser, q.SessionID, "ъ")
	require.NoError(t, err)
	require.NotNil(t, out.Summary)
	assert.False(t, out.Summary.ErrorPracticeAvailable)

	q, err = env.svc.StartErrorPractice(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, q, "error practice is not offered after error practice")
}

func TestNewSessionSupersedesOld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rootWord(t, "дом")
	env.rootWord(t, "сад")

	first, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 2)
	require.NoError(t, err)
	second, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	_, err = env.svc.Submit(ctx, testUser, first.SessionID, first.Puzzle.Expected)
	assert.ErrorIs(t, err, ErrStaleSession)

	_, err = env.svc.Submit(ctx, testUser, second.SessionID, second.Puzzle.Expected)
	assert.NoError(t, err)
}

func TestFinishEarlyKeepsAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, form := range []string{"дом", "сад", "лес"} {
		env.rootWord(t, form)
	}

	q, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 3)
	require.NoError(t, err)
	out, err := env.svc.Submit(ctx, testUser, q.SessionID, "ъ")
	require.NoError(t, err)
	require.NotNil(t, out.Next)

	current, err := env.svc.Current(testUser)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 2, current.Number)
	assert.Equal(t, out.Next.Puzzle, current.Puzzle)

	summary, err := env.svc.Finish(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Answered)
	assert.Equal(t, 1, summary.Incorrect)
	assert.Equal(t, 1, summary.Streak)

	dictionary, err := env.svc.Dictionary(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, dictionary, 1)

	_, err = env.svc.Finish(ctx, testUser)
	assert.ErrorIs(t, err, ErrStaleSession)

	current, err = env.svc.Current(testUser)
	require.NoError(t, err)
	assert.Nil(t, current)

	stats, err := env.svc.Statistics(ctx, testUser, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedSessions)
	assert.Equal(t, 1, stats.WordsAnswered)
}

func TestFinishWithoutAnswersKeepsStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rootWord(t, "дом")

	_, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 1)
	require.NoError(t, err)

	summary, err := env.svc.Finish(ctx, testUser)
	require.NoError(t, err)
	assert.Zero(t, summary.Answered)
	assert.Zero(t, summary.Streak)

	user, err := env.store.Users.GetByID(ctx, testUser)
	require.NoError(t, err)
	assert.Zero(t, user.CurrentStreak)
	assert.False(t, user.LastPracticeDate.Valid)
}

func TestChoiceAnswerAndMasteredReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	word := env.addWord(t, models.Word{Form: "нефтепровОд", Category: models.CategoryStress, Pattern: "нефтепр(о)в(о)д", Difficulty: 3})

	q, err := env.svc.Start(ctx, testUser, models.CategoryStress, 1)
	require.NoError(t, err)
	require.Len(t, q.Puzzle.Options, 2)

	_, err = env.svc.SubmitChoice(ctx, testUser, q.SessionID, q.Number, 5)
	assert.ErrorIs(t, err, ErrStaleSession)

	index := -1
	for i, opt := range q.Puzzle.Options {
		if opt == "нефтепровОд" {
			index = i
		}
	}
	require.NotEqual(t, -1, index)

	out, err := env.svc.SubmitChoice(ctx, testUser, q.SessionID, q.Number, index)
	require.NoError(t, err)
	assert.True(t, out.Correct)

	// Push the word to mastered and review it
	p, err := env.store.Progress.Get(ctx, testUser, word.ID)
	require.NoError(t, err)
	p.Mastered = true
	require.NoError(t, env.store.Progress.Save(ctx, p))

	q, err = env.svc.StartMasteredReview(ctx, testUser, models.CategoryMixed, 10)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, models.ModeMastered, q.Mode)

	out, err = env.svc.Submit(ctx, testUser, q.SessionID, "нефтепровод")
	require.NoError(t, err)
	assert.False(t, out.Correct)

	after, err := env.store.Progress.Get(ctx, testUser, word.ID)
	require.NoError(t, err)
	assert.Equal(t, p.IntervalPosition, after.IntervalPosition, "mastered review leaves the schedule alone")
	assert.Equal(t, p.MistakeCount, after.MistakeCount)
}

func TestRepeatedChoicePressIsStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addWord(t, models.Word{Form: "нефтепровОд", Category: models.CategoryStress, Pattern: "нефтепр(о)в(о)д"})
	env.addWord(t, models.Word{Form: "тОрты", Category: models.CategoryStress, Pattern: "т(о)рт(ы)"})

	q, err := env.svc.Start(ctx, testUser, models.CategoryStress, 2)
	require.NoError(t, err)
	require.Equal(t, 1, q.Number)

	out, err := env.svc.SubmitChoice(ctx, testUser, q.SessionID, q.Number, 0)
	require.NoError(t, err)
	require.NotNil(t, out.Next)
	second := out.Next.Word

	// The same button pressed again must not answer the next word
	_, err = env.svc.SubmitChoice(ctx, testUser, q.SessionID, q.Number, 0)
	assert.ErrorIs(t, err, ErrStaleSession)

	p, err := env.store.Progress.Get(ctx, testUser, second.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	current, err := env.svc.Current(testUser)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 2, current.Number)
	assert.Equal(t, second.ID, current.Word.ID)

	out, err = env.svc.SubmitChoice(ctx, testUser, q.SessionID, current.Number, 1)
	require.NoError(t, err)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 2, out.Summary.Answered)
}

func TestStartSkipsWordsWithoutPuzzle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addWord(t, models.Word{Form: "сломано", Category: "bogus", Pattern: "сл_мано", HiddenLetters: "о"})

	q, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 10)
	require.NoError(t, err)
	assert.Nil(t, q, "no session opens when no word can be asked")
	current, err := env.svc.Current(testUser)
	require.NoError(t, err)
	assert.Nil(t, current)

	good := env.rootWord(t, "дом")
	q, err = env.svc.Start(ctx, testUser, models.CategoryMixed, 10)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Total)
	assert.Equal(t, good.ID, q.Word.ID)

	out, err := env.svc.Submit(ctx, testUser, q.SessionID, q.Puzzle.Expected)
	require.NoError(t, err)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 1, out.Summary.Total)
}

func TestProfileAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.svc.Register(ctx, &models.User{ID: 200, FirstName: "Петя"}))

	env.rootWord(t, "дом")
	q, err := env.svc.Start(ctx, testUser, models.CategoryMixed, 1)
	require.NoError(t, err)
	_, err = env.svc.Submit(ctx, testUser, q.SessionID, q.Puzzle.Expected)
	require.NoError(t, err)

	profile, err := env.svc.Profile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 12, profile.User.Experience)
	assert.Equal(t, "Новичок", profile.LevelName)
	assert.Equal(t, 12, profile.LevelExperience)
	assert.Equal(t, 332, profile.LevelSpan)

	top, err := env.svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, testUser, top[0].ID)

	_, err = env.svc.Profile(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	env.now = env.now.Add(2 * time.Hour)
	due, err := env.svc.DueWords(ctx, testUser, models.CategoryMixed)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestStatisticsAndDictionary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rootWord(t, "дом")
	env.rootWord(t, "лес")

	q, err := env.svc.Start(ctx, testUser, models.CategoryRoots, 2)
	require.NoError(t, err)
	out, err := env.svc.Submit(ctx, testUser, q.SessionID, q.Puzzle.Expected)
	require.NoError(t, err)
	require.NotNil(t, out.Next)
	missed := out.Next.Word.Form
	out, err = env.svc.Submit(ctx, testUser, q.SessionID, "ъ")
	require.NoError(t, err)
	require.NotNil(t, out.Summary)

	week, err := env.svc.Statistics(ctx, testUser, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, week.CompletedSessions)
	assert.Equal(t, 2, week.WordsAnswered)
	assert.Equal(t, 1, week.CorrectAnswers)
	assert.Equal(t, 2, week.InLearning)
	assert.Equal(t, 0, week.DueNow)

	entries, err := env.svc.Dictionary(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, missed, entries[0].Form, "the missed word comes back first")
	assert.Equal(t, 1, entries[0].MistakeCount)
	assert.False(t, entries[0].Due)

	env.now = env.now.AddDate(0, 0, 10)
	week, err = env.svc.Statistics(ctx, testUser, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, week.CompletedSessions)
	assert.Equal(t, 0, week.WordsAnswered)
	assert.Equal(t, 2, week.DueNow)

	entries, err = env.svc.Dictionary(ctx, testUser)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Due, e.Form)
	}

	all, err := env.svc.Statistics(ctx, testUser, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, all.CompletedSessions)
	assert.Equal(t, 2, all.WordsAnswered)
}

func TestMemorySessionStoreRemoveChecksHandle(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, &Session{Handle: "a"})
	prev, replaced := store.Put(1, &Session{Handle: "b"})
	require.True(t, replaced)
	assert.Equal(t, "a", prev.Handle)

	store.Remove(1, "a")
	s, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", s.Handle)

	store.Remove(1, "b")
	_, ok = store.Get(1)
	assert.False(t, ok)
}
