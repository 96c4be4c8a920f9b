package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/pkg/models"
)

type recordingNotifier struct {
	failFor map[int64]bool
	sent    []database.DueReminder
}

func (n *recordingNotifier) SendReminder(_ context.Context, r database.DueReminder) error {
	if n.failFor[r.UserID] {
		return errors.New("bot was blocked by the user")
	}
	n.sent = append(n.sent, r)
	return nil
}

func setup(t *testing.T) (*database.Store, time.Time) {
	t.Helper()
	store, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	word := &models.Word{Form: "домой", Category: models.CategoryRoots, Pattern: "д_мой", HiddenLetters: "о", Difficulty: 1}
	require.NoError(t, store.Words.Create(ctx, word))

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, store.Users.Upsert(ctx, &models.User{ID: id}))
		require.NoError(t, store.Progress.Save(ctx, &models.UserProgress{UserID: id, WordID: word.ID, NextDue: now.Add(-time.Minute)}))
	}
	return store, now
}

func TestSendDueRemindersSkipsFailures(t *testing.T) {
	store, now := setup(t)
	notifier := &recordingNotifier{failFor: map[int64]bool{2: true}}

	s := New(store.Progress, notifier, nil, time.UTC)
	s.now = func() time.Time { return now }

	sent, err := s.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(1), notifier.sent[0].UserID)
	assert.Equal(t, int64(3), notifier.sent[1].UserID)
	assert.Equal(t, []string{"домой"}, notifier.sent[0].Words)
}

func TestRunManualCheck(t *testing.T) {
	store, now := setup(t)
	notifier := &recordingNotifier{}

	s := New(store.Progress, notifier, nil, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RunManualCheck(context.Background(), 1))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, notifier.sent[0].DueCount)

	s.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, s.RunManualCheck(context.Background(), 1))
	assert.Len(t, notifier.sent, 1, "nothing due, nothing sent")
}

func TestAtTimes(t *testing.T) {
	assert.Equal(t, "09:00;14:00;19:00", atTimes(DefaultNotificationHours))
}
