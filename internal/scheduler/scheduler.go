package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/pkg/models"
)

// DefaultNotificationHours are the local hours reminders go out at
var DefaultNotificationHours = []int{9, 14, 19}

// Notifier delivers a reminder to one user
type Notifier interface {
	SendReminder(ctx context.Context, reminder database.DueReminder) error
}

// DueSource answers which words are due
type DueSource interface {
	UsersWithDueWords(ctx context.Context, now time.Time) ([]database.DueReminder, error)
	DueWords(ctx context.Context, userID int64, category models.Category, now time.Time, limit int) ([]models.Word, error)
	DueCount(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	notifier  Notifier
	hours     []int
	now       func() time.Time
}

// New creates a new scheduler instance running in loc
func New(source DueSource, notifier Notifier, hours []int, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if len(hours) == 0 {
		hours = DefaultNotificationHours
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		source:    source,
		notifier:  notifier,
		hours:     hours,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(atTimes(s.hours)).Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	log.Printf("Reminder scheduler started at %s", atTimes(s.hours))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// atTimes renders hours in gocron's "09:00;14:00" form
func atTimes(hours []int) string {
	times := make([]string, 0, len(hours))
	for _, h := range hours {
		times = append(times, fmt.Sprintf("%02d:00", h))
	}
	return strings.Join(times, ";")
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := s.SendDueReminders(ctx)
	if err != nil {
		log.Printf("Error sending reminders: %v", err)
		return
	}
	log.Printf("Sent %d reminders", sent)
}

// SendDueReminders notifies every opted-in user with due words.
// A failed delivery is logged and does not stop the others.
func (s *Scheduler) SendDueReminders(ctx context.Context) (int, error) {
	reminders, err := s.source.UsersWithDueWords(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to get users for notification: %w", err)
	}

	sent := 0
	for _, reminder := range reminders {
		if err := s.notifier.SendReminder(ctx, reminder); err != nil {
			log.Printf("Error sending reminder to user %d: %v", reminder.UserID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// RunManualCheck forces a check for a specific user
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	now := s.now()
	count, err := s.source.DueCount(ctx, userID, now)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	words, err := s.source.DueWords(ctx, userID, models.CategoryMixed, now, database.ReminderPreviewSize)
	if err != nil {
		return err
	}
	reminder := database.DueReminder{UserID: userID, DueCount: count}
	for _, w := range words {
		reminder.Words = append(reminder.Words, w.Form)
	}
	return s.notifier.SendReminder(ctx, reminder)
}
