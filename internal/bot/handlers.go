package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/internal/training"
	"github.com/example/orfobot/pkg/models"
)

const notRegisteredText = "Похоже, мы ещё не знакомы. Нажмите /start, чтобы начать."

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	// Создаем пользователя при первом взаимодействии
	user := &models.User{
		ID:        message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}
	if err := b.training.Register(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	profile, err := b.training.Profile(ctx, user.ID)
	if err != nil {
		log.Printf("Error loading profile of user %d: %v", user.ID, err)
	}
	return b.sendHTML(message.Chat.ID, renderWelcome(user.DisplayName(), profile), mainMenuButtons(b.isAdmin(user.ID)))
}

// reportUserError turns a service error into a reply; it returns the error when it is not a user-facing one
func (b *Bot) reportUserError(chatID int64, err error) error {
	switch {
	case errors.Is(err, training.ErrUserNotFound):
		return b.sendHTML(chatID, notRegisteredText, nil)
	case errors.Is(err, training.ErrStaleSession):
		return b.sendHTML(chatID, "Эта тренировка уже завершена.", [][]MenuButton{backToMenu})
	}
	b.sendHTML(chatID, "⚠️ Что-то пошло не так. Попробуйте ещё раз позже.", [][]MenuButton{backToMenu})
	return err
}

func (b *Bot) handleDictionary(ctx context.Context, chatID, userID int64) error {
	entries, err := b.training.Dictionary(ctx, userID)
	if err != nil {
		return b.reportUserError(chatID, err)
	}

	hasMastered := false
	for _, e := range entries {
		if e.Mastered {
			hasMastered = true
			break
		}
	}
	return b.sendHTML(chatID, renderDictionary(entries), dictionaryButtons(hasMastered))
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64, days int) error {
	profile, err := b.training.Profile(ctx, userID)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	stats, err := b.training.Statistics(ctx, userID, days)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	return b.sendHTML(chatID, renderStatistics(profile, stats, days), statsButtons(b.config.StatsPeriods))
}

func (b *Bot) handleTop(ctx context.Context, chatID, userID int64) error {
	users, err := b.training.Leaderboard(ctx, b.config.LeaderboardSize)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	return b.sendHTML(chatID, renderLeaderboard(users, userID), [][]MenuButton{backToMenu})
}

func (b *Bot) handleSettings(ctx context.Context, chatID, userID int64) error {
	profile, err := b.training.Profile(ctx, userID)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	return b.sendHTML(chatID, renderSettings(&profile.User), settingsButtons(profile.User.NotificationsEnabled))
}

func (b *Bot) handleNotificationToggle(ctx context.Context, chatID, userID int64, enabled bool) error {
	if err := b.training.SetNotifications(ctx, userID, enabled); err != nil {
		return b.reportUserError(chatID, err)
	}
	if err := b.handleSettings(ctx, chatID, userID); err != nil {
		return err
	}

	if enabled && b.scheduler != nil {
		// Сразу напомнить, если слова уже ждут
		if err := b.scheduler.RunManualCheck(ctx, userID); err != nil {
			log.Printf("Error checking due words for user %d: %v", userID, err)
		}
	}
	return nil
}

// handleCancel abandons the admin dialog or file upload in progress
func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64) error {
	if b.hasDraft(userID) {
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputCancel})
	}

	b.mu.Lock()
	uploading := b.awaitingFileUpload[userID]
	delete(b.awaitingFileUpload, userID)
	b.mu.Unlock()

	text := "Нечего отменять."
	if uploading {
		text = "❌ Действие отменено."
	}
	return b.sendHTML(chatID, text, mainMenuButtons(b.isAdmin(userID)))
}

func (b *Bot) showCategoryMenu(chatID int64) {
	b.sendHTML(chatID, categoryPrompt(CallbackCategory), categoryButtons(CallbackCategory, backToMenu))
}

func (b *Bot) showCountMenu(chatID int64, category models.Category) {
	text := fmt.Sprintf("<b>%s</b>\n\nСколько слов потренируем?", esc(categoryLabel(category)))
	b.sendHTML(chatID, text, countButtons(category, b.config.WordCounts))
}

func (b *Bot) startTraining(ctx context.Context, chatID, userID int64, category models.Category, count int) error {
	q, err := b.training.Start(ctx, userID, category, count)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	if q == nil {
		return b.sendHTML(chatID, "В этой категории пока нет новых слов или слов для повторения. Выберите другую категорию.", categoryButtons(CallbackCategory, backToMenu))
	}
	return b.sendQuestion(chatID, q)
}

func (b *Bot) startErrorPractice(ctx context.Context, chatID, userID int64) error {
	q, err := b.training.StartErrorPractice(ctx, userID)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	if q == nil {
		return b.sendHTML(chatID, "Ошибок для повторения нет. Отличная работа! ✅", [][]MenuButton{backToMenu})
	}
	return b.sendQuestion(chatID, q)
}

func (b *Bot) startMasteredReview(ctx context.Context, chatID, userID int64, category models.Category) error {
	q, err := b.training.StartMasteredReview(ctx, userID, category, 0)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	if q == nil {
		return b.sendHTML(chatID, "Выученных слов пока нет. Продолжайте тренироваться! 💪", [][]MenuButton{backToMenu})
	}
	return b.sendQuestion(chatID, q)
}

func (b *Bot) finishTraining(ctx context.Context, chatID, userID int64, handle string) error {
	current, err := b.training.Current(userID)
	if err != nil {
		return err
	}
	if current == nil || current.SessionID != handle {
		return b.reportUserError(chatID, training.ErrStaleSession)
	}

	summary, err := b.training.Finish(ctx, userID)
	if err != nil {
		return b.reportUserError(chatID, err)
	}
	return b.sendHTML(chatID, renderSummary(summary), summaryButtons(summary))
}

func (b *Bot) sendQuestion(chatID int64, q *training.Question) error {
	return b.sendHTML(chatID, renderQuestion(q), questionButtons(q))
}

// handleChoice answers a choice puzzle from its button
func (b *Bot) handleChoice(ctx context.Context, callback *tgbotapi.CallbackQuery, c Callback) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	outcome, err := b.training.SubmitChoice(ctx, userID, c.Handle, c.Number, c.Index)
	if errors.Is(err, training.ErrStaleSession) {
		b.answerCallback(callback.ID, "Этот вопрос уже неактуален")
		b.dropKeyboard(chatID, callback.Message.MessageID)
		return
	}
	b.answerCallback(callback.ID, "")
	if err != nil {
		if rerr := b.reportUserError(chatID, err); rerr != nil {
			log.Printf("Error recording answer of user %d: %v", userID, rerr)
		}
		return
	}

	b.dropKeyboard(chatID, callback.Message.MessageID)
	if err := b.deliverOutcome(chatID, outcome); err != nil {
		log.Printf("Error delivering outcome to user %d: %v", userID, err)
	}
}

// handleTextAnswer treats free text as the answer to the current puzzle
func (b *Bot) handleTextAnswer(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	q, err := b.training.Current(userID)
	if err != nil {
		return err
	}
	if q == nil {
		return b.sendHTML(message.Chat.ID, "Сейчас нет активной тренировки. Выберите действие в меню:", mainMenuButtons(b.isAdmin(userID)))
	}

	outcome, err := b.training.Submit(ctx, userID, q.SessionID, message.Text)
	if err != nil {
		return b.reportUserError(message.Chat.ID, err)
	}
	return b.deliverOutcome(message.Chat.ID, outcome)
}

// deliverOutcome reports the verdict, then the next question or the summary
func (b *Bot) deliverOutcome(chatID int64, o *training.Outcome) error {
	text := renderOutcome(o)
	if supportDue(o.Correct, o.Answered, b.config.SupportEvery) {
		text += "\n\n" + randomSupportPhrase()
	}
	if err := b.sendHTML(chatID, text, nil); err != nil {
		return err
	}

	if o.Next != nil {
		return b.sendQuestion(chatID, o.Next)
	}
	if o.Summary != nil {
		return b.sendHTML(chatID, renderSummary(o.Summary), summaryButtons(o.Summary))
	}
	return nil
}
