// Package bot is the Telegram surface of the trainer: commands, inline menus and reminders.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/scheduler"
	"github.com/example/orfobot/internal/training"
)

// sender is the part of the Telegram API the bot talks to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api          sender
	botAPI       *tgbotapi.BotAPI
	training     *training.Service
	content      *content.Service
	scheduler    *scheduler.Scheduler
	config       *BotConfig
	adminUserIDs map[int64]bool
	httpClient   *http.Client

	mu                 sync.Mutex
	drafts             map[int64]content.Draft // Admin word dialogs in progress
	awaitingFileUpload map[int64]bool
}

// New connects to Telegram and creates a new bot instance
func New(token string, trainer *training.Service, words *content.Service, config *BotConfig) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b := newBot(botAPI, trainer, words, config)
	b.botAPI = botAPI
	return b, nil
}

func newBot(api sender, trainer *training.Service, words *content.Service, config *BotConfig) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	b := &Bot{
		api:                api,
		training:           trainer,
		content:            words,
		config:             config,
		adminUserIDs:       make(map[int64]bool),
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		drafts:             make(map[int64]content.Draft),
		awaitingFileUpload: make(map[int64]bool),
	}
	for _, id := range config.AdminUserIDs {
		b.adminUserIDs[id] = true
	}
	return b
}

// SetScheduler attaches the reminder scheduler so settings changes can trigger a check
func (b *Bot) SetScheduler(s *scheduler.Scheduler) {
	b.scheduler = s
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return fmt.Errorf("bot is not connected")
	}

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops receiving updates and the reminder scheduler
func (b *Bot) Stop(ctx context.Context) error {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	log.Println("Bot stopped")
	return ctx.Err()
}

// SendReminder implements the scheduler.Notifier interface.
// A learner who blocked the bot is deactivated and gets no further reminders.
func (b *Bot) SendReminder(ctx context.Context, reminder database.DueReminder) error {
	// В личных чатах chat ID совпадает с user ID
	err := b.sendHTML(reminder.UserID, renderReminder(reminder), reminderButtons())
	if err == nil {
		log.Printf("Successfully sent reminder to user %d for %d words", reminder.UserID, reminder.DueCount)
		return nil
	}

	if isBlocked(err) {
		if derr := b.training.Deactivate(ctx, reminder.UserID); derr != nil {
			log.Printf("Error deactivating user %d: %v", reminder.UserID, derr)
		} else {
			log.Printf("User %d blocked the bot, reminders disabled", reminder.UserID)
		}
	}
	return err
}

// isBlocked reports whether Telegram refused delivery because the user blocked the bot
func isBlocked(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	if message.IsCommand() {
		var err error
		switch message.Command() {
		case "start":
			err = b.handleStart(ctx, message)
		case "training":
			b.showCategoryMenu(message.Chat.ID)
		case "dictionary":
			err = b.handleDictionary(ctx, message.Chat.ID, userID)
		case "stats":
			err = b.handleStats(ctx, message.Chat.ID, userID, 7)
		case "top":
			err = b.handleTop(ctx, message.Chat.ID, userID)
		case "settings":
			err = b.handleSettings(ctx, message.Chat.ID, userID)
		case "help":
			err = b.sendHTML(message.Chat.ID, helpText, [][]MenuButton{backToMenu})
		case "cancel":
			err = b.handleCancel(ctx, message.Chat.ID, userID)
		case "admin", "add_word", "delete_word", "import":
			err = b.handleAdminCommand(ctx, message)
		default:
			err = b.sendHTML(message.Chat.ID, "Неизвестная команда. Используйте /help, чтобы увидеть список команд.", mainMenuButtons(b.isAdmin(userID)))
		}
		if err != nil {
			log.Printf("Error handling command /%s from user %d: %v", message.Command(), userID, err)
		}
		return
	}

	if message.Document != nil && b.awaitingUpload(userID) {
		if err := b.handleImportFile(ctx, message); err != nil {
			log.Printf("Error importing file from user %d: %v", userID, err)
		}
		return
	}

	if b.hasDraft(userID) {
		if err := b.handleDraftInput(ctx, message.Chat.ID, userID, content.Input{Kind: content.InputText, Text: message.Text}); err != nil {
			log.Printf("Error handling admin input from user %d: %v", userID, err)
		}
		return
	}

	if message.Text != "" {
		if err := b.handleTextAnswer(ctx, message); err != nil {
			log.Printf("Error handling answer from user %d: %v", userID, err)
		}
		return
	}

	b.sendHTML(message.Chat.ID, "Я вас не понял. Выберите действие в меню:", mainMenuButtons(b.isAdmin(userID)))
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	c, err := ParseCallback(callback.Data)
	if err != nil {
		log.Printf("Error parsing callback from user %d: %v", userID, err)
		b.answerCallback(callback.ID, "Кнопка устарела")
		return
	}

	if c.Kind == CallbackAnswer {
		b.handleChoice(ctx, callback, c)
		return
	}
	b.answerCallback(callback.ID, "")

	switch c.Kind {
	case CallbackMainMenu:
		b.showMainMenu(chatID, userID)
	case CallbackTraining:
		b.showCategoryMenu(chatID)
	case CallbackCategory:
		b.showCountMenu(chatID, c.Category)
	case CallbackCount:
		err = b.startTraining(ctx, chatID, userID, c.Category, c.Count)
	case CallbackFinish:
		err = b.finishTraining(ctx, chatID, userID, c.Handle)
	case CallbackErrors:
		err = b.startErrorPractice(ctx, chatID, userID)
	case CallbackMastered:
		err = b.startMasteredReview(ctx, chatID, userID, c.Category)
	case CallbackStats:
		err = b.handleStats(ctx, chatID, userID, c.Days)
	case CallbackDictionary:
		err = b.handleDictionary(ctx, chatID, userID)
	case CallbackTop:
		err = b.handleTop(ctx, chatID, userID)
	case CallbackSettings:
		err = b.handleSettings(ctx, chatID, userID)
	case CallbackNotifications:
		err = b.handleNotificationToggle(ctx, chatID, userID, c.Enabled)
	case CallbackHelp:
		err = b.sendHTML(chatID, helpText, [][]MenuButton{backToMenu})
	case CallbackCancel:
		err = b.handleCancel(ctx, chatID, userID)
	default:
		err = b.handleAdminCallback(ctx, chatID, userID, c)
	}
	if err != nil {
		log.Printf("Error handling callback %q from user %d: %v", callback.Data, userID, err)
	}
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID, userID int64) {
	b.sendHTML(chatID, "🏠 <b>Главное меню</b>\n\nВыберите действие:", mainMenuButtons(b.isAdmin(userID)))
}

// sendHTML sends an HTML message with an optional inline keyboard
func (b *Bot) sendHTML(chatID int64, text string, buttons [][]MenuButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
		return err
	}
	return nil
}

func (b *Bot) answerCallback(id, text string) {
	cb := tgbotapi.NewCallback(id, text)
	if _, err := b.api.Request(cb); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}

// dropKeyboard removes the inline keyboard of an answered question
func (b *Bot) dropKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := b.api.Request(edit); err != nil {
		log.Printf("Error removing keyboard: %v", err)
	}
}
