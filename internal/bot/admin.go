package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/excel"
	"github.com/example/orfobot/internal/puzzle"
)

const adminOnlyText = "Эта команда доступна только администраторам."

const importInstructions = `📥 <b>Импорт слов</b>

Отправьте файл .xlsx или .csv. Первая строка считается заголовком, далее столбцы:
A: слово
B: определение
C: категория (код или название)
D: шаблон
E: пропущенные буквы (можно оставить пустым)
F: сложность от 1 до 5
G: пояснение

Чтобы отменить, отправьте /cancel`

// handleAdminCommand handles /admin, /add_word, /delete_word and /import
func (b *Bot) handleAdminCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID
	if !b.isAdmin(userID) {
		return b.sendHTML(chatID, adminOnlyText, mainMenuButtons(false))
	}

	switch message.Command() {
	case "add_word":
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputStartAdd})
	case "delete_word":
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputStartDelete})
	case "import":
		return b.startImport(chatID, userID)
	}
	return b.showAdminPanel(chatID)
}

// handleAdminCallback handles the buttons of the admin panel and the word dialog
func (b *Bot) handleAdminCallback(ctx context.Context, chatID, userID int64, c Callback) error {
	if !b.isAdmin(userID) {
		return b.sendHTML(chatID, adminOnlyText, mainMenuButtons(false))
	}

	switch c.Kind {
	case CallbackAdmin:
		return b.showAdminPanel(chatID)
	case CallbackAdminAdd:
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputStartAdd})
	case CallbackAdminDelete:
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputStartDelete})
	case CallbackAdminImport:
		return b.startImport(chatID, userID)
	case CallbackAdminStats:
		overview, err := b.content.Overview(ctx)
		if err != nil {
			return b.reportUserError(chatID, err)
		}
		return b.sendHTML(chatID, renderOverview(overview), [][]MenuButton{backToAdmin})
	case CallbackAdminList:
		words, err := b.content.List(ctx, c.Category)
		if err != nil {
			return b.reportUserError(chatID, err)
		}
		return b.sendHTML(chatID, renderWordList(c.Category, words), categoryButtons(CallbackAdminList, backToAdmin))
	case CallbackDraftCategory:
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: content.InputCategory, Category: c.Category})
	case CallbackDraftExplanation:
		kind := content.InputSkipExplanation
		if c.Enabled {
			kind = content.InputAddExplanation
		}
		return b.handleDraftInput(ctx, chatID, userID, content.Input{Kind: kind})
	}
	return fmt.Errorf("unhandled callback kind %q", c.Kind)
}

func (b *Bot) showAdminPanel(chatID int64) error {
	return b.sendHTML(chatID, "🛠 <b>Админ-панель</b>\n\nВыберите действие:", adminButtons())
}

func (b *Bot) hasDraft(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.drafts[userID]
	return ok && d.Step != content.StepIdle
}

// handleDraftInput feeds one admin action into the word dialog and carries out its effects
func (b *Bot) handleDraftInput(ctx context.Context, chatID, userID int64, in content.Input) error {
	b.mu.Lock()
	current := b.drafts[userID]
	b.mu.Unlock()

	if current.Step == content.StepWord && in.Kind == content.InputText {
		form := strings.TrimSpace(in.Text)
		exists, err := b.content.Exists(ctx, form)
		if err != nil {
			return b.reportUserError(chatID, err)
		}
		if exists {
			return b.sendHTML(chatID, fmt.Sprintf("❌ Слово '%s' уже существует в базе данных.", esc(form)), cancelButtons())
		}
	}

	b.mu.Lock()
	next, effects := content.Transition(b.drafts[userID], in)
	if next.Step == content.StepIdle {
		delete(b.drafts, userID)
	} else {
		b.drafts[userID] = next
		delete(b.awaitingFileUpload, userID)
	}
	b.mu.Unlock()

	for _, e := range effects {
		if err := b.applyEffect(ctx, chatID, e); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) applyEffect(ctx context.Context, chatID int64, e content.Effect) error {
	switch e.Kind {
	case content.EffectPrompt:
		buttons := cancelButtons()
		switch e.Prompt {
		case content.StepCategory:
			buttons = categoryButtons(CallbackDraftCategory, cancelButtons()[0])
		case content.StepExplanationChoice:
			buttons = explanationButtons()
		}
		return b.sendHTML(chatID, promptText(e), buttons)

	case content.EffectReject:
		return b.sendHTML(chatID, problemText(e.Problem, e.Word), cancelButtons())

	case content.EffectSave:
		w := e.Word
		err := b.content.Create(ctx, &w)
		switch {
		case errors.Is(err, content.ErrDuplicateWord):
			return b.sendHTML(chatID, fmt.Sprintf("❌ Слово '%s' уже существует в базе данных.", esc(w.Form)), adminButtons())
		case errors.Is(err, puzzle.ErrInvalidWord):
			return b.sendHTML(chatID, fmt.Sprintf("❌ Слово не сохранено: %s", esc(err.Error())), adminButtons())
		case err != nil:
			return b.reportUserError(chatID, err)
		}
		log.Printf("Word %q (%s) added", w.Form, w.Category)
		return b.sendHTML(chatID, renderSavedWord(w), adminButtons())

	case content.EffectDelete:
		w, err := b.content.Delete(ctx, e.Form)
		if errors.Is(err, database.ErrNotFound) {
			return b.sendHTML(chatID, fmt.Sprintf("❌ Слово '%s' не найдено.", esc(e.Form)), adminButtons())
		}
		if err != nil {
			return b.reportUserError(chatID, err)
		}
		log.Printf("Word %q deleted", w.Form)
		return b.sendHTML(chatID, fmt.Sprintf("🗑️ Слово <b>%s</b> удалено вместе с прогрессом учеников.", esc(w.Form)), adminButtons())

	case content.EffectCancelled:
		return b.sendHTML(chatID, "❌ Действие отменено.", adminButtons())
	}
	return nil
}

func (b *Bot) awaitingUpload(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.awaitingFileUpload[userID]
}

func (b *Bot) startImport(chatID, userID int64) error {
	b.mu.Lock()
	delete(b.drafts, userID)
	b.awaitingFileUpload[userID] = true
	b.mu.Unlock()
	return b.sendHTML(chatID, importInstructions, cancelButtons())
}

// handleImportFile downloads the uploaded document and imports its rows
func (b *Bot) handleImportFile(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID
	doc := message.Document

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return b.sendHTML(chatID, "❌ Поддерживаются только файлы .xlsx и .csv.", cancelButtons())
	}
	if doc.FileSize > b.config.MaxImportSize {
		return b.sendHTML(chatID, "❌ Файл слишком большой.", cancelButtons())
	}

	b.mu.Lock()
	delete(b.awaitingFileUpload, userID)
	b.mu.Unlock()

	body, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.sendHTML(chatID, "❌ Не удалось скачать файл. Попробуйте ещё раз.", adminButtons())
		return err
	}
	defer body.Close()

	result, err := excel.Import(ctx, io.LimitReader(body, int64(b.config.MaxImportSize)), ext, excel.DefaultImportConfig(), b.content)
	if err != nil {
		b.sendHTML(chatID, fmt.Sprintf("❌ Не удалось прочитать файл: %s", esc(err.Error())), adminButtons())
		return err
	}
	log.Printf("Imported %d of %d rows from %s", result.Created, result.TotalProcessed, doc.FileName)
	return b.sendHTML(chatID, renderImportResult(result), adminButtons())
}

func (b *Bot) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return resp.Body, nil
}
