package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/internal/training"
	"github.com/example/orfobot/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text     string
	Callback Callback
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Callback.Encode()))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

var backToMenu = []MenuButton{{Text: "🏠 Главное меню", Callback: Callback{Kind: CallbackMainMenu}}}

// mainMenuButtons returns the buttons for the main menu
func mainMenuButtons(admin bool) [][]MenuButton {
	rows := [][]MenuButton{
		{
			{Text: "🎯 Тренировка", Callback: Callback{Kind: CallbackTraining}},
			{Text: "📖 Мой словарь", Callback: Callback{Kind: CallbackDictionary}},
		},
		{
			{Text: "📊 Статистика", Callback: Callback{Kind: CallbackStats, Days: 7}},
			{Text: "🏆 Рейтинг", Callback: Callback{Kind: CallbackTop}},
		},
		{
			{Text: "⚙️ Настройки", Callback: Callback{Kind: CallbackSettings}},
			{Text: "❓ Помощь", Callback: Callback{Kind: CallbackHelp}},
		},
	}
	if admin {
		rows = append(rows, []MenuButton{{Text: "🛠 Админ-панель", Callback: Callback{Kind: CallbackAdmin}}})
	}
	return rows
}

// categoryButtons lists every category under kind, plus mixed unless the kind stores words
func categoryButtons(kind CallbackKind, back []MenuButton) [][]MenuButton {
	var rows [][]MenuButton
	for _, c := range models.Categories {
		rows = append(rows, []MenuButton{{Text: categoryLabel(c), Callback: Callback{Kind: kind, Category: c}}})
	}
	if kind != CallbackDraftCategory {
		rows = append(rows, []MenuButton{{Text: categoryLabel(models.CategoryMixed), Callback: Callback{Kind: kind, Category: models.CategoryMixed}}})
	}
	if back != nil {
		rows = append(rows, back)
	}
	return rows
}

var countLabels = map[int]string{
	10: "⚡ Быстрая (10 слов)",
	25: "📚 Стандартная (25 слов)",
	50: "🔥 Колоссальная (50 слов)",
}

func countButtons(category models.Category, counts []int) [][]MenuButton {
	var rows [][]MenuButton
	for _, n := range counts {
		label, ok := countLabels[n]
		if !ok {
			label = wordsCount(n)
		}
		rows = append(rows, []MenuButton{{Text: label, Callback: Callback{Kind: CallbackCount, Category: category, Count: n}}})
	}
	return append(rows, []MenuButton{{Text: "« Назад", Callback: Callback{Kind: CallbackTraining}}})
}

func finishButton(handle string) []MenuButton {
	return []MenuButton{{Text: "🚪 Завершить тренировку", Callback: Callback{Kind: CallbackFinish, Handle: handle}}}
}

// questionButtons offers one row per option for choice puzzles
func questionButtons(q *training.Question) [][]MenuButton {
	var rows [][]MenuButton
	if q.Puzzle.Style == puzzle.StyleChoice {
		for i, opt := range q.Puzzle.Options {
			rows = append(rows, []MenuButton{{Text: opt, Callback: Callback{Kind: CallbackAnswer, Handle: q.SessionID, Number: q.Number, Index: i}}})
		}
	}
	return append(rows, finishButton(q.SessionID))
}

func summaryButtons(s *training.Summary) [][]MenuButton {
	var rows [][]MenuButton
	if s.ErrorPracticeAvailable {
		rows = append(rows, []MenuButton{{Text: "🔁 Работа над ошибками", Callback: Callback{Kind: CallbackErrors}}})
	}
	rows = append(rows, []MenuButton{{Text: "🎯 Новая тренировка", Callback: Callback{Kind: CallbackTraining}}})
	return append(rows, backToMenu)
}

func statsButtons(periods []int) [][]MenuButton {
	var row []MenuButton
	for _, days := range periods {
		label := "Всё время"
		if days > 0 {
			label = strconv.Itoa(days) + " дн."
		}
		row = append(row, MenuButton{Text: label, Callback: Callback{Kind: CallbackStats, Days: days}})
	}
	return [][]MenuButton{row, backToMenu}
}

func dictionaryButtons(hasMastered bool) [][]MenuButton {
	rows := [][]MenuButton{{{Text: "🎯 Тренировка", Callback: Callback{Kind: CallbackTraining}}}}
	if hasMastered {
		rows = append(rows, []MenuButton{{Text: "🏆 Повторить выученные", Callback: Callback{Kind: CallbackMastered, Category: models.CategoryMixed}}})
	}
	return append(rows, backToMenu)
}

func settingsButtons(enabled bool) [][]MenuButton {
	toggle := MenuButton{Text: "🔔 Включить напоминания", Callback: Callback{Kind: CallbackNotifications, Enabled: true}}
	if enabled {
		toggle = MenuButton{Text: "🔕 Выключить напоминания", Callback: Callback{Kind: CallbackNotifications, Enabled: false}}
	}
	return [][]MenuButton{{toggle}, backToMenu}
}

func reminderButtons() [][]MenuButton {
	return [][]MenuButton{{{Text: "🎯 Начать тренировку", Callback: Callback{Kind: CallbackTraining}}}}
}

func adminButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "➕ Добавить слово", Callback: Callback{Kind: CallbackAdminAdd}},
			{Text: "📋 Список слов", Callback: Callback{Kind: CallbackAdminList, Category: models.CategoryMixed}},
		},
		{
			{Text: "🗑️ Удалить слово", Callback: Callback{Kind: CallbackAdminDelete}},
			{Text: "📊 Статистика", Callback: Callback{Kind: CallbackAdminStats}},
		},
		{{Text: "📥 Импорт из файла", Callback: Callback{Kind: CallbackAdminImport}}},
		backToMenu,
	}
}

var backToAdmin = []MenuButton{{Text: "« Админ-панель", Callback: Callback{Kind: CallbackAdmin}}}

func cancelButtons() [][]MenuButton {
	return [][]MenuButton{{{Text: "❌ Отмена", Callback: Callback{Kind: CallbackCancel}}}}
}

func explanationButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "✍️ Добавить пояснение", Callback: Callback{Kind: CallbackDraftExplanation, Enabled: true}},
			{Text: "⏭ Пропустить", Callback: Callback{Kind: CallbackDraftExplanation, Enabled: false}},
		},
		{{Text: "❌ Отмена", Callback: Callback{Kind: CallbackCancel}}},
	}
}

// categoryPrompt is the text above a category menu
func categoryPrompt(kind CallbackKind) string {
	switch kind {
	case CallbackMastered:
		return "🏆 Какие выученные слова повторить?"
	case CallbackAdminList:
		return "📋 Слова какой категории показать?"
	}
	return fmt.Sprintf("🎯 <b>Выберите категорию</b>\n\n%s смешивает слова всех категорий.", categoryLabel(models.CategoryMixed))
}
