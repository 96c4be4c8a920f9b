package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/excel"
	"github.com/example/orfobot/internal/leveling"
	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/internal/training"
	"github.com/example/orfobot/pkg/models"
)

// Caps on list lengths so a message stays under Telegram's 4096 characters
const (
	maxListedWords    = 30
	maxListedMistakes = 20
	maxListedErrors   = 10
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// plural picks the Russian form for n: слово, слова, слов
func plural(n int, one, few, many string) string {
	n %= 100
	if n < 0 {
		n = -n
	}
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	}
	return many
}

func wordsCount(n int) string {
	return fmt.Sprintf("%d %s", n, plural(n, "слово", "слова", "слов"))
}

func periodTitle(days int) string {
	if days <= 0 {
		return "за всё время"
	}
	return fmt.Sprintf("за %d %s", days, plural(days, "день", "дня", "дней"))
}

func categoryLabel(c models.Category) string {
	return puzzle.Icon(c) + " " + c.Title()
}

const helpText = `📚 <b>Как пользоваться ботом</b>

🎯 /training - начать тренировку: выберите категорию и количество слов.
Слова, в которых вы ошиблись, вернутся через 20 минут, затем через 1 час, 9 часов, 1, 2, 6 и 31 день. Слово считается выученным после 10 верных ответов или прохождения всех интервалов.

📖 /dictionary - ваш словарь: слова на изучении и выученные.
📊 /stats - статистика за 7, 14, 21, 30 дней или за всё время.
🏆 /top - рейтинг учеников.
⚙️ /settings - напоминания о повторении.
🚪 /cancel - прервать текущее действие.

За каждый верный ответ вы получаете опыт: чем сложнее слово и длиннее серия верных ответов, тем больше.`

func renderWelcome(name string, p *training.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 Привет, <b>%s</b>!\n\n", esc(name))
	b.WriteString("Я помогу подтянуть орфографию и ударения: корни, приставки, окончания, Н и НН, частицу НЕ и многое другое.\n\n")
	if p != nil {
		fmt.Fprintf(&b, "🏅 Уровень %d: %s\n", p.User.Level, esc(p.LevelName))
		if p.DueNow > 0 {
			fmt.Fprintf(&b, "⏰ К повторению: %s\n", wordsCount(p.DueNow))
		}
		b.WriteString("\n")
	}
	b.WriteString("Выберите действие:")
	return b.String()
}

func renderQuestion(q *training.Question) string {
	var b strings.Builder
	switch q.Mode {
	case models.ModeErrors:
		b.WriteString("🔁 <b>Работа над ошибками</b>\n")
	case models.ModeMastered:
		b.WriteString("🏆 <b>Повторение выученных слов</b>\n")
	}
	fmt.Fprintf(&b, "%s <b>%s</b>\nСлово %d из %d\n\n", puzzle.Icon(q.Category), esc(q.Category.Title()), q.Number, q.Total)

	if def := strings.TrimSpace(q.Word.Definition); def != "" {
		fmt.Fprintf(&b, "📖 <b>Определение:</b> %s\n\n", esc(def))
	}

	desc, _ := puzzle.Describe(q.Word.Category)
	fmt.Fprintf(&b, "%s\n<code>%s</code>", esc(desc.Prompt), esc(q.Puzzle.Challenge))
	if expl := strings.TrimSpace(q.Word.Explanation); expl != "" {
		fmt.Fprintf(&b, " <u>(%s)</u>", esc(expl))
	}

	if q.Puzzle.Style == puzzle.StyleBlank {
		b.WriteString("\n\n✏️ Напишите пропущенные буквы по порядку одним сообщением.")
	}
	return b.String()
}

func renderOutcome(o *training.Outcome) string {
	var b strings.Builder
	if o.Correct {
		fmt.Fprintf(&b, "✅ <b>Верно!</b> +%d опыта", o.Reward)
	} else {
		fmt.Fprintf(&b, "❌ <b>Неверно.</b>\nПравильный ответ: <b>%s</b>", esc(o.Expected))
		if !strings.EqualFold(o.Expected, o.Word.Form) {
			fmt.Fprintf(&b, "\nСлово: <b>%s</b>", esc(o.Word.Form))
		}
	}
	if o.LevelUp {
		fmt.Fprintf(&b, "\n\n🎉 Новый уровень %d: <b>%s</b>!", o.Level, esc(leveling.LevelName(o.Level)))
	}
	return b.String()
}

func renderSummary(s *training.Summary) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Тренировка завершена!</b>\n\n")
	if s.Answered == 0 {
		b.WriteString("Вы не ответили ни на одно слово.")
		return b.String()
	}

	fmt.Fprintf(&b, "📝 Отвечено: %d из %d\n", s.Answered, s.Total)
	fmt.Fprintf(&b, "✅ Верно: %d\n", s.Correct)
	fmt.Fprintf(&b, "❌ Ошибок: %d\n", s.Incorrect)
	fmt.Fprintf(&b, "🎯 Точность: %.0f%%\n", s.Accuracy())
	fmt.Fprintf(&b, "🔥 Серия: %d %s", s.Streak, plural(s.Streak, "день", "дня", "дней"))
	if s.NewRecord {
		b.WriteString(" (новый рекорд!)")
	}

	if len(s.Mistakes) > 0 {
		b.WriteString("\n\n<b>Слова с ошибками:</b>\n")
		for i, w := range s.Mistakes {
			if i == maxListedMistakes {
				fmt.Fprintf(&b, "…и ещё %d\n", len(s.Mistakes)-i)
				break
			}
			fmt.Fprintf(&b, "• %s\n", esc(w.Form))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStatistics(p *training.Profile, st *models.Statistics, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Статистика %s</b>\n\n", periodTitle(days))

	fmt.Fprintf(&b, "🏅 Уровень %d: %s\n", p.User.Level, esc(p.LevelName))
	if p.LevelSpan > 0 {
		fmt.Fprintf(&b, "⭐ Опыт: %d (%d/%d до следующего уровня)\n", p.User.Experience, p.LevelExperience, p.LevelSpan)
	} else {
		fmt.Fprintf(&b, "⭐ Опыт: %d (максимальный уровень)\n", p.User.Experience)
	}
	fmt.Fprintf(&b, "🔥 Серия: %d, рекорд: %d\n\n", p.User.CurrentStreak, p.User.BestStreak)

	fmt.Fprintf(&b, "🏋️ Тренировок: %d\n", st.CompletedSessions)
	fmt.Fprintf(&b, "📝 Слов отвечено: %d\n", st.WordsAnswered)
	fmt.Fprintf(&b, "✅ Верных ответов: %d\n", st.CorrectAnswers)
	fmt.Fprintf(&b, "🎯 Точность: %.1f%%\n\n", st.Accuracy())

	fmt.Fprintf(&b, "📚 На изучении: %d\n", st.InLearning)
	fmt.Fprintf(&b, "🏆 Выучено: %d\n", st.Mastered)
	fmt.Fprintf(&b, "⏰ К повторению: %d", st.DueNow)
	return b.String()
}

func renderDictionary(entries []database.DictionaryEntry) string {
	if len(entries) == 0 {
		return "📖 Ваш словарь пока пуст. Начните тренировку, чтобы добавить слова!"
	}

	var learning, mastered []database.DictionaryEntry
	due := 0
	for _, e := range entries {
		if e.Mastered {
			mastered = append(mastered, e)
			continue
		}
		learning = append(learning, e)
		if e.Due {
			due++
		}
	}

	var b strings.Builder
	b.WriteString("📖 <b>Мой словарь</b>\n\n")
	fmt.Fprintf(&b, "📚 На изучении: %d\n🏆 Выучено: %d\n⏰ К повторению сейчас: %d\n", len(learning), len(mastered), due)

	if len(learning) > 0 {
		b.WriteString("\n<b>На изучении:</b>\n")
		for i, e := range learning {
			if i == maxListedWords {
				fmt.Fprintf(&b, "…и ещё %d\n", len(learning)-i)
				break
			}
			mark := ""
			if e.Due {
				mark = " ⏰"
			}
			fmt.Fprintf(&b, "• %s (✅ %d / ❌ %d)%s\n", esc(e.Form), e.CorrectCount, e.MistakeCount, mark)
		}
	}
	if len(mastered) > 0 {
		b.WriteString("\n<b>Выучено:</b>\n")
		for i, e := range mastered {
			if i == maxListedWords {
				fmt.Fprintf(&b, "…и ещё %d\n", len(mastered)-i)
				break
			}
			fmt.Fprintf(&b, "• %s\n", esc(e.Form))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLeaderboard(users []models.User, me int64) string {
	if len(users) == 0 {
		return "🏆 Рейтинг пока пуст."
	}
	medals := []string{"🥇", "🥈", "🥉"}

	var b strings.Builder
	b.WriteString("🏆 <b>Рейтинг учеников</b>\n\n")
	for i, u := range users {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		fmt.Fprintf(&b, "%s %s: ур. %d (%s), %d опыта", place, esc(u.DisplayName()), u.Level, esc(leveling.LevelName(u.Level)), u.Experience)
		if u.ID == me {
			b.WriteString(" ← вы")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSettings(u *models.User) string {
	state := "выключены 🔕"
	if u.NotificationsEnabled {
		state = "включены 🔔"
	}
	return fmt.Sprintf("⚙️ <b>Настройки</b>\n\nНапоминания о повторении: %s", state)
}

func renderReminder(r database.DueReminder) string {
	var b strings.Builder
	b.WriteString("⏰ <b>Пора повторить слова!</b>\n\n")
	fmt.Fprintf(&b, "У вас %s для повторения", wordsCount(r.DueCount))
	if len(r.Words) > 0 {
		b.WriteString(":\n")
		for _, w := range r.Words {
			fmt.Fprintf(&b, "• %s\n", esc(w))
		}
		if extra := r.DueCount - len(r.Words); extra > 0 {
			fmt.Fprintf(&b, "…и ещё %d", extra)
		}
	} else {
		b.WriteString(".")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderOverview(o *content.Overview) string {
	var b strings.Builder
	b.WriteString("📊 <b>Статистика бота</b>\n\n")
	fmt.Fprintf(&b, "👥 Пользователей: %d\n📚 Слов: %d\n🏋️ Тренировок: %d\n\n", o.Users, o.Words, o.Sessions)
	b.WriteString("<b>По категориям:</b>\n")
	for _, c := range models.Categories {
		fmt.Fprintf(&b, "%s: %d\n", esc(categoryLabel(c)), o.ByCategory[c])
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderWordList(category models.Category, words []models.Word) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>%s</b> (%d)\n\n", esc(categoryLabel(category)), len(words))
	if len(words) == 0 {
		b.WriteString("Слов пока нет.")
		return b.String()
	}
	for i, w := range words {
		if i == maxListedWords {
			fmt.Fprintf(&b, "…и ещё %d", len(words)-i)
			break
		}
		fmt.Fprintf(&b, "• <b>%s</b>: <code>%s</code>, сложность %d\n", esc(w.Form), esc(w.Pattern), w.Difficulty)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderImportResult(r *excel.ImportResult) string {
	var b strings.Builder
	b.WriteString("✅ <b>Импорт завершён</b>\n\n")
	fmt.Fprintf(&b, "Обработано строк: %d\nДобавлено: %d\nУже были в базе: %d\n", r.TotalProcessed, r.Created, r.Skipped)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n❌ Ошибки (%d):\n", len(r.Errors))
		for i, e := range r.Errors {
			if i == maxListedErrors {
				fmt.Fprintf(&b, "…и ещё %d\n", len(r.Errors)-i)
				break
			}
			fmt.Fprintf(&b, "• %s\n", esc(e))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// patternExample shows how a pattern of the category is written
func patternExample(c models.Category) string {
	switch c {
	case models.CategorySpelling:
		return "(по)хорошему"
	case models.CategoryStress:
		return "зв(о)н(и)т"
	case models.CategoryNeParticle:
		return "(не)большой"
	}
	return "р_списаться"
}

func problemText(p content.Problem, w models.Word) string {
	switch p {
	case content.ProblemWordFormat:
		return "❌ Слово должно содержать только буквы, дефисы или пробелы и быть длиной минимум 2 символа."
	case content.ProblemDefinitionShort:
		return "❌ Определение должно содержать минимум 5 символов."
	case content.ProblemExplanationShort:
		return "❌ Пояснение должно содержать минимум 3 символа."
	case content.ProblemPatternBlanks:
		return "❌ В шаблоне должен быть хотя бы один пропуск '_'."
	case content.ProblemPatternBrackets:
		switch w.Category {
		case models.CategoryStress:
			return "❌ Заключите в скобки гласные, на которые может падать ударение, например: " + patternExample(w.Category)
		case models.CategoryNeParticle:
			return "❌ Заключите частицу в скобки, например: " + patternExample(w.Category)
		}
		return "❌ Заключите в скобки часть, которая пишется слитно, раздельно или через дефис, например: " + patternExample(w.Category)
	case content.ProblemHiddenLetters:
		n := strings.Count(w.Pattern, string(puzzle.Blank))
		return fmt.Sprintf("❌ Количество букв должно совпадать с количеством пропусков (%d).", n)
	case content.ProblemDifficulty:
		return "❌ Уровень сложности должен быть от 1 до 5. Введите число от 1 до 5."
	}
	return "❌ Используйте кнопки или отправьте текст, как указано выше."
}

func promptText(e content.Effect) string {
	switch e.Prompt {
	case content.StepWord:
		return "➕ <b>Добавление слова</b>\n\nВведите слово в правильном написании. Ударную гласную в категории «Ударения» пишите заглавной: звонИт."
	case content.StepDefinition:
		return fmt.Sprintf("Слово: <b>%s</b>\n\nВведите определение (минимум 5 символов).", esc(e.Word.Form))
	case content.StepCategory:
		return "Выберите категорию:"
	case content.StepExplanationChoice:
		return "Добавить пояснение? Оно показывается рядом с заданием, например для пар компания/кампания."
	case content.StepExplanation:
		return "Введите пояснение (минимум 3 символа)."
	case content.StepPattern:
		desc, _ := puzzle.Describe(e.Word.Category)
		if desc.Style == puzzle.StyleBlank {
			return fmt.Sprintf("Введите шаблон с пропусками '_', например: <code>%s</code>", esc(patternExample(e.Word.Category)))
		}
		return fmt.Sprintf("Введите шаблон со скобками, например: <code>%s</code>", esc(patternExample(e.Word.Category)))
	case content.StepHiddenLetters:
		text := fmt.Sprintf("Шаблон: <code>%s</code>\n\nВведите пропущенные буквы по порядку.", esc(e.Word.Pattern))
		if e.Suggestion != "" {
			text += fmt.Sprintf(" Судя по слову, это <b>%s</b>.", esc(e.Suggestion))
		}
		return text
	case content.StepDifficulty:
		return "Введите уровень сложности от 1 до 5."
	case content.StepDeleteWord:
		return "🗑️ Введите слово, которое нужно удалить."
	}
	return ""
}

func renderSavedWord(w models.Word) string {
	var b strings.Builder
	b.WriteString("✅ <b>Слово добавлено</b>\n\n")
	fmt.Fprintf(&b, "Слово: <b>%s</b>\n", esc(w.Form))
	fmt.Fprintf(&b, "Категория: %s\n", esc(categoryLabel(w.Category)))
	fmt.Fprintf(&b, "Шаблон: <code>%s</code>\n", esc(w.Pattern))
	if w.HiddenLetters != "" {
		fmt.Fprintf(&b, "Буквы: %s\n", esc(w.HiddenLetters))
	}
	fmt.Fprintf(&b, "Сложность: %d", w.Difficulty)
	return b.String()
}
