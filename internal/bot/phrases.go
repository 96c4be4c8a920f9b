package bot

import "math/rand"

// supportPhrases cheer the learner on during a training
var supportPhrases = []string{
	"У тебя всё получится 💪",
	"Отличная работа ✅",
	"Вперёд 🚀",
	"Ты справишься 👍",
	"Так держать 🌟",
	"Хороший результат ✔️",
	"Продолжай 💡",
	"Отлично идёшь 📈",
	"Верное решение ✅",
	"Отличный выбор 🌿",
}

func randomSupportPhrase() string {
	return supportPhrases[rand.Intn(len(supportPhrases))]
}

// supportDue reports whether a support phrase follows this answer
func supportDue(correct bool, answered, every int) bool {
	return correct && every > 0 && answered > 0 && answered%every == 0
}
