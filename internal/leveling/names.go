package leveling

import "fmt"

var levelNames = [MaxLevel]string{
	"Новичок", "Ученик", "Знаток", "Эксперт", "Мастер",
	"Гуру", "Легенда", "Чемпион", "Герой", "Титан",
	"Божество", "Абсолют", "Космос", "Вселенная", "Бесконечность",
	"Вечность", "Совершенство", "Идеал", "Недостижимый", "Невозможный",
	"Фантастический", "Мифический", "Легендарный", "Эпический", "Величайший",
}

// LevelName returns the title of a level
func LevelName(level int) string {
	if level >= 1 && level <= MaxLevel {
		return levelNames[level-1]
	}
	return fmt.Sprintf("Уровень %d", level)
}
