package models

// Category is the kind of spelling rule a word trains.
type Category string

const (
	CategoryRoots      Category = "roots"
	CategoryPrefixes   Category = "prefixes"
	CategoryEndings    Category = "endings"
	CategorySpelling   Category = "spelling" // fused, separate or hyphenated spelling
	CategoryDoubleN    Category = "n_nn"     // Н and НН
	CategorySuffix     Category = "suffix"
	CategoryStress     Category = "stress"
	CategoryNeParticle Category = "ne_particle"

	// CategoryMixed is not stored on words; it selects every category.
	CategoryMixed Category = "mixed"
)

// Categories lists the word categories in menu order.
var Categories = []Category{
	CategoryRoots,
	CategoryPrefixes,
	CategoryEndings,
	CategorySpelling,
	CategoryDoubleN,
	CategorySuffix,
	CategoryStress,
	CategoryNeParticle,
}

var categoryTitles = map[Category]string{
	CategoryRoots:      "Корни",
	CategoryPrefixes:   "Приставки",
	CategoryEndings:    "Окончания",
	CategorySpelling:   "Слитное, раздельное, дефисное написание",
	CategoryDoubleN:    "Н и НН",
	CategorySuffix:     "Суффиксы",
	CategoryStress:     "Ударения",
	CategoryNeParticle: "Частица НЕ",
	CategoryMixed:      "Смешанная тренировка",
}

// Valid reports whether c is a storable word category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Title returns the Russian display name of the category.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}
