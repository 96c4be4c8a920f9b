// Package puzzle builds challenges from stored words and judges answers to them.
package puzzle

import "github.com/example/orfobot/pkg/models"

// Style says how a learner answers a puzzle
type Style int

const (
	// StyleBlank puzzles are answered by typing the hidden letters
	StyleBlank Style = iota
	// StyleChoice puzzles are answered by picking one of the options
	StyleChoice
)

// Descriptor captures everything category-specific about puzzles
type Descriptor struct {
	Category      models.Category
	Icon          string
	Prompt        string
	Style         Style
	CaseSensitive bool // Stressed letter is marked by case

	challenge func(models.Word) string
	options   func(models.Word) []string
}

// Title returns the display name of the category.
func (d Descriptor) Title() string {
	return d.Category.Title()
}

var descriptors = map[models.Category]Descriptor{
	models.CategoryRoots:    blank(models.CategoryRoots, "🌿"),
	models.CategoryPrefixes: blank(models.CategoryPrefixes, "🔤"),
	models.CategoryEndings:  blank(models.CategoryEndings, "🔚"),
	models.CategoryDoubleN:  blank(models.CategoryDoubleN, "📝"),
	models.CategorySuffix:   blank(models.CategorySuffix, "🔠"),
	models.CategorySpelling: {
		Category:  models.CategorySpelling,
		Icon:      "✍️",
		Prompt:    "Как правильно?",
		Style:     StyleChoice,
		challenge: patternChallenge,
		options:   spellingOptions,
	},
	models.CategoryStress: {
		Category:      models.CategoryStress,
		Icon:          "🎵",
		Prompt:        "Где ударение?",
		Style:         StyleChoice,
		CaseSensitive: true,
		challenge:     stressChallenge,
		options:       stressOptions,
	},
	models.CategoryNeParticle: {
		Category:  models.CategoryNeParticle,
		Icon:      "🚫",
		Prompt:    "Как правильно?",
		Style:     StyleChoice,
		challenge: patternChallenge,
		options:   neParticleOptions,
	},
}

func blank(c models.Category, icon string) Descriptor {
	return Descriptor{
		Category:  c,
		Icon:      icon,
		Prompt:    "Вставьте пропущенные буквы",
		Style:     StyleBlank,
		challenge: patternChallenge,
	}
}

// Describe returns the descriptor of a stored word category
func Describe(c models.Category) (Descriptor, bool) {
	d, ok := descriptors[c]
	return d, ok
}

// Icon returns the menu icon of a category, including the mixed pseudo-category
func Icon(c models.Category) string {
	if c == models.CategoryMixed {
		return "🌈"
	}
	if d, ok := descriptors[c]; ok {
		return d.Icon
	}
	return "📚"
}

func patternChallenge(w models.Word) string {
	return w.Pattern
}
