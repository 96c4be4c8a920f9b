package puzzle

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/orfobot/pkg/models"
)

// Blank marks a hidden letter in a blank-style pattern
const Blank = '_'

// Validate rejects words that cannot produce a well-formed puzzle.
// Errors wrap ErrInvalidWord.
func Validate(w models.Word) error {
	d, ok := Describe(w.Category)
	if !ok {
		return invalid("unknown category %q", w.Category)
	}
	if strings.TrimSpace(w.Form) == "" {
		return invalid("empty word")
	}
	if strings.TrimSpace(w.Pattern) == "" {
		return invalid("empty pattern")
	}
	if w.Difficulty < 1 || w.Difficulty > 5 {
		return invalid("difficulty %d out of range 1-5", w.Difficulty)
	}

	if d.Style == StyleBlank {
		return validateBlank(w)
	}

	switch w.Category {
	case models.CategorySpelling:
		if _, inner, _, ok := firstBracket(w.Pattern); !ok || strings.TrimSpace(inner) == "" {
			return invalid("spelling pattern needs a non-empty (…) segment")
		}
	case models.CategoryStress:
		return validateStress(w)
	case models.CategoryNeParticle:
		if !strings.Contains(strings.ToLower(w.Pattern), "(не)") {
			return invalid("pattern must contain (не)")
		}
	}
	return nil
}

func validateBlank(w models.Word) error {
	blanks := strings.Count(w.Pattern, string(Blank))
	if blanks == 0 {
		return invalid("pattern %q has no blanks", w.Pattern)
	}
	hidden := []rune(w.HiddenLetters)
	if blanks != len(hidden) {
		return invalid("pattern has %d blanks but %d hidden letters", blanks, len(hidden))
	}

	// Letter-by-letter check is only possible when every blank hides exactly one letter of the form
	form, pattern := []rune(w.Form), []rune(w.Pattern)
	if len(form) != len(pattern) {
		return nil
	}
	h := 0
	for i, r := range pattern {
		want := r
		if r == Blank {
			want = hidden[h]
			h++
		}
		if unicode.ToLower(want) != unicode.ToLower(form[i]) {
			return invalid("pattern %q with letters %q does not spell %q", w.Pattern, w.HiddenLetters, w.Form)
		}
	}
	return nil
}

func validateStress(w models.Word) error {
	rest := w.Pattern
	found := 0
	for {
		_, inner, right, ok := firstBracket(rest)
		if !ok {
			break
		}
		if utf8.RuneCountInString(inner) != 1 || !unicode.IsLetter([]rune(inner)[0]) {
			return invalid("stress brackets must hold a single letter, got %q", inner)
		}
		found++
		rest = right
	}
	if found == 0 {
		return invalid("stress pattern %q marks no letters", w.Pattern)
	}

	for _, opt := range stressOptions(w) {
		if opt == strings.TrimSpace(w.Form) {
			return nil
		}
	}
	return invalid("word %q is not one of the stress options of %q", w.Form, w.Pattern)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidWord, fmt.Sprintf(format, args...))
}
