package puzzle

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/example/orfobot/pkg/models"
)

// ErrInvalidWord is returned for words whose pattern cannot produce a puzzle
var ErrInvalidWord = errors.New("invalid word")

const spellingOptionCount = 3

// Puzzle is a challenge built from one word
type Puzzle struct {
	Category  models.Category
	Style     Style
	Challenge string
	Expected  string
	Options   []string // Only for StyleChoice, in presentation order
}

// Generate builds a puzzle for a word. Choice options are shuffled on every call;
// exactly one of them matches the expected answer.
func Generate(w models.Word) (Puzzle, error) {
	d, ok := Describe(w.Category)
	if !ok {
		return Puzzle{}, fmt.Errorf("%w: unknown category %q", ErrInvalidWord, w.Category)
	}

	p := Puzzle{
		Category:  w.Category,
		Style:     d.Style,
		Challenge: d.challenge(w),
	}

	if d.Style == StyleBlank {
		p.Expected = w.HiddenLetters
		return p, nil
	}

	p.Expected = w.Form
	p.Options = ensureExpected(w.Category, d.options(w), p.Expected)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(p.Options), func(i, j int) {
		p.Options[i], p.Options[j] = p.Options[j], p.Options[i]
	})
	return p, nil
}

// ensureExpected keeps exactly one option equal to expected, appending it when absent
func ensureExpected(c models.Category, options []string, expected string) []string {
	out := make([]string, 0, len(options)+1)
	found := false
	for _, opt := range options {
		if Check(c, expected, opt) {
			if found {
				continue
			}
			found = true
		}
		out = append(out, opt)
	}
	if !found {
		out = append(out, expected)
	}
	return out
}

// firstBracket splits a pattern around its first "(...)" segment
func firstBracket(pattern string) (left, inner, right string, ok bool) {
	open := strings.IndexRune(pattern, '(')
	if open < 0 {
		return "", "", "", false
	}
	closing := strings.IndexRune(pattern[open:], ')')
	if closing < 0 {
		return "", "", "", false
	}
	closing += open
	return pattern[:open], pattern[open+1 : closing], pattern[closing+1:], true
}

// joinParts glues non-empty parts with sep
func joinParts(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// spellingOptions renders the bracketed segment fused, separate and hyphenated
func spellingOptions(w models.Word) []string {
	left, inner, right, ok := firstBracket(w.Pattern)
	if !ok || inner == "" {
		return []string{w.Form}
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)

	separate := joinParts(" ", left, inner, right)
	candidates := []string{
		w.Form,
		joinParts("", left, inner, right),
		separate,
		joinParts("-", left, inner, right),
	}

	var options []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, c)
		if len(options) == spellingOptionCount {
			break
		}
	}
	for n := len(options); n < spellingOptionCount; n++ {
		options = append(options, fmt.Sprintf("%s (вариант %d)", separate, n))
	}
	return options
}

// stressChallenge strips bracket markers and lower-cases the pattern
func stressChallenge(w models.Word) string {
	return strings.ToLower(strings.NewReplacer("(", "", ")", "").Replace(w.Pattern))
}

// stressOptions upper-cases each bracketed letter in turn
func stressOptions(w models.Word) []string {
	base := []rune(stressChallenge(w))
	var options []string
	seen := make(map[string]bool)

	pos := 0
	runes := []rune(w.Pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '(':
			// bracket markers do not occupy a position in the base word
		case ')':
		default:
			if i > 0 && runes[i-1] == '(' && pos < len(base) {
				variant := make([]rune, len(base))
				copy(variant, base)
				variant[pos] = unicode.ToUpper(variant[pos])
				if s := string(variant); !seen[s] {
					seen[s] = true
					options = append(options, s)
				}
			}
			pos++
		}
	}
	return options
}

// neParticleOptions offers the particle fused with and separate from the base word
func neParticleOptions(w models.Word) []string {
	lower := strings.ToLower(w.Pattern)
	idx := strings.Index(lower, "(не)")
	if idx < 0 {
		return []string{w.Form}
	}
	base := strings.TrimSpace(w.Pattern[idx+len("(не)"):])
	return []string{"не" + base, "не " + base}
}
