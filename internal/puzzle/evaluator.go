package puzzle

import (
	"strings"

	"github.com/example/orfobot/pkg/models"
)

// Check reports whether answer matches expected for the category.
// Both sides are trimmed; only stress placement is compared case-sensitively.
func Check(c models.Category, expected, answer string) bool {
	expected = strings.TrimSpace(expected)
	answer = strings.TrimSpace(answer)

	if d, ok := Describe(c); ok && d.CaseSensitive {
		return expected == answer
	}
	return strings.EqualFold(expected, answer)
}
