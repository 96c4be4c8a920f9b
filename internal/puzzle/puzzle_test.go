package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orfobot/pkg/models"
)

func TestGenerateBlank(t *testing.T) {
	w := models.Word{Form: "домой", Category: models.CategoryRoots, Pattern: "д_мой", HiddenLetters: "о", Difficulty: 1}

	p, err := Generate(w)
	require.NoError(t, err)

	assert.Equal(t, StyleBlank, p.Style)
	assert.Equal(t, "д_мой", p.Challenge)
	assert.Equal(t, "о", p.Expected)
	assert.Empty(t, p.Options)
	assert.True(t, Check(w.Category, p.Expected, " О "))
}

func TestGenerateStress(t *testing.T) {
	w := models.Word{Form: "нефтепровОд", Category: models.CategoryStress, Pattern: "нефтепр(о)в(о)д", Difficulty: 3}

	p, err := Generate(w)
	require.NoError(t, err)

	assert.Equal(t, "нефтепровод", p.Challenge)
	assert.ElementsMatch(t, []string{"нефтепрОвод", "нефтепровОд"}, p.Options)
	assert.True(t, Check(w.Category, p.Expected, "нефтепровОд"))
	assert.False(t, Check(w.Category, p.Expected, "нефтепровод"))
	assert.False(t, Check(w.Category, p.Expected, "нефтепрОвод"))
}

func TestGenerateSpelling(t *testing.T) {
	w := models.Word{Form: "по-хорошему", Category: models.CategorySpelling, Pattern: "(по)хорошему", Difficulty: 2}

	p, err := Generate(w)
	require.NoError(t, err)

	assert.Equal(t, "(по)хорошему", p.Challenge)
	assert.ElementsMatch(t, []string{"по-хорошему", "похорошему", "по хорошему"}, p.Options)
	assert.Equal(t, "по-хорошему", p.Expected)
}

func TestSpellingSegmentInTheMiddle(t *testing.T) {
	w := models.Word{Form: "кто-то", Category: models.CategorySpelling, Pattern: "кто(то)"}

	assert.ElementsMatch(t, []string{"кто-то", "ктото", "кто то"}, spellingOptions(w))
}

func TestSpellingPadsWithDecoys(t *testing.T) {
	options := spellingOptions(models.Word{Form: "AB", Category: models.CategorySpelling, Pattern: "(a)b"})
	assert.Equal(t, []string{"AB", "a b", "a-b"}, options)

	options = spellingOptions(models.Word{Form: "x", Category: models.CategorySpelling, Pattern: "(x)"})
	assert.Equal(t, []string{"x", "x (вариант 1)", "x (вариант 2)"}, options)
}

func TestGenerateNeParticle(t *testing.T) {
	w := models.Word{Form: "некрасивый", Category: models.CategoryNeParticle, Pattern: "(не)красивый", Difficulty: 1}

	p, err := Generate(w)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"некрасивый", "не красивый"}, p.Options)
	assert.True(t, Check(w.Category, p.Expected, "НЕКРАСИВЫЙ"))
	assert.False(t, Check(w.Category, p.Expected, "не красивый"))
}

func TestExpectedAppearsExactlyOnce(t *testing.T) {
	words := []models.Word{
		{Form: "нефтепровОд", Category: models.CategoryStress, Pattern: "нефтепр(о)в(о)д"},
		{Form: "по-хорошему", Category: models.CategorySpelling, Pattern: "(по)хорошему"},
		{Form: "некрасивый", Category: models.CategoryNeParticle, Pattern: "(не)красивый"},
		// Stored form outside the generated options is appended
		{Form: "тОрты", Category: models.CategoryStress, Pattern: "торт(ы)"},
		{Form: "не спеша", Category: models.CategoryNeParticle, Pattern: "спеша"},
	}

	for _, w := range words {
		for i := 0; i < 5; i++ {
			p, err := Generate(w)
			require.NoError(t, err)

			matches := 0
			for _, opt := range p.Options {
				if Check(w.Category, p.Expected, opt) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "word %q options %v", w.Form, p.Options)
			assert.Equal(t, w.Form, p.Expected)
		}
	}
}

func TestGenerateUnknownCategory(t *testing.T) {
	_, err := Generate(models.Word{Form: "x", Category: "verbs", Pattern: "x"})
	assert.ErrorIs(t, err, ErrInvalidWord)
}

func TestCheckTrimsAndFolds(t *testing.T) {
	assert.True(t, Check(models.CategorySuffix, "нн", "  НН\n"))
	assert.False(t, Check(models.CategorySuffix, "нн", "н"))
	assert.True(t, Check(models.CategoryStress, "тОрты", " тОрты "))
	assert.False(t, Check(models.CategoryStress, "тОрты", "ТОРТЫ"))
}

func TestValidate(t *testing.T) {
	valid := []models.Word{
		{Form: "домой", Category: models.CategoryRoots, Pattern: "д_мой", HiddenLetters: "о", Difficulty: 1},
		{Form: "деревянный", Category: models.CategoryDoubleN, Pattern: "деревя__ый", HiddenLetters: "нн", Difficulty: 2},
		// Lengths differ, only the counts are checked
		{Form: "расписаться (в журнале)", Category: models.CategoryPrefixes, Pattern: "р_списаться", HiddenLetters: "а", Difficulty: 2},
		{Form: "по-хорошему", Category: models.CategorySpelling, Pattern: "(по)хорошему", Difficulty: 2},
		{Form: "нефтепровОд", Category: models.CategoryStress, Pattern: "нефтепр(о)в(о)д", Difficulty: 3},
		{Form: "некрасивый", Category: models.CategoryNeParticle, Pattern: "(не)красивый", Difficulty: 1},
	}
	for _, w := range valid {
		assert.NoError(t, Validate(w), w.Form)
	}

	invalid := map[string]models.Word{
		"unknown category":   {Form: "дом", Category: "verbs", Pattern: "д_м", HiddenLetters: "о", Difficulty: 1},
		"no blanks":          {Form: "дом", Category: models.CategoryRoots, Pattern: "дом", HiddenLetters: "о", Difficulty: 1},
		"count mismatch":     {Form: "дом", Category: models.CategoryRoots, Pattern: "д_м", HiddenLetters: "оо", Difficulty: 1},
		"wrong letter":       {Form: "дом", Category: models.CategoryRoots, Pattern: "д_м", HiddenLetters: "а", Difficulty: 1},
		"difficulty":         {Form: "дом", Category: models.CategoryRoots, Pattern: "д_м", HiddenLetters: "о", Difficulty: 6},
		"empty form":         {Form: " ", Category: models.CategoryRoots, Pattern: "д_м", HiddenLetters: "о", Difficulty: 1},
		"spelling brackets":  {Form: "похорошему", Category: models.CategorySpelling, Pattern: "похорошему", Difficulty: 1},
		"stress two letters": {Form: "тОрты", Category: models.CategoryStress, Pattern: "т(ор)ты", Difficulty: 1},
		"stress not option":  {Form: "тортЫ", Category: models.CategoryStress, Pattern: "т(о)рты", Difficulty: 1},
		"ne missing":         {Form: "некрасивый", Category: models.CategoryNeParticle, Pattern: "красивый", Difficulty: 1},
	}
	for name, w := range invalid {
		assert.ErrorIs(t, Validate(w), ErrInvalidWord, name)
	}
}
