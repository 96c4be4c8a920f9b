// Package content manages the word base: the admin entry dialog and validated writes.
package content

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/pkg/models"
)

// Step is the state of the admin dialog
type Step int

const (
	StepIdle Step = iota
	StepWord
	StepDefinition
	StepCategory
	StepExplanationChoice
	StepExplanation
	StepPattern
	StepHiddenLetters
	StepDifficulty
	StepDeleteWord
)

// InputKind tells what the admin did
type InputKind int

const (
	InputText InputKind = iota
	InputStartAdd
	InputStartDelete
	InputCategory
	InputAddExplanation
	InputSkipExplanation
	InputCancel
)

// Input is one admin action fed into the dialog
type Input struct {
	Kind     InputKind
	Text     string
	Category models.Category
}

// EffectKind tells the transport what to do
type EffectKind int

const (
	// EffectPrompt asks for the input of Effect.Prompt
	EffectPrompt EffectKind = iota
	// EffectReject reports Effect.Problem; the step does not change
	EffectReject
	// EffectSave persists Effect.Word
	EffectSave
	// EffectDelete removes the word spelled Effect.Form
	EffectDelete
	// EffectCancelled reports that the dialog was abandoned
	EffectCancelled
)

// Problem is a reason for rejecting input
type Problem int

const (
	ProblemNone Problem = iota
	ProblemWordFormat
	ProblemDefinitionShort
	ProblemExplanationShort
	ProblemPatternBlanks
	ProblemPatternBrackets
	ProblemHiddenLetters
	ProblemDifficulty
	ProblemUnexpected
)

// Effect is an instruction produced by a transition
type Effect struct {
	Kind    EffectKind
	Prompt  Step // For EffectPrompt, the step being prompted
	Problem Problem
	Word    models.Word // Draft so far; complete for EffectSave
	Form    string      // For EffectDelete

	// Suggestion holds hidden letters derived from the word and pattern when the prompt is StepHiddenLetters
	Suggestion string
}

// Draft is the dialog state: the current step and the word collected so far
type Draft struct {
	Step Step
	Word models.Word
}

const (
	minWordLength        = 2
	minDefinitionLength  = 5
	minExplanationLength = 3
)

var wordRe = regexp.MustCompile(`^[а-яёА-ЯЁa-zA-Z\-\s]+$`)

// Transition is the pure transition function of the admin dialog
func Transition(d Draft, in Input) (Draft, []Effect) {
	switch in.Kind {
	case InputCancel:
		if d.Step == StepIdle {
			return d, nil
		}
		return Draft{}, []Effect{{Kind: EffectCancelled}}
	case InputStartAdd:
		return prompt(Draft{Step: StepWord})
	case InputStartDelete:
		return prompt(Draft{Step: StepDeleteWord})
	}

	text := strings.TrimSpace(in.Text)

	switch d.Step {
	case StepWord:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		if utf8.RuneCountInString(text) < minWordLength || !wordRe.MatchString(text) {
			return reject(d, ProblemWordFormat)
		}
		d.Word.Form = text
		d.Step = StepDefinition
		return prompt(d)

	case StepDefinition:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		if utf8.RuneCountInString(text) < minDefinitionLength {
			return reject(d, ProblemDefinitionShort)
		}
		d.Word.Definition = text
		d.Step = StepCategory
		return prompt(d)

	case StepCategory:
		if in.Kind != InputCategory || !in.Category.Valid() {
			return reject(d, ProblemUnexpected)
		}
		d.Word.Category = in.Category
		d.Step = StepExplanationChoice
		return prompt(d)

	case StepExplanationChoice:
		switch in.Kind {
		case InputAddExplanation:
			d.Step = StepExplanation
		case InputSkipExplanation:
			d.Word.Explanation = ""
			d.Step = StepPattern
		default:
			return reject(d, ProblemUnexpected)
		}
		return prompt(d)

	case StepExplanation:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		if utf8.RuneCountInString(text) < minExplanationLength {
			return reject(d, ProblemExplanationShort)
		}
		d.Word.Explanation = text
		d.Step = StepPattern
		return prompt(d)

	case StepPattern:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		pattern := strings.ToLower(text)
		desc, _ := puzzle.Describe(d.Word.Category)
		if desc.Style == puzzle.StyleBlank {
			if !strings.ContainsRune(pattern, puzzle.Blank) {
				return reject(d, ProblemPatternBlanks)
			}
			d.Word.Pattern = pattern
			d.Step = StepHiddenLetters
			return prompt(d)
		}
		if !strings.Contains(pattern, "(") || !strings.Contains(pattern, ")") {
			return reject(d, ProblemPatternBrackets)
		}
		d.Word.Pattern = pattern
		d.Word.HiddenLetters = ""
		d.Step = StepDifficulty
		return prompt(d)

	case StepHiddenLetters:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		letters := strings.ToLower(text)
		if utf8.RuneCountInString(letters) != strings.Count(d.Word.Pattern, string(puzzle.Blank)) {
			return reject(d, ProblemHiddenLetters)
		}
		d.Word.HiddenLetters = letters
		d.Step = StepDifficulty
		return prompt(d)

	case StepDifficulty:
		if in.Kind != InputText {
			return reject(d, ProblemUnexpected)
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > 5 {
			return reject(d, ProblemDifficulty)
		}
		d.Word.Difficulty = n
		return Draft{}, []Effect{{Kind: EffectSave, Word: d.Word}}

	case StepDeleteWord:
		if in.Kind != InputText || text == "" {
			return reject(d, ProblemUnexpected)
		}
		return Draft{}, []Effect{{Kind: EffectDelete, Form: text}}
	}

	return d, nil
}

// SuggestHiddenLetters returns the letters of form under the blanks of pattern.
// It only works when both have the same length, otherwise it returns "".
func SuggestHiddenLetters(form, pattern string) string {
	f, p := []rune(form), []rune(pattern)
	if len(f) != len(p) {
		return ""
	}
	var b strings.Builder
	for i, r := range p {
		if r == puzzle.Blank {
			b.WriteRune(f[i])
		}
	}
	return b.String()
}

func prompt(d Draft) (Draft, []Effect) {
	e := Effect{Kind: EffectPrompt, Prompt: d.Step, Word: d.Word}
	if d.Step == StepHiddenLetters {
		e.Suggestion = SuggestHiddenLetters(d.Word.Form, d.Word.Pattern)
	}
	return d, []Effect{e}
}

func reject(d Draft, p Problem) (Draft, []Effect) {
	return d, []Effect{{Kind: EffectReject, Problem: p, Word: d.Word}}
}
