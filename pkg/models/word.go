package models

import "time"

// Word represents a vocabulary entry with the pattern used to build its puzzle
type Word struct {
	ID            int64     `json:"id" db:"id"`
	Form          string    `json:"form" db:"form"`               // Canonical spelling, stress marked by an upper-case letter
	Definition    string    `json:"definition" db:"definition"`   // Optional hint shown with the puzzle
	Explanation   string    `json:"explanation" db:"explanation"` // Optional disambiguation, e.g. компания/кампания
	Category      Category  `json:"category" db:"category"`
	Difficulty    int       `json:"difficulty" db:"difficulty"`         // 1-5 scale of difficulty
	Pattern       string    `json:"pattern" db:"pattern"`               // "д_мой" or "(по)хорошему"
	HiddenLetters string    `json:"hidden_letters" db:"hidden_letters"` // Letters behind the blanks, left to right
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
