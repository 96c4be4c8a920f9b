package models

// Statistics summarizes a user's dictionary and completed sessions
type Statistics struct {
	InLearning        int `json:"in_learning" db:"in_learning"`
	Mastered          int `json:"mastered" db:"mastered"`
	DueNow            int `json:"due_now" db:"due_now"`
	CompletedSessions int `json:"completed_sessions" db:"completed_sessions"`
	WordsAnswered     int `json:"words_answered" db:"words_answered"`
	CorrectAnswers    int `json:"correct_answers" db:"correct_answers"`
}

// Accuracy returns the share of correct answers in percent.
func (s Statistics) Accuracy() float64 {
	if s.WordsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.WordsAnswered) * 100
}
