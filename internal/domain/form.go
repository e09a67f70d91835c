package domain

import (
	"fmt"
	"strings"
)

// NoAnswer marks a form whose correct option has not been chosen yet.
const NoAnswer = -1

// QuestionForm is the admin input for creating or editing a question.
// Options are addressed by index 0..OptionCount-1.
type QuestionForm struct {
	Question      string
	Options       [OptionCount]string
	CorrectAnswer int
}

// NewQuestionForm returns an empty form with no correct answer chosen.
func NewQuestionForm() QuestionForm {
	return QuestionForm{CorrectAnswer: NoAnswer}
}

// FormFromQuestion prefills a form for editing q.
func FormFromQuestion(q Question) QuestionForm {
	return QuestionForm{
		Question:      q.Question,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
	}
}

// SetOption sets option i; out-of-range indexes are ignored.
func (f *QuestionForm) SetOption(i int, text string) {
	if i < 0 || i >= OptionCount {
		return
	}
	f.Options[i] = text
}

// Validate rejects the form as a unit; nothing partial is ever built from it.
func (f QuestionForm) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return ErrEmptyPrompt
	}
	for i, option := range f.Options {
		if strings.TrimSpace(option) == "" {
			return optionError(i)
		}
	}
	if f.CorrectAnswer < 0 || f.CorrectAnswer >= OptionCount {
		return ErrCorrectAnswerRequired
	}
	return nil
}

// Build validates the form and returns a trimmed Question.
func (f QuestionForm) Build(id, createdAt string) (Question, error) {
	if err := f.Validate(); err != nil {
		return Question{}, err
	}
	q := Question{
		ID:            id,
		Question:      strings.TrimSpace(f.Question),
		CorrectAnswer: f.CorrectAnswer,
		CreatedAt:     createdAt,
	}
	for i, option := range f.Options {
		q.Options[i] = strings.TrimSpace(option)
	}
	return q, nil
}

func optionError(i int) error {
	return fmt.Errorf("option %d: %w", i+1, ErrEmptyOption)
}
