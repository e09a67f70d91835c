package domain

import (
	"strconv"
	"strings"
	"time"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// TimestampLayout is ISO 8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Question models a multiple-choice question with exactly one correct option.
type Question struct {
	ID            string              `json:"id"`
	Question      string              `json:"question"`
	Options       [OptionCount]string `json:"options"`
	CorrectAnswer int                 `json:"correctAnswer"`
	CreatedAt     string              `json:"createdAt"`
}

// User is a player's cumulative record. Name lookups are case-insensitive.
type User struct {
	Name              string    `json:"name"`
	Score             int       `json:"score"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	LastPlayed        time.Time `json:"lastPlayed"`
}

// Validate checks the structural invariants of a stored question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyPrompt
	}
	for i, option := range q.Options {
		if strings.TrimSpace(option) == "" {
			return optionError(i)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		return ErrCorrectAnswerRequired
	}
	return nil
}

// IsCorrect reports whether choice is the correct option index.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectAnswer
}

// SameName compares player names the way lookups do.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NewQuestionID mints a time-based identifier (decimal Unix milliseconds).
func NewQuestionID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
