package domain

import "errors"

var (
	// ErrEmptyPrompt is returned when a question form has no prompt text.
	ErrEmptyPrompt = errors.New("question prompt is required")
	// ErrEmptyOption is returned when one of the four options is blank.
	ErrEmptyOption = errors.New("option text is required")
	// ErrCorrectAnswerRequired indicates no valid correct option was chosen.
	ErrCorrectAnswerRequired = errors.New("correct answer must be one of the four options")
	// ErrEmptyName is returned when a player tries to log in without a name.
	ErrEmptyName = errors.New("player name is required")
	// ErrNoQuestions indicates the question bank is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNoActiveSession is returned when a quiz action arrives outside a quiz.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrNotLoggedIn is returned when a menu action arrives before login.
	ErrNotLoggedIn = errors.New("no player logged in")
	// ErrQuestionNotFound indicates an admin action referenced an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")
)
