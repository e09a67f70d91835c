package app

import (
	"context"

	"local-quiz/internal/domain"
)

// SessionState is a step of the per-question confirmation protocol.
type SessionState int

const (
	// StateAwaitingSelection: no option picked for the current question.
	StateAwaitingSelection SessionState = iota
	// StateAnswerSelected: an option is picked but not confirmed.
	StateAnswerSelected
	// StateResultShown: the answer is confirmed and locked.
	StateResultShown
	// StateFinished: the last result was acknowledged and the score persisted.
	StateFinished
	// StateNoContent: the session was started over an empty question set.
	StateNoContent
	// StateAbandoned: the player left before finishing; nothing was persisted.
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateAnswerSelected:
		return "answer_selected"
	case StateResultShown:
		return "result_shown"
	case StateFinished:
		return "finished"
	case StateNoContent:
		return "no_content"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// ScoreWriter persists a player's cumulative totals when a session finishes.
type ScoreWriter interface {
	UpdateUserScore(ctx context.Context, name string, score, questionsAnswered int) []domain.User
}

// AnswerResult is the outcome of a confirmed answer.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Selected      int    `json:"selected"`
	CorrectAnswer int    `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// Session drives one playthrough over a fixed snapshot of questions.
// It is not safe for concurrent use; callers serialize player actions.
type Session struct {
	scores    ScoreWriter
	player    string
	prior     int
	priorSeen int
	questions []domain.Question

	index         int
	selected      int
	last          AnswerResult
	sessionScore  int
	totalAnswered int
	state         SessionState
}

// NewSession starts a playthrough for player. The player's score and answered
// count are snapshotted here and never re-read during the session.
func NewSession(scores ScoreWriter, player domain.User, questions []domain.Question) *Session {
	snapshot := make([]domain.Question, len(questions))
	copy(snapshot, questions)

	s := &Session{
		scores:    scores,
		player:    player.Name,
		prior:     player.Score,
		priorSeen: player.QuestionsAnswered,
		questions: snapshot,
		selected:  domain.NoAnswer,
		state:     StateAwaitingSelection,
	}
	if len(snapshot) == 0 {
		s.state = StateNoContent
	}
	return s
}

func (s *Session) State() SessionState { return s.state }

func (s *Session) Player() string { return s.player }

// Len is the number of questions in this playthrough.
func (s *Session) Len() int { return len(s.questions) }

// Index is the cursor into the question sequence.
func (s *Session) Index() int { return s.index }

// IsActive reports whether the session still accepts player actions.
func (s *Session) IsActive() bool {
	switch s.state {
	case StateAwaitingSelection, StateAnswerSelected, StateResultShown:
		return true
	}
	return false
}

// Current returns the question under the cursor.
func (s *Session) Current() (domain.Question, bool) {
	if !s.IsActive() {
		return domain.Question{}, false
	}
	return s.questions[s.index], true
}

// Selected returns the tentative or confirmed choice for the current question.
func (s *Session) Selected() (int, bool) {
	if s.selected == domain.NoAnswer {
		return domain.NoAnswer, false
	}
	return s.selected, true
}

// LastResult returns the most recent confirmed answer.
func (s *Session) LastResult() (AnswerResult, bool) {
	if s.totalAnswered == 0 {
		return AnswerResult{}, false
	}
	return s.last, true
}

func (s *Session) SessionScore() int { return s.sessionScore }

func (s *Session) TotalAnswered() int { return s.totalAnswered }

// DisplayScore is the cumulative score so far: the snapshot plus this session.
func (s *Session) DisplayScore() int { return s.prior + s.sessionScore }

// SelectAnswer picks an option tentatively. It is ignored once the answer is
// confirmed and for indexes outside the option range.
func (s *Session) SelectAnswer(index int) bool {
	if s.state != StateAwaitingSelection && s.state != StateAnswerSelected {
		return false
	}
	if index < 0 || index >= domain.OptionCount {
		return false
	}
	s.selected = index
	s.state = StateAnswerSelected
	return true
}

// ConfirmAnswer locks the tentative choice and scores it. Without a choice it
// does nothing.
func (s *Session) ConfirmAnswer() (AnswerResult, bool) {
	if s.state != StateAnswerSelected {
		return AnswerResult{}, false
	}

	q := s.questions[s.index]
	correct := q.IsCorrect(s.selected)
	if correct {
		s.sessionScore++
	}
	s.totalAnswered++
	s.last = AnswerResult{
		QuestionID:    q.ID,
		Selected:      s.selected,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       correct,
	}
	s.state = StateResultShown
	return s.last, true
}

// Advance moves past a shown result. After the last question it persists the
// final totals exactly once and finishes the session. The persisted
// questionsAnswered is cumulative: the count at session start plus this session's.
func (s *Session) Advance(ctx context.Context) bool {
	if s.state != StateResultShown {
		return false
	}

	if s.index < len(s.questions)-1 {
		s.index++
		s.selected = domain.NoAnswer
		s.state = StateAwaitingSelection
		return true
	}

	s.state = StateFinished
	s.scores.UpdateUserScore(ctx, s.player, s.DisplayScore(), s.priorSeen+s.totalAnswered)
	return true
}

// Abandon discards an in-progress session without persisting anything.
func (s *Session) Abandon() {
	if s.IsActive() {
		s.state = StateAbandoned
	}
}
