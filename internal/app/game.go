package app

import (
	"context"
	"strings"
	"time"

	"local-quiz/internal/domain"
)

// Screen identifies which part of the game the player is on.
type Screen string

const (
	ScreenLogin Screen = "login"
	ScreenMenu  Screen = "menu"
	ScreenQuiz  Screen = "quiz"
	ScreenAdmin Screen = "admin"
)

// DefaultLeaderboardSize is how many users the menu ranks.
const DefaultLeaderboardSize = 5

// MenuView is what the menu screen shows.
type MenuView struct {
	User          string        `json:"user"`
	Score         int           `json:"score"`
	QuestionCount int           `json:"questionCount"`
	Leaderboard   []domain.User `json:"leaderboard"`
}

// Game is the controller behind one UI: login, menu, admin and quiz screens.
// Front-ends translate input events into Game calls and render its state.
type Game struct {
	repo            *Repository
	leaderboardSize int
	now             func() time.Time

	screen    Screen
	user      string
	score     int
	answered  int
	questions []domain.Question
	session   *Session
}

// NewGame builds a controller and loads the current question bank.
func NewGame(ctx context.Context, repo *Repository, leaderboardSize int) *Game {
	return NewGameWithClock(ctx, repo, leaderboardSize, time.Now)
}

// NewGameWithClock allows deterministic question ids and timestamps in tests.
func NewGameWithClock(ctx context.Context, repo *Repository, leaderboardSize int, now func() time.Time) *Game {
	if leaderboardSize <= 0 {
		leaderboardSize = DefaultLeaderboardSize
	}
	return &Game{
		repo:            repo,
		leaderboardSize: leaderboardSize,
		now:             now,
		screen:          ScreenLogin,
		questions:       repo.ListQuestions(ctx),
	}
}

func (g *Game) Screen() Screen { return g.screen }

func (g *Game) User() string { return g.user }

// Score is the player's cumulative score as known to this UI.
func (g *Game) Score() int { return g.score }

// Session returns the quiz in progress, if any.
func (g *Game) Session() (*Session, bool) {
	if g.session == nil {
		return nil, false
	}
	return g.session, true
}

// Questions returns the bank as last loaded or mutated through this game.
func (g *Game) Questions() []domain.Question {
	out := make([]domain.Question, len(g.questions))
	copy(out, g.questions)
	return out
}

// Login identifies the player by name. New names start at zero and get no
// user record until their first quiz is finished.
func (g *Game) Login(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	g.user = name
	g.score = 0
	g.answered = 0
	if user, ok := g.repo.GetUser(ctx, name); ok {
		g.score = user.Score
		g.answered = user.QuestionsAnswered
	}
	g.screen = ScreenMenu
	return nil
}

// Logout drops the player and any quiz in progress.
func (g *Game) Logout() {
	g.abandon()
	g.user = ""
	g.score = 0
	g.answered = 0
	g.screen = ScreenLogin
}

// Menu returns the menu data, including the leaderboard.
func (g *Game) Menu(ctx context.Context) (MenuView, error) {
	if g.user == "" {
		return MenuView{}, domain.ErrNotLoggedIn
	}
	return MenuView{
		User:          g.user,
		Score:         g.score,
		QuestionCount: len(g.questions),
		Leaderboard:   g.repo.GetTopUsers(ctx, g.leaderboardSize),
	}, nil
}

// StartQuiz begins a playthrough over a snapshot of the current bank.
func (g *Game) StartQuiz(ctx context.Context) (*Session, error) {
	if g.user == "" {
		return nil, domain.ErrNotLoggedIn
	}
	if len(g.questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	g.abandon()

	player := domain.User{Name: g.user, Score: g.score, QuestionsAnswered: g.answered}
	g.session = NewSession(g.repo, player, g.questions)
	g.screen = ScreenQuiz
	return g.session, nil
}

// SelectAnswer picks an option for the current question.
func (g *Game) SelectAnswer(index int) (bool, error) {
	session, err := g.activeSession()
	if err != nil {
		return false, err
	}
	return session.SelectAnswer(index), nil
}

// ConfirmAnswer confirms the tentative choice.
func (g *Game) ConfirmAnswer() (AnswerResult, bool, error) {
	session, err := g.activeSession()
	if err != nil {
		return AnswerResult{}, false, err
	}
	result, ok := session.ConfirmAnswer()
	return result, ok, nil
}

// Next advances past a shown result. Finishing the last question persists
// the score and returns to the menu.
func (g *Game) Next(ctx context.Context) (bool, error) {
	session, err := g.activeSession()
	if err != nil {
		return false, err
	}
	if !session.Advance(ctx) {
		return false, nil
	}
	if session.State() == StateFinished {
		g.score = session.DisplayScore()
		g.answered += session.TotalAnswered()
		g.session = nil
		g.screen = ScreenMenu
	}
	return true, nil
}

// AbandonQuiz leaves the quiz without saving and returns to the menu.
func (g *Game) AbandonQuiz() {
	g.abandon()
	if g.user != "" {
		g.screen = ScreenMenu
	}
}

// OpenAdmin switches to question management.
func (g *Game) OpenAdmin() error {
	if g.user == "" {
		return domain.ErrNotLoggedIn
	}
	g.abandon()
	g.screen = ScreenAdmin
	return nil
}

// CloseAdmin reloads the bank and returns to the menu.
func (g *Game) CloseAdmin(ctx context.Context) {
	g.questions = g.repo.ListQuestions(ctx)
	if g.user != "" {
		g.screen = ScreenMenu
	}
}

// AddQuestion validates form and stores a new question with a fresh id.
func (g *Game) AddQuestion(ctx context.Context, form domain.QuestionForm) (domain.Question, error) {
	now := g.now()
	q, err := form.Build(g.nextID(now), domain.FormatTimestamp(now))
	if err != nil {
		return domain.Question{}, err
	}
	g.questions = g.repo.AddQuestion(ctx, q)
	return q, nil
}

// UpdateQuestion validates form and replaces question id, keeping its id and
// creation time.
func (g *Game) UpdateQuestion(ctx context.Context, id string, form domain.QuestionForm) (domain.Question, error) {
	existing, ok := g.findQuestion(id)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	q, err := form.Build(existing.ID, existing.CreatedAt)
	if err != nil {
		return domain.Question{}, err
	}
	g.questions = g.repo.UpdateQuestion(ctx, id, q)
	return q, nil
}

// RemoveQuestion deletes question id. Unknown ids are a no-op.
func (g *Game) RemoveQuestion(ctx context.Context, id string) {
	g.questions = g.repo.RemoveQuestion(ctx, id)
}

// ResetAll wipes every question and score.
func (g *Game) ResetAll(ctx context.Context) {
	g.abandon()
	g.repo.ClearAll(ctx)
	g.questions = []domain.Question{}
	g.score = 0
	g.answered = 0
	if g.user != "" {
		g.screen = ScreenMenu
	}
}

func (g *Game) activeSession() (*Session, error) {
	if g.session == nil || !g.session.IsActive() {
		return nil, domain.ErrNoActiveSession
	}
	return g.session, nil
}

func (g *Game) abandon() {
	if g.session != nil {
		g.session.Abandon()
		g.session = nil
	}
}

func (g *Game) findQuestion(id string) (domain.Question, bool) {
	for _, q := range g.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// nextID mints a time-based id, bumping it while it collides with the bank.
func (g *Game) nextID(now time.Time) string {
	for {
		id := domain.NewQuestionID(now)
		if _, taken := g.findQuestion(id); !taken {
			return id
		}
		now = now.Add(time.Millisecond)
	}
}
