package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"local-quiz/internal/app"
	"local-quiz/internal/domain"
)

// WSHandler serves one game per websocket connection. Messages from every
// connection are handled one at a time so the repository keeps a single writer.
type WSHandler struct {
	repo            *app.Repository
	leaderboardSize int
	upgrader        websocket.Upgrader
	mu              sync.Mutex
}

func NewWSHandler(repo *app.Repository, leaderboardSize int) *WSHandler {
	return &WSHandler{
		repo:            repo,
		leaderboardSize: leaderboardSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Question edits are accepted only after a "questions" message opened the admin screen.
var errAdminClosed = errors.New("question editor is not open")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loginPayload struct {
	Name string `json:"name"`
}

type selectPayload struct {
	Index int `json:"index"`
}

type idPayload struct {
	ID string `json:"id"`
}

type questionPayload struct {
	ID            string                     `json:"id"`
	Question      string                     `json:"question"`
	Options       [domain.OptionCount]string `json:"options"`
	CorrectAnswer *int                       `json:"correctAnswer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type stateView struct {
	Screen app.Screen `json:"screen"`
	User   string     `json:"user,omitempty"`
	Score  int        `json:"score"`
	Quiz   *quizView  `json:"quiz,omitempty"`
}

// quizView never carries the correct answer before it is confirmed.
type quizView struct {
	State        string                     `json:"state"`
	Index        int                        `json:"index"`
	Total        int                        `json:"total"`
	Question     string                     `json:"question"`
	Options      [domain.OptionCount]string `json:"options"`
	Selected     *int                       `json:"selected,omitempty"`
	SessionScore int                        `json:"sessionScore"`
	DisplayScore int                        `json:"displayScore"`
	Result       *app.AnswerResult          `json:"result,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into a Game.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	h.mu.Lock()
	game := app.NewGame(ctx, h.repo, h.leaderboardSize)
	h.mu.Unlock()

	if err := conn.WriteJSON(outboundMessage[stateView]{Type: "state", Payload: snapshot(game)}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		h.mu.Lock()
		reply := h.handle(ctx, game, inbound)
		h.mu.Unlock()

		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("ws write error: %v", err)
			break
		}
	}

	h.mu.Lock()
	game.AbandonQuiz()
	h.mu.Unlock()
}

func (h *WSHandler) handle(ctx context.Context, game *app.Game, inbound inboundMessage) outboundMessage[any] {
	var err error
	switch inbound.Type {
	case "login":
		var payload loginPayload
		if err = decode(inbound.Payload, &payload); err == nil {
			err = game.Login(ctx, payload.Name)
		}
	case "logout":
		game.Logout()
	case "menu":
		menu, err := game.Menu(ctx)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "menu", Payload: menu}
	case "start":
		_, err = game.StartQuiz(ctx)
	case "select":
		var payload selectPayload
		if err = decode(inbound.Payload, &payload); err == nil {
			_, err = game.SelectAnswer(payload.Index)
		}
	case "confirm":
		_, _, err = game.ConfirmAnswer()
	case "next":
		_, err = game.Next(ctx)
	case "abandon":
		game.AbandonQuiz()
	case "questions":
		if err := game.OpenAdmin(); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "questions", Payload: game.Questions()}
	case "close_admin":
		game.CloseAdmin(ctx)
	case "add_question", "update_question":
		if game.Screen() != app.ScreenAdmin {
			return errorMessage(errAdminClosed)
		}
		var payload questionPayload
		if err := decode(inbound.Payload, &payload); err != nil {
			return errorMessage(err)
		}
		form := formFromPayload(payload)
		var q domain.Question
		if inbound.Type == "add_question" {
			q, err = game.AddQuestion(ctx, form)
		} else {
			q, err = game.UpdateQuestion(ctx, payload.ID, form)
		}
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "question", Payload: q}
	case "remove_question":
		if game.Screen() != app.ScreenAdmin {
			return errorMessage(errAdminClosed)
		}
		var payload idPayload
		if err := decode(inbound.Payload, &payload); err != nil {
			return errorMessage(err)
		}
		game.RemoveQuestion(ctx, payload.ID)
		return outboundMessage[any]{Type: "questions", Payload: game.Questions()}
	case "reset":
		game.ResetAll(ctx)
	default:
		return errorMessage(fmt.Errorf("unsupported message type %q", inbound.Type))
	}

	if err != nil {
		return errorMessage(err)
	}
	return outboundMessage[any]{Type: "state", Payload: snapshot(game)}
}

func snapshot(game *app.Game) stateView {
	view := stateView{
		Screen: game.Screen(),
		User:   game.User(),
		Score:  game.Score(),
	}
	session, ok := game.Session()
	if !ok {
		return view
	}

	quiz := &quizView{
		State:        session.State().String(),
		Index:        session.Index(),
		Total:        session.Len(),
		SessionScore: session.SessionScore(),
		DisplayScore: session.DisplayScore(),
	}
	if q, ok := session.Current(); ok {
		quiz.Question = q.Question
		quiz.Options = q.Options
	}
	if selected, ok := session.Selected(); ok {
		quiz.Selected = &selected
	}
	if session.State() == app.StateResultShown {
		if result, ok := session.LastResult(); ok {
			quiz.Result = &result
		}
	}
	view.Quiz = quiz
	view.Score = session.DisplayScore()
	return view
}

func formFromPayload(payload questionPayload) domain.QuestionForm {
	form := domain.NewQuestionForm()
	form.Question = payload.Question
	for i, option := range payload.Options {
		form.SetOption(i, option)
	}
	if payload.CorrectAnswer != nil {
		form.CorrectAnswer = *payload.CorrectAnswer
	}
	return form
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
