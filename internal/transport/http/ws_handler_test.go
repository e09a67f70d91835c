package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"local-quiz/internal/app"
	"local-quiz/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	repo := newTestRepository()
	conn, cleanup := dialTestServer(t, repo)
	defer cleanup()

	state := readState(t, conn, "state")
	if state.Screen != app.ScreenLogin {
		t.Fatalf("expected login screen, got %s", state.Screen)
	}

	send(t, conn, "login", map[string]any{"name": "Ana"})
	if state := readState(t, conn, "state"); state.Screen != app.ScreenMenu || state.User != "Ana" {
		t.Fatalf("expected menu for Ana, got %+v", state)
	}

	send(t, conn, "start", nil)
	state = readState(t, conn, "state")
	if state.Quiz == nil || state.Quiz.Total != 3 || state.Quiz.State != "awaiting_selection" {
		t.Fatalf("expected a fresh 3-question quiz, got %+v", state.Quiz)
	}

	for _, choice := range []int{2, 0, 2} {
		send(t, conn, "select", map[string]any{"index": choice})
		if state := readState(t, conn, "state"); state.Quiz.Result != nil {
			t.Fatalf("expected no result before confirm, got %+v", state.Quiz.Result)
		}
		send(t, conn, "confirm", nil)
		if state := readState(t, conn, "state"); state.Quiz == nil || state.Quiz.Result == nil {
			t.Fatalf("expected a result after confirm, got %+v", state.Quiz)
		}
		send(t, conn, "next", nil)
		state = readState(t, conn, "state")
	}

	if state.Screen != app.ScreenMenu || state.Score != 2 || state.Quiz != nil {
		t.Fatalf("expected menu with score 2, got %+v", state)
	}

	send(t, conn, "menu", nil)
	var menu app.MenuView
	readPayload(t, conn, "menu", &menu)
	if len(menu.Leaderboard) != 1 || menu.Leaderboard[0].Score != 2 {
		t.Fatalf("expected Ana on the leaderboard, got %+v", menu.Leaderboard)
	}
}

func TestWebSocketAdminValidation(t *testing.T) {
	repo := newTestRepository()
	conn, cleanup := dialTestServer(t, repo)
	defer cleanup()
	readState(t, conn, "state")

	send(t, conn, "questions", nil)
	if typ, _ := readRaw(t, conn); typ != "error" {
		t.Fatalf("expected error before login, got %s", typ)
	}

	send(t, conn, "login", map[string]any{"name": "Admin"})
	readState(t, conn, "state")

	valid := map[string]any{
		"question":      "Largest ocean?",
		"options":       []string{"Atlantic", "Indian", "Arctic", "Pacific"},
		"correctAnswer": 3,
	}
	send(t, conn, "add_question", valid)
	if typ, _ := readRaw(t, conn); typ != "error" {
		t.Fatalf("expected error for an edit outside admin, got %s", typ)
	}
	send(t, conn, "remove_question", map[string]any{"id": "1"})
	if typ, _ := readRaw(t, conn); typ != "error" {
		t.Fatalf("expected error for a removal outside admin, got %s", typ)
	}
	if got := repo.ListQuestions(context.Background()); len(got) != 3 {
		t.Fatalf("expected the bank untouched, got %d questions", len(got))
	}

	send(t, conn, "questions", nil)
	var bank []map[string]any
	readPayload(t, conn, "questions", &bank)
	if len(bank) != 3 {
		t.Fatalf("expected 3 questions in admin, got %d", len(bank))
	}

	send(t, conn, "add_question", map[string]any{
		"question": "Largest ocean?",
		"options":  []string{"Atlantic", "Indian", "Arctic", "Pacific"},
	})
	if typ, _ := readRaw(t, conn); typ != "error" {
		t.Fatalf("expected validation error for a missing correct answer, got %s", typ)
	}

	send(t, conn, "add_question", valid)
	typ, _ := readRaw(t, conn)
	if typ != "question" {
		t.Fatalf("expected created question, got %s", typ)
	}
	if got := repo.ListQuestions(context.Background()); len(got) != 4 {
		t.Fatalf("expected 4 questions stored, got %d", len(got))
	}

	send(t, conn, "remove_question", map[string]any{"id": "1"})
	var remaining []map[string]any
	readPayload(t, conn, "questions", &remaining)
	if len(remaining) != 3 {
		t.Fatalf("expected 3 questions after removal, got %d", len(remaining))
	}

	send(t, conn, "bogus", nil)
	if typ, _ := readRaw(t, conn); typ != "error" {
		t.Fatalf("expected error for unsupported type, got %s", typ)
	}
}

type testState struct {
	Screen app.Screen `json:"screen"`
	User   string     `json:"user"`
	Score  int        `json:"score"`
	Quiz   *struct {
		State  string            `json:"state"`
		Total  int               `json:"total"`
		Result *app.AnswerResult `json:"result"`
	} `json:"quiz"`
}

func newTestRepository() *app.Repository {
	repo := app.NewRepository(memory.NewStore(), log.New(&bytes.Buffer{}, "", 0))
	repo.SeedDefaults(context.Background())
	return repo
}

func dialTestServer(t *testing.T, repo *app.Repository) (*websocket.Conn, func()) {
	t.Helper()
	wsHandler := NewWSHandler(repo, 5)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readRaw(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func readPayload(t *testing.T, conn *websocket.Conn, expect string, dst any) {
	t.Helper()
	typ, raw := readRaw(t, conn)
	if typ != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, typ, raw)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", expect, err)
	}
}

func readState(t *testing.T, conn *websocket.Conn, expect string) testState {
	t.Helper()
	var state testState
	readPayload(t, conn, expect, &state)
	return state
}
