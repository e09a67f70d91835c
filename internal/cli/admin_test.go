package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"local-quiz/internal/domain"
)

func TestPrintQuestions(t *testing.T) {
	var out bytes.Buffer
	printQuestions(&out, []domain.Question{
		{ID: "7", Question: "2 + 2?", Options: [domain.OptionCount]string{"3", "4", "5", "6"}, CorrectAnswer: 1, CreatedAt: "2026-10-18T10:00:00.000Z"},
		{ID: "8", Question: "Broken", CorrectAnswer: 9},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if !strings.Contains(lines[1], "B) 4") {
		t.Fatalf("expected answer label in %q", lines[1])
	}
	if !strings.Contains(lines[2], "?") {
		t.Fatalf("expected placeholder for an out-of-range answer in %q", lines[2])
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	played := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	printLeaderboard(&out, []domain.User{
		{Name: "Ana", Score: 4, QuestionsAnswered: 6, LastPlayed: played},
		{Name: "Bob", Score: 2, QuestionsAnswered: 3, LastPlayed: played},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if !strings.HasPrefix(lines[1], "1") || !strings.Contains(lines[1], "Ana") || !strings.Contains(lines[1], "2026-10-18T09:30:00Z") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2") || !strings.Contains(lines[2], "Bob") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}
