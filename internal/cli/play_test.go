package cli

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"local-quiz/internal/app"
	"local-quiz/internal/infra/memory"
)

func TestRunPlaysAFullQuiz(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepository()
	game := app.NewGame(ctx, repo, 5)

	// Defaults answer C, B, C; the player misses the second one.
	input := strings.Join([]string{
		"Ana",
		"s",
		"C", "", "",
		"A", "", "",
		"C", "", "",
		"q",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(ctx, game, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"Welcome, Ana! Score: 0",
		"Question 1 of 3",
		"Correct!",
		"Wrong. The answer was B) 4",
		"Quiz finished! Final score: 2",
		"1. Ana - 2",
		"Bye!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	user, ok := repo.GetUser(ctx, "ana")
	if !ok || user.Score != 2 || user.QuestionsAnswered != 3 {
		t.Fatalf("expected persisted score 2 of 3, got %+v", user)
	}
}

func TestRunAbandonDoesNotSave(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepository()
	game := app.NewGame(ctx, repo, 5)

	input := "Bob\ns\nC\n\n\nx\nq\n"
	var out bytes.Buffer
	if err := Run(ctx, game, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Quiz abandoned, score not saved.") {
		t.Fatalf("expected abandon notice, got:\n%s", out.String())
	}
	if _, ok := repo.GetUser(ctx, "bob"); ok {
		t.Fatalf("expected no user record after an abandoned quiz")
	}
}

func TestRunAdminAddsAndRejectsQuestions(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(memory.NewStore(), log.New(&bytes.Buffer{}, "", 0))
	game := app.NewGame(ctx, repo, 5)

	input := strings.Join([]string{
		"Admin",
		"s",
		"a",
		"add", "Largest ocean?", "Atlantic", "Indian", "", "Pacific", "D",
		"add", "Largest ocean?", "Atlantic", "Indian", "Arctic", "Pacific", "D",
		"back",
		"q",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(ctx, game, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"no questions available. Add questions in admin first.",
		"Not saved: option 3: option text is required",
		"Added question",
		"| 1 questions ==",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	questions := repo.ListQuestions(ctx)
	if len(questions) != 1 || questions[0].CorrectAnswer != 3 || questions[0].Options[2] != "Arctic" {
		t.Fatalf("expected one valid question, got %+v", questions)
	}
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	ctx := context.Background()
	game := app.NewGame(ctx, newSeededRepository(), 5)

	var out bytes.Buffer
	if err := Run(ctx, game, strings.NewReader("Ana\ns\nB"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "Bye!") {
		t.Fatalf("expected a clean exit, got:\n%s", out.String())
	}
}

func TestParseLetter(t *testing.T) {
	cases := map[string]int{"a": 0, " B ": 1, "c": 2, "D": 3}
	for input, want := range cases {
		if got, ok := parseLetter(input); !ok || got != want {
			t.Fatalf("parseLetter(%q) = %d, %v", input, got, ok)
		}
	}
	for _, input := range []string{"", "E", "1", "AB"} {
		if _, ok := parseLetter(input); ok {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func newSeededRepository() *app.Repository {
	repo := app.NewRepository(memory.NewStore(), log.New(&bytes.Buffer{}, "", 0))
	repo.SeedDefaults(context.Background())
	return repo
}
