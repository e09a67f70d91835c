package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"local-quiz/internal/app"
	"local-quiz/internal/domain"
)

// NewPlayCmd runs the interactive terminal game.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, cfg, closeStore, err := openRepository(ctx, *configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			game := app.NewGame(ctx, repo, cfg.Quiz.LeaderboardSize)
			return Run(ctx, game, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// Run drives game from line-oriented input until the player quits or input ends.
func Run(ctx context.Context, game *app.Game, in io.Reader, out io.Writer) error {
	t := &terminal{game: game, in: bufio.NewReader(in), out: out}
	for {
		var ok bool
		switch game.Screen() {
		case app.ScreenLogin:
			ok = t.login(ctx)
		case app.ScreenMenu:
			ok = t.menu(ctx)
		case app.ScreenQuiz:
			ok = t.quiz(ctx)
		case app.ScreenAdmin:
			ok = t.admin(ctx)
		}
		if !ok {
			fmt.Fprintln(out, "Bye!")
			return nil
		}
	}
}

type terminal struct {
	game *app.Game
	in   *bufio.Reader
	out  io.Writer
}

func (t *terminal) readLine(prompt string) (string, bool) {
	if prompt != "" {
		fmt.Fprint(t.out, prompt)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (t *terminal) login(ctx context.Context) bool {
	name, ok := t.readLine("Your name: ")
	if !ok {
		return false
	}
	if err := t.game.Login(ctx, name); err != nil {
		fmt.Fprintf(t.out, "%v\n", err)
		return true
	}
	fmt.Fprintf(t.out, "Welcome, %s! Score: %d\n", t.game.User(), t.game.Score())
	return true
}

func (t *terminal) menu(ctx context.Context) bool {
	view, err := t.game.Menu(ctx)
	if err != nil {
		fmt.Fprintf(t.out, "%v\n", err)
		return true
	}

	fmt.Fprintf(t.out, "\n== %s | score %d | %d questions ==\n", view.User, view.Score, view.QuestionCount)
	if len(view.Leaderboard) > 0 {
		fmt.Fprintln(t.out, "Leaderboard:")
		for i, user := range view.Leaderboard {
			fmt.Fprintf(t.out, "  %d. %s - %d\n", i+1, user.Name, user.Score)
		}
	}

	choice, ok := t.readLine("[s]tart  [a]dmin  [r]eset  [l]ogout  [q]uit: ")
	if !ok {
		return false
	}
	switch strings.ToLower(choice) {
	case "s":
		if _, err := t.game.StartQuiz(ctx); err != nil {
			fmt.Fprintf(t.out, "%v. Add questions in admin first.\n", err)
		}
	case "a":
		_ = t.game.OpenAdmin()
	case "r":
		answer, ok := t.readLine("Erase every question and score? [y/N]: ")
		if !ok {
			return false
		}
		if strings.EqualFold(answer, "y") {
			t.game.ResetAll(ctx)
			fmt.Fprintln(t.out, "Everything was erased.")
		}
	case "l":
		t.game.Logout()
	case "q":
		return false
	default:
		fmt.Fprintln(t.out, "Unknown option.")
	}
	return true
}

func (t *terminal) quiz(ctx context.Context) bool {
	session, ok := t.game.Session()
	if !ok {
		t.game.AbandonQuiz()
		return true
	}

	switch session.State() {
	case app.StateAwaitingSelection, app.StateAnswerSelected:
		return t.askQuestion(session)
	case app.StateResultShown:
		if _, ok := t.readLine("Press Enter to continue: "); !ok {
			return false
		}
		last := session.Index() == session.Len()-1
		if _, err := t.game.Next(ctx); err != nil {
			fmt.Fprintf(t.out, "%v\n", err)
			return true
		}
		if last {
			fmt.Fprintf(t.out, "Quiz finished! Final score: %d\n", t.game.Score())
		}
	default:
		t.game.AbandonQuiz()
	}
	return true
}

func (t *terminal) askQuestion(session *app.Session) bool {
	q, _ := session.Current()
	selected, hasSelection := session.Selected()

	fmt.Fprintf(t.out, "\nQuestion %d of %d | score %d (+%d this quiz)\n", session.Index()+1, session.Len(), session.DisplayScore(), session.SessionScore())
	fmt.Fprintln(t.out, q.Question)
	for i, option := range q.Options {
		marker := " "
		if hasSelection && i == selected {
			marker = "*"
		}
		fmt.Fprintf(t.out, " %s%c) %s\n", marker, 'A'+i, option)
	}

	prompt := "Choose A-D (x to leave): "
	if hasSelection {
		prompt = fmt.Sprintf("Enter to confirm %c, or choose again: ", 'A'+selected)
	}
	input, ok := t.readLine(prompt)
	if !ok {
		return false
	}

	switch {
	case strings.EqualFold(input, "x"):
		t.game.AbandonQuiz()
		fmt.Fprintln(t.out, "Quiz abandoned, score not saved.")
	case input == "" && hasSelection:
		result, _, _ := t.game.ConfirmAnswer()
		if result.Correct {
			fmt.Fprintln(t.out, "Correct!")
		} else {
			fmt.Fprintf(t.out, "Wrong. The answer was %s\n", answerLabel(q))
		}
	default:
		index, valid := parseLetter(input)
		if !valid {
			fmt.Fprintln(t.out, "Please enter a letter A-D.")
			return true
		}
		_, _ = t.game.SelectAnswer(index)
	}
	return true
}

func (t *terminal) admin(ctx context.Context) bool {
	questions := t.game.Questions()
	fmt.Fprintf(t.out, "\n== Admin | %d questions ==\n", len(questions))
	for _, q := range questions {
		fmt.Fprintf(t.out, "  [%s] %s (answer %s)\n", q.ID, q.Question, answerLabel(q))
	}

	input, ok := t.readLine("add | edit <id> | del <id> | back: ")
	if !ok {
		return false
	}
	command, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "add":
		form, ok := t.readForm(domain.NewQuestionForm())
		if !ok {
			return false
		}
		if q, err := t.game.AddQuestion(ctx, form); err != nil {
			fmt.Fprintf(t.out, "Not saved: %v\n", err)
		} else {
			fmt.Fprintf(t.out, "Added question %s.\n", q.ID)
		}
	case "edit":
		existing, found := findByID(questions, arg)
		if !found {
			fmt.Fprintln(t.out, domain.ErrQuestionNotFound)
			return true
		}
		form, ok := t.readForm(domain.FormFromQuestion(existing))
		if !ok {
			return false
		}
		if _, err := t.game.UpdateQuestion(ctx, arg, form); err != nil {
			fmt.Fprintf(t.out, "Not saved: %v\n", err)
		} else {
			fmt.Fprintln(t.out, "Question updated.")
		}
	case "del":
		answer, ok := t.readLine(fmt.Sprintf("Delete question %s? [y/N]: ", arg))
		if !ok {
			return false
		}
		if strings.EqualFold(answer, "y") {
			t.game.RemoveQuestion(ctx, arg)
		}
	case "back":
		t.game.CloseAdmin(ctx)
	default:
		fmt.Fprintln(t.out, "Unknown command.")
	}
	return true
}

// readForm prompts for every field; an empty answer keeps the prefilled value.
func (t *terminal) readForm(form domain.QuestionForm) (domain.QuestionForm, bool) {
	prompt, ok := t.readLine(withDefault("Question", form.Question))
	if !ok {
		return form, false
	}
	if prompt != "" {
		form.Question = prompt
	}

	for i := 0; i < domain.OptionCount; i++ {
		label := fmt.Sprintf("Option %c", 'A'+i)
		text, ok := t.readLine(withDefault(label, form.Options[i]))
		if !ok {
			return form, false
		}
		if text != "" {
			form.SetOption(i, text)
		}
	}

	current := ""
	if form.CorrectAnswer != domain.NoAnswer {
		current = string(rune('A' + form.CorrectAnswer))
	}
	letter, ok := t.readLine(withDefault("Correct option (A-D)", current))
	if !ok {
		return form, false
	}
	if letter != "" {
		index, valid := parseLetter(letter)
		if !valid {
			index = domain.NoAnswer
		}
		form.CorrectAnswer = index
	}
	return form, true
}

func withDefault(label, current string) string {
	if current == "" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, current)
}

func parseLetter(input string) (int, bool) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if len(input) != 1 {
		return domain.NoAnswer, false
	}
	index := int(input[0] - 'A')
	if index < 0 || index >= domain.OptionCount {
		return domain.NoAnswer, false
	}
	return index, true
}

func findByID(questions []domain.Question, id string) (domain.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}
