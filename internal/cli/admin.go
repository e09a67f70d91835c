package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"local-quiz/internal/app"
	"local-quiz/internal/config"
	"local-quiz/internal/domain"
)

// NewQuestionsCmd groups non-interactive question bank management.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the question bank",
	}
	cmd.AddCommand(newQuestionsListCmd(configPath))
	cmd.AddCommand(newQuestionsAddCmd(configPath))
	cmd.AddCommand(newQuestionsRemoveCmd(configPath))
	return cmd
}

func newQuestionsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every question in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, closeStore, err := openRepository(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			printQuestions(cmd.OutOrStdout(), repo.ListQuestions(cmd.Context()))
			return nil
		},
	}
}

func newQuestionsAddCmd(configPath *string) *cobra.Command {
	var (
		options []string
		correct string
	)
	cmd := &cobra.Command{
		Use:   "add <question>",
		Short: "Add a question with four options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := domain.NewQuestionForm()
			form.Question = args[0]
			if len(options) != domain.OptionCount {
				return fmt.Errorf("exactly %d --option flags are required, got %d", domain.OptionCount, len(options))
			}
			for i, option := range options {
				form.SetOption(i, option)
			}
			if index, ok := parseLetter(correct); ok {
				form.CorrectAnswer = index
			}

			// Validate before touching storage.
			if err := form.Validate(); err != nil {
				return err
			}

			repo, _, closeStore, err := openRepository(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			game := app.NewGame(cmd.Context(), repo, 0)
			q, err := game.AddQuestion(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added question %s\n", q.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "answer option (repeat four times, in order)")
	cmd.Flags().StringVarP(&correct, "correct", "c", "", "letter of the correct option (A-D)")
	return cmd
}

func newQuestionsRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a question by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, closeStore, err := openRepository(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			remaining := repo.RemoveQuestion(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%d questions left\n", len(remaining))
			return nil
		},
	}
}

// NewLeaderboardCmd prints the top players.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cfg, closeStore, err := openRepository(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			if limit <= 0 {
				limit = cfg.Quiz.LeaderboardSize
			}
			printLeaderboard(cmd.OutOrStdout(), repo.GetTopUsers(cmd.Context(), limit))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of players to show (default from config)")
	return cmd
}

// NewResetCmd wipes every question and score.
func NewResetCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every question and score",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			cfg, err := config.LoadOptional(*configPath)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			app.NewRepository(store, nil).ClearAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "all questions and scores deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func printQuestions(out io.Writer, questions []domain.Question) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUESTION\tANSWER\tCREATED")
	for _, q := range questions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.ID, q.Question, answerLabel(q), q.CreatedAt)
	}
	_ = w.Flush()
}

func printLeaderboard(out io.Writer, users []domain.User) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSCORE\tANSWERED\tLAST PLAYED")
	for i, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", i+1, u.Name, u.Score, u.QuestionsAnswered, u.LastPlayed.Format(time.RFC3339))
	}
	_ = w.Flush()
}

func answerLabel(q domain.Question) string {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= domain.OptionCount {
		return "?"
	}
	return fmt.Sprintf("%c) %s", 'A'+q.CorrectAnswer, q.Options[q.CorrectAnswer])
}
