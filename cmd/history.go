package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List past sessions, or the answers of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		repo := e.store.EventRepo()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			answers, err := repo.QueryAnswerEvents(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("query answers: %w", err)
			}
			if len(answers) == 0 {
				return fmt.Errorf("no answers recorded for session %s", args[0])
			}
			fmt.Fprintf(out, "%-3s  %-12s  %-16s  %-16s  %7s\n", "", "Question", "Selected", "Answer", "Ms")
			fmt.Fprintln(out, strings.Repeat("─", 64))
			correct := 0
			for _, a := range answers {
				mark := "✗"
				if a.Correct {
					mark = "✓"
					correct++
				}
				fmt.Fprintf(out, "%-3s  %-12s  %-16s  %-16s  %7d\n",
					mark, a.QuestionID, truncate(a.SelectedAnswer, 16), truncate(a.CorrectAnswer, 16), a.TimeMs)
			}
			fmt.Fprintf(out, "\n%d/%d correct\n", correct, len(answers))
			return nil
		}

		sessions, err := repo.QuerySessionSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-16s  %-8s  %6s  %9s  %s\n",
			"Session", "Finished", "Grade", "Time", "Score", "Status")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, s := range sessions {
			status := "done"
			if s.Action == store.ActionAbandon {
				status = "quit"
			}
			fmt.Fprintf(out, "%-36s  %-16s  %-8s  %3d:%02d  %4d/%-4d  %s\n",
				s.SessionID,
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				question.DisplayName(s.Grade),
				s.DurationSecs/60, s.DurationSecs%60,
				s.CorrectAnswers, s.QuestionsServed,
				status,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
