package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/question"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "Inspect the review list of missed questions",
}

var mistakesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List missed questions, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetString("grade")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		list, err := e.mistakes(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if list.Len() == 0 {
			fmt.Fprintln(out, "No mistakes to review.")
			return nil
		}
		if grade != "" {
			grade = question.NormalizeGrade(grade)
		}

		fmt.Fprintf(out, "%-12s  %-8s  %-16s  %-19s  %s\n", "ID", "Grade", "Answer", "Missed", "Question")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		shown := 0
		for _, m := range list.List() {
			g := question.GradeFromID(m.ID)
			if grade != "" && g != grade {
				continue
			}
			fmt.Fprintf(out, "%-12s  %-8s  %-16s  %-19s  %s\n",
				m.ID,
				question.DisplayName(g),
				truncate(m.Answer, 16),
				m.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(oneLine(m.Question.Question), 40),
			)
			shown++
		}
		fmt.Fprintf(out, "\n%d of %d mistakes\n", shown, list.Len())
		return nil
	},
}

var mistakesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a missed question with its answer and explanation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		list, err := e.mistakes(cmd)
		if err != nil {
			return err
		}
		m, ok := list.Get(args[0])
		if !ok {
			return fmt.Errorf("question %s is not in the review list", args[0])
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(out, "ID:        %s\n", m.ID)
		fmt.Fprintf(out, "Grade:     %s\n", question.DisplayName(question.GradeFromID(m.ID)))
		if m.Source != "" {
			fmt.Fprintf(out, "Source:    %s\n", m.Source)
		}
		fmt.Fprintf(out, "Missed:    %s\n", m.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, m.Question.Question)
		fmt.Fprintln(out)
		for i, opt := range m.Pairs() {
			mark := " "
			if m.IsCorrect(opt.Text) {
				mark = "✓"
			}
			line := fmt.Sprintf("%s %d. %s", mark, i+1, opt.Text)
			if opt.Meaning != "" {
				line += "  (" + opt.Meaning + ")"
			}
			fmt.Fprintln(out, line)
		}
		if m.Translation != "" {
			fmt.Fprintf(out, "\n訳: %s\n", m.Translation)
		}

		sections := explain.Split(m.Explanation)
		if sections.Empty() {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		if sections.Plain != "" {
			fmt.Fprintln(out, explain.StripTags(sections.Plain))
			return nil
		}
		if h := sections.HeaderText(); h != "" {
			fmt.Fprintln(out, h)
		}
		if sections.Reason != "" {
			fmt.Fprintln(out, explain.StripTags(sections.Reason))
		}
		for _, v := range sections.Vocabulary {
			fmt.Fprintf(out, "  ・%s\n", explain.StripTags(v))
		}
		return nil
	},
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	mistakesListCmd.Flags().StringP("grade", "g", "", "Only show mistakes of this grade (e.g. 2, pre-2)")

	mistakesCmd.AddCommand(mistakesListCmd)
	mistakesCmd.AddCommand(mistakesShowCmd)
}
