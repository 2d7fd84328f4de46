package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eiken-drill/eiken/internal/config"
	"github.com/eiken-drill/eiken/internal/filter"
	"github.com/eiken-drill/eiken/internal/question"
)

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "List the grades in the question dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-8s  %-6s  %9s  %s\n", "Grade", "Key", "Questions", "Exams")
		for _, g := range catalog.Grades() {
			fmt.Fprintf(out, "%-8s  %-6s  %9d  %s\n",
				question.DisplayName(g), g, catalog.Len(g), yearsOf(catalog.Questions(g)))
		}
		fmt.Fprintf(out, "\n%d questions in %d grades\n", catalog.Size(), len(catalog.Grades()))
		return nil
	},
}

// loadCatalog reads cfg.DataPath, or the embedded dataset when unset.
func loadCatalog(cfg *config.Config) (*question.Catalog, error) {
	if cfg.DataPath == "" {
		return question.Default()
	}
	return question.Load(cfg.DataPath)
}

// yearsOf summarizes the exam sessions of qs as "first..last (n)".
func yearsOf(qs []question.Question) string {
	years := filter.Years(qs)
	switch len(years) {
	case 0:
		return "-"
	case 1:
		return years[0]
	}
	return fmt.Sprintf("%s..%s (%d)", years[0], years[len(years)-1], len(years))
}
