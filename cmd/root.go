package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eiken-drill/eiken/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "eiken",
	Short: "Eiken vocabulary and grammar drills",
	Long: `eiken is a terminal quiz for Eiken multiple-choice questions.

Pick a grade, filter by exam year and question range, and answer one
question at a time. Wrong answers go to a review list that persists
between runs.

AI explanations for questions without one are enabled by setting one of
GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY
(or EIKEN_LLM_PROVIDER with its key), in the environment or a .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides EIKEN_DB env var)")
	flags.String("data", "", "Path to a question dataset JSON file (default: built-in sample)")
	flags.String("config", "", "Path to a YAML config file")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(gradesCmd)
	rootCmd.AddCommand(mistakesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig resolves configuration with the command's flags applied.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(config.Options{File: file, Flags: cmd.Flags()})
}
