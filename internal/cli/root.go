// Package cli implements the mcqgen command line.
package cli

import (
	"github.com/spf13/cobra"

	"mcqengine/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "mcqgen",
	Short: "Generate multiple-choice questions from plain text",
	Long: `mcqgen splits plain text into sections, writes one MCQ per section with a
generative model and scores each MCQ with an evaluation model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return config.LoadDotEnv()
		}
		return config.LoadDotEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
