package cli

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"mcqengine/internal/chunker"
)

var (
	chunkInput    string
	chunkMaxChars int
	chunkMinLen   int
	chunkJSON     bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Preview the sections a text file is split into",
	Args:  cobra.NoArgs,
	RunE:  runChunk,
}

func init() {
	chunkCmd.Flags().StringVarP(&chunkInput, "input", "i", "-", "plain-text input file, - for stdin")
	chunkCmd.Flags().IntVar(&chunkMaxChars, "max-chars", chunker.DefaultMaxChars, "maximum section width in characters")
	chunkCmd.Flags().IntVar(&chunkMinLen, "min-len", chunker.DefaultMinLen, "sections this short or shorter are dropped")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output sections as JSON")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, _ []string) error {
	text, err := readInput(cmd, chunkInput)
	if err != nil {
		return err
	}

	sections := chunker.New(chunker.WithMaxChars(chunkMaxChars), chunker.WithMinLen(chunkMinLen)).Split(text)

	if chunkJSON {
		data, err := json.MarshalIndent(sections, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sections: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sections) == 0 {
		cmd.Println("No sections.")
		return nil
	}
	for i, s := range sections {
		cmd.Printf("[%d] (%d chars) %s\n", i, utf8.RuneCountInString(string(s)), s)
	}
	return nil
}
