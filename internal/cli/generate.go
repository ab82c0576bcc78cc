package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcqengine/internal/app"
	"mcqengine/internal/config"
	"mcqengine/internal/logger"
)

var (
	genInput    string
	genOutput   string
	genMaxChars int
	genMinLen   int
	genWorkers  int
	genReport   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate MCQs from a plain-text file",
	Long: `Splits the input into sections, generates and evaluates one MCQ per
section, and writes the accepted MCQs as JSON.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genInput, "input", "i", "-", "plain-text input file, - for stdin")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "-", "output file, - for stdout")
	generateCmd.Flags().IntVar(&genMaxChars, "max-chars", 0, "maximum section width (overrides CHUNK_MAX_CHARS)")
	generateCmd.Flags().IntVar(&genMinLen, "min-len", -1, "minimum section length (overrides CHUNK_MIN_LEN)")
	generateCmd.Flags().IntVarP(&genWorkers, "workers", "w", 0, "sections processed at once (overrides PIPELINE_WORKERS)")
	generateCmd.Flags().BoolVar(&genReport, "report", false, "write the full batch report instead of the MCQ list")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if genMaxChars > 0 {
		cfg.ChunkMaxChars = genMaxChars
	}
	if genMinLen >= 0 {
		cfg.ChunkMinLen = genMinLen
	}
	if genWorkers > 0 {
		cfg.Workers = genWorkers
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	text, err := readInput(cmd, genInput)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	sections := a.Chunker.Split(text)
	report, err := a.Pipeline.RunAllWithReport(ctx, sections)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	var payload any = report.MCQs
	if genReport {
		payload = report
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := writeOutput(cmd, genOutput, data); err != nil {
		return err
	}

	cmd.PrintErrf("%d sections, %d accepted, %d rejected (run %s)\n",
		len(sections), report.Accepted, report.Rejected, report.RunID)
	return nil
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
