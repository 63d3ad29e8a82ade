package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/educoach-ai/educoach/internal/coach"
	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/llm"
)

const defaultEnvFile = ".env"

var rootCmd = &cobra.Command{
	Use:   "educoach",
	Short: "English reading assessment and study coach",
	Long: "EduCoach serves a reading passage with three questions, scores a student's " +
		"answers with an LLM and recommends what to study next.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(cmd); err != nil {
			return err
		}
		logger, err := newLogger(cmd, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", defaultEnvFile, "Path to a .env file to load before reading the environment")
	rootCmd.PersistentFlags().String("content", "", "Path to a content YAML file (overrides EDUCOACH_CONTENT; default is the built-in content)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(passageCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnv loads the --env-file. A missing default file is not an error.
func loadEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// newLogger builds the process logger from --debug and --log-format.
func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

// resolveContentPath returns the --content flag, then EDUCOACH_CONTENT.
func resolveContentPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		return p
	}
	return os.Getenv("EDUCOACH_CONTENT")
}

func loadContent(cmd *cobra.Command) (*content.Content, error) {
	c, err := content.Load(resolveContentPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return c, nil
}

// newCoach builds the pipeline over the configured LLM provider. A provider
// without credentials is not fatal: evaluations then report fallback scores.
func newCoach(cmd *cobra.Command, c *content.Content) (*coach.Coach, error) {
	logger := slog.Default()

	provider, err := llm.NewProvider(cmd.Context(), llm.ConfigFromEnv(), logger)
	if err != nil {
		var nc *llm.ErrNotConfigured
		if !errors.As(err, &nc) {
			return nil, fmt.Errorf("LLM provider: %w", err)
		}
		logger.Warn("LLM provider not configured, evaluations will return fallback scores",
			"provider", nc.Provider, "error", err)
		provider = llm.Unconfigured(nc)
	}

	return coach.New(provider, c, logger), nil
}
