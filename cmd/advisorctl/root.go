package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
)

var version = "dev"

type rootOptions struct {
	scorerURL   string
	scorerToken string
	timeout     time.Duration
	debug       bool
}

func (o *rootOptions) client() analyze.Client {
	return analyze.NewHTTPClient(o.scorerURL, o.scorerToken, o.timeout)
}

// logger writes diagnostics to stderr so stdout stays clean for results.
func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "advisorctl",
		Short: "Query the blockchain pattern advisor from a terminal",
		Long: `advisorctl submits a smart-city requirements profile with per-criterion
weights to the matching service and prints the ranked blockchain cases.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.scorerURL, "scorer-url", envOr("ADVISOR_SCORER_URL", "http://localhost:8000"), "Base URL of the matching service")
	cmd.PersistentFlags().StringVar(&opts.scorerToken, "scorer-token", os.Getenv("ADVISOR_SCORER_TOKEN"), "Bearer token for the matching service")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newVocabularyCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
