package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
)

var numberPrinter = message.NewPrinter(language.English)

type analyzeOptions struct {
	scenario    string
	tags        []string
	tps         string
	latency     string
	security    string
	stack       string
	city        string
	budget      string
	weights     []string
	interactive bool
	jsonOut     bool
	barWidth    int
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit a requirements profile and print ranked cases",
		Long: `Build a requirements profile from flags (or an interactive form), submit it
with the criterion weights and print the ranked recommendations.

Scenario tags are applied in the order given; free text from --scenario is
applied last and replaces the tag-derived text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scenario, "scenario", "", "Free-text application scenario")
	f.StringArrayVar(&opts.tags, "tag", nil, "Scenario tag to select (repeatable)")
	f.StringVar(&opts.tps, "tps", "", "Required transactions per second")
	f.StringVar(&opts.latency, "latency", "", "Maximum latency in milliseconds")
	f.StringVar(&opts.security, "security", "", "Security level: high, medium or low")
	f.StringVar(&opts.stack, "stack", "", "Preferred technology stack")
	f.StringVar(&opts.city, "city", "", "City size: small, medium or large")
	f.StringVar(&opts.budget, "budget", "", `Budget range, e.g. "[0,100000]"`)
	f.StringArrayVar(&opts.weights, "weight", nil, "Criterion weight as criterion=value (repeatable)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Fill in the profile with an interactive form")
	f.BoolVar(&opts.jsonOut, "json", false, "Print the normalized recommendations as JSON")
	f.IntVar(&opts.barWidth, "bar-width", 20, "Width of the breakdown bars")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	logger := root.logger(cmd.ErrOrStderr())
	s := session.New(&session.Deps{Scorer: root.client(), Logger: logger}, scoring.DefaultWeights())

	if err := applyFlags(cmd, s, opts); err != nil {
		return err
	}
	if opts.interactive {
		if err := runProfileForm(cmd.InOrStdin(), cmd.OutOrStdout(), s); err != nil {
			return err
		}
	}

	logger.Debug("submitting profile", "scorer", root.scorerURL)
	result, err := s.Analyze(cmd.Context())
	if err != nil {
		logger.Debug("analysis failed", "error", err)
		return newAnalysisFailure(err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printRecommendations(out, result, opts.barWidth)
}

func applyFlags(cmd *cobra.Command, s *session.Session, opts *analyzeOptions) error {
	for _, tag := range opts.tags {
		if err := s.ToggleTag(tag); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("scenario") {
		s.EditScenario(opts.scenario)
	}

	fields := []struct {
		flag  string
		field profile.Field
		value string
	}{
		{"tps", profile.FieldTPS, opts.tps},
		{"latency", profile.FieldLatencyMs, opts.latency},
		{"security", profile.FieldSecurityLevel, opts.security},
		{"stack", profile.FieldTechnologyStack, opts.stack},
		{"city", profile.FieldCitySize, opts.city},
		{"budget", profile.FieldBudgetRange, opts.budget},
	}
	for _, f := range fields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if err := s.UpdateField(string(f.field), f.value); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}

	for _, raw := range opts.weights {
		c, v, err := parseWeight(raw)
		if err != nil {
			return err
		}
		if err := s.SetWeight(c, v); err != nil {
			return err
		}
	}
	return nil
}

// analysisFailure prints only the message the user should see and keeps the
// cause reachable for errors.Is.
type analysisFailure struct {
	msg string
	err error
}

func newAnalysisFailure(err error) *analysisFailure {
	msg := analyze.UserMessage(err)
	if msg != analyze.FailureMessage {
		msg = analyze.FailureMessage + ": " + msg
	}
	return &analysisFailure{msg: msg, err: err}
}

func (e *analysisFailure) Error() string { return e.msg }
func (e *analysisFailure) Unwrap() error { return e.err }

// parseWeight reads a "criterion=value" pair.
func parseWeight(raw string) (scoring.Criterion, float64, error) {
	key, val, ok := strings.Cut(raw, "=")
	if !ok {
		return "", 0, fmt.Errorf("--weight %q: expected criterion=value", raw)
	}
	c, err := scoring.ParseCriterion(strings.TrimSpace(key))
	if err != nil {
		return "", 0, fmt.Errorf("--weight %q: %w", raw, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, fmt.Errorf("--weight %q: value is not a number", raw)
	}
	return c, v, nil
}

func printRecommendations(w io.Writer, a *analyze.Analysis, barWidth int) error {
	if len(a.Recommendations) == 0 {
		fmt.Fprintln(w, "No matching cases.")
		return nil
	}
	for i, rec := range a.Recommendations {
		fmt.Fprintf(w, "%d. %s  (score %.2f)\n", i+1, displayName(rec.CaseName), rec.Score)
		if rec.ApplicationScenarios != "" {
			fmt.Fprintf(w, "   Scenarios: %s\n", rec.ApplicationScenarios)
		}
		if len(rec.TechnologyStack) > 0 {
			fmt.Fprintf(w, "   Stack:     %s\n", strings.Join(rec.TechnologyStack, ", "))
		}
		if rec.CitySize != "" {
			fmt.Fprintf(w, "   City size: %s\n", rec.CitySize)
		}
		fmt.Fprintf(w, "   Budget:    %s\n", formatBudget(rec.BudgetRange))
		for _, reason := range rec.MatchReasons {
			fmt.Fprintf(w, "   - %s\n", reason)
		}
		if b := rec.Breakdown(); b != nil {
			var sb strings.Builder
			if err := b.RenderText(&sb, barWidth); err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}
	if a.SubmissionID != "" {
		fmt.Fprintf(w, "Submission %s. Download the report with: advisorctl report %s\n", a.SubmissionID, a.SubmissionID)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed case)"
	}
	return name
}

// formatBudget renders a budget range with grouped digits. Values that did
// not survive coercion print as n/a.
func formatBudget(b analyze.BudgetRange) string {
	parts := make([]string, len(b))
	for i, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			parts[i] = "n/a"
			continue
		}
		parts[i] = numberPrinter.Sprintf("%.0f", v)
	}
	return strings.Join(parts, " to ")
}
