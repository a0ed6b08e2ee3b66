package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
)

// profileAnswers holds the form's values as the user typed them.
type profileAnswers struct {
	Tags     []string
	FreeText string
	TPS      string
	Latency  string
	Security string
	Stack    string
	City     string
	Budget   string
	Weights  map[scoring.Criterion]string
}

// askProfile is a test hook for replacing the interactive form in tests.
var askProfile = defaultAskProfile

// runProfileForm lets the user edit the session's profile and weights. The
// form starts from the session's current values.
func runProfileForm(in io.Reader, out io.Writer, s *session.Session) error {
	view := s.View()
	p := view.Profile

	a := &profileAnswers{
		Tags:     slices.Clone(p.SelectedTags),
		TPS:      strconv.Itoa(p.TPS),
		Latency:  strconv.Itoa(p.LatencyMs),
		Security: string(p.SecurityLevel),
		Stack:    p.TechnologyStack,
		City:     string(p.CitySize),
		Budget:   p.BudgetRangeRaw,
		Weights:  make(map[scoring.Criterion]string, len(scoring.Criteria())),
	}
	for _, c := range scoring.Criteria() {
		a.Weights[c] = strconv.FormatFloat(view.Weights[string(c)], 'f', 2, 64)
	}

	if err := askProfile(in, out, a); err != nil {
		return fmt.Errorf("profile form: %w", err)
	}
	return applyAnswers(s, p.SelectedTags, a)
}

func defaultAskProfile(in io.Reader, out io.Writer, a *profileAnswers) error {
	weights := make(map[scoring.Criterion]*string, len(scoring.Criteria()))
	weightInputs := make([]huh.Field, 0, len(scoring.Criteria()))
	for _, c := range scoring.Criteria() {
		v := a.Weights[c]
		weights[c] = &v
		weightInputs = append(weightInputs, huh.NewInput().
			Title("Weight: "+scoring.DisplayLabel(string(c))).
			Description("0 to 1").
			Value(weights[c]).
			Validate(validateWeight))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Application scenarios").
				Options(huh.NewOptions(profile.ScenarioTags...)...).
				Value(&a.Tags),
			huh.NewInput().
				Title("Scenario description").
				Description("Optional. Replaces the text built from the tags").
				Value(&a.FreeText),
		),
		huh.NewGroup(
			huh.NewInput().Title("Transactions per second").Value(&a.TPS).Validate(validateField(profile.FieldTPS)),
			huh.NewInput().Title("Latency (ms)").Value(&a.Latency).Validate(validateField(profile.FieldLatencyMs)),
			huh.NewSelect[string]().
				Title("Security level").
				Options(enumOptions(profile.SecurityLevels)...).
				Value(&a.Security),
			huh.NewInput().Title("Technology stack").Value(&a.Stack),
			huh.NewSelect[string]().
				Title("City size").
				Options(enumOptions(profile.CitySizes)...).
				Value(&a.City),
			huh.NewInput().Title("Budget range").Placeholder(profile.DefaultBudgetRange).Value(&a.Budget),
		),
		huh.NewGroup(weightInputs...),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return err
	}
	for c, v := range weights {
		a.Weights[c] = *v
	}
	return nil
}

// applyAnswers writes the form's values into the session. Deselected tags are
// dropped first so kept tags hold their place in the scenario text; new tags
// are appended in the order a.Tags lists them. huh's multi-select reports its
// selection in option order, so from the form that is vocabulary order.
func applyAnswers(s *session.Session, before []string, a *profileAnswers) error {
	for _, tag := range before {
		if !slices.Contains(a.Tags, tag) {
			if err := s.ToggleTag(tag); err != nil {
				return err
			}
		}
	}
	for _, tag := range a.Tags {
		if !slices.Contains(before, tag) {
			if err := s.ToggleTag(tag); err != nil {
				return err
			}
		}
	}
	if strings.TrimSpace(a.FreeText) != "" {
		s.EditScenario(a.FreeText)
	}

	updates := []struct {
		field profile.Field
		value string
	}{
		{profile.FieldTPS, a.TPS},
		{profile.FieldLatencyMs, a.Latency},
		{profile.FieldSecurityLevel, a.Security},
		{profile.FieldTechnologyStack, a.Stack},
		{profile.FieldCitySize, a.City},
		{profile.FieldBudgetRange, a.Budget},
	}
	for _, u := range updates {
		if err := s.UpdateField(string(u.field), u.value); err != nil {
			return err
		}
	}
	for _, c := range scoring.Criteria() {
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Weights[c]), 64)
		if err != nil {
			return fmt.Errorf("weight %s: %w", c, err)
		}
		if err := s.SetWeight(c, v); err != nil {
			return err
		}
	}
	return nil
}

func validateField(field profile.Field) func(string) error {
	return func(v string) error {
		return profile.NewForm().Update(field, v)
	}
}

func validateWeight(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("enter a number between 0 and 1")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("weight must be between 0 and 1")
	}
	return nil
}

func enumOptions[T ~string](values []T) []huh.Option[string] {
	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(string(v), string(v))
	}
	return opts
}
