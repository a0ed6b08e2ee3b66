package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
)

// stubProfileForm swaps the interactive form for edit and records the values
// the form was opened with.
func stubProfileForm(t *testing.T, edit func(a *profileAnswers)) *profileAnswers {
	t.Helper()
	seen := &profileAnswers{}
	orig := askProfile
	askProfile = func(_ io.Reader, _ io.Writer, a *profileAnswers) error {
		*seen = *a
		seen.Weights = make(map[scoring.Criterion]string, len(a.Weights))
		for k, v := range a.Weights {
			seen.Weights[k] = v
		}
		edit(a)
		return nil
	}
	t.Cleanup(func() { askProfile = orig })
	return seen
}

func TestInteractiveAnalyze_FormValuesReachRequest(t *testing.T) {
	var req analyze.AnalyzeRequest
	srv := newScorer(t, &req)

	seen := stubProfileForm(t, func(a *profileAnswers) {
		a.Tags = []string{"Smart Traffic", "Tourism", "Land Registry"}
		a.TPS = "1500"
		a.Latency = "50"
		a.Security = "low"
		a.Stack = "Ethereum"
		a.City = "small"
		a.Budget = "[1000,5000]"
		a.Weights[scoring.CriterionBudget] = " 0.75 "
	})

	_, err := runCLI(t, "analyze", "--scorer-url", srv.URL, "-i",
		"--tag", "Energy Grid", "--tag", "Smart Traffic", "--weight", "scenario=0.4")
	require.NoError(t, err)

	assert.Equal(t, []string{"Energy Grid", "Smart Traffic"}, seen.Tags)
	assert.Equal(t, "1000", seen.TPS)
	assert.Equal(t, "0.40", seen.Weights[scoring.CriterionScenario])

	assert.Equal(t, "Smart Traffic, Tourism, Land Registry", req.ApplicationScenarios)
	assert.Equal(t, `{"tps":1500,"latency":50,"security_level":"low"}`, req.TechnicalRequirements)
	assert.Equal(t, "Ethereum", req.TechnologyStack)
	assert.Equal(t, "small", req.CitySize)
	assert.Equal(t, "[1000,5000]", req.BudgetRange)
	assert.Equal(t, 0.75, req.Weights["budget"])
	assert.Equal(t, 0.4, req.Weights["scenario"])
}

func TestInteractiveAnalyze_FreeTextReplacesTags(t *testing.T) {
	var req analyze.AnalyzeRequest
	srv := newScorer(t, &req)

	stubProfileForm(t, func(a *profileAnswers) {
		a.Tags = append(a.Tags, "Tourism")
		a.FreeText = "port logistics"
	})

	_, err := runCLI(t, "analyze", "--scorer-url", srv.URL, "-i", "--tag", "Energy Grid")
	require.NoError(t, err)
	assert.Equal(t, "port logistics", req.ApplicationScenarios)
}

func TestInteractiveAnalyze_BlankFreeTextKeepsTagText(t *testing.T) {
	var req analyze.AnalyzeRequest
	srv := newScorer(t, &req)

	stubProfileForm(t, func(a *profileAnswers) {
		a.FreeText = "   "
	})

	_, err := runCLI(t, "analyze", "--scorer-url", srv.URL, "-i", "--tag", "Energy Grid", "--tag", "Tourism")
	require.NoError(t, err)
	assert.Equal(t, "Energy Grid, Tourism", req.ApplicationScenarios)
}

func TestInteractiveAnalyze_FormErrorStopsSubmit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	orig := askProfile
	askProfile = func(io.Reader, io.Writer, *profileAnswers) error { return errors.New("user aborted") }
	t.Cleanup(func() { askProfile = orig })

	_, err := runCLI(t, "analyze", "--scorer-url", srv.URL, "-i")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user aborted")
	assert.Zero(t, calls.Load())
}

func TestApplyAnswers_KeepsTagOrder(t *testing.T) {
	s := session.New(&session.Deps{}, scoring.DefaultWeights())
	for _, tag := range []string{"Energy Grid", "Smart Traffic", "Tourism"} {
		require.NoError(t, s.ToggleTag(tag))
	}
	before := s.View().Profile.SelectedTags

	a := baseAnswers()
	a.Tags = []string{"Land Registry", "Energy Grid", "Tourism"}
	require.NoError(t, applyAnswers(s, before, a))

	p := s.View().Profile
	assert.Equal(t, []string{"Energy Grid", "Tourism", "Land Registry"}, p.SelectedTags)
	assert.Equal(t, "Energy Grid, Tourism, Land Registry", p.ScenarioText)
}

func TestApplyAnswers_RejectsBadWeight(t *testing.T) {
	s := session.New(&session.Deps{}, scoring.DefaultWeights())

	a := baseAnswers()
	a.Weights[scoring.CriterionCitySize] = "lots"
	err := applyAnswers(s, nil, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city_size")
}

func TestValidateWeight(t *testing.T) {
	assert.NoError(t, validateWeight("0"))
	assert.NoError(t, validateWeight(" 1 "))
	assert.Error(t, validateWeight("1.2"))
	assert.Error(t, validateWeight("-0.1"))
	assert.Error(t, validateWeight("high"))
}

func baseAnswers() *profileAnswers {
	a := &profileAnswers{
		TPS:      "1000",
		Latency:  "200",
		Security: "medium",
		City:     "medium",
		Budget:   "[0,100000]",
		Weights:  make(map[scoring.Criterion]string),
	}
	for _, c := range scoring.Criteria() {
		a.Weights[c] = "0.2"
	}
	return a
}
