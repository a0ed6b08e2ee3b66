package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Criterion names one of the five weighted match dimensions. The same keys are
// sent as request weights and come back as score breakdown keys.
type Criterion string

const (
	CriterionScenario  Criterion = "scenario"
	CriterionTechReq   Criterion = "tech_req"
	CriterionTechStack Criterion = "tech_stack"
	CriterionCitySize  Criterion = "city_size"
	CriterionBudget    Criterion = "budget"
)

// Criteria returns the closed criterion set in display order.
func Criteria() []Criterion {
	return []Criterion{
		CriterionScenario,
		CriterionTechReq,
		CriterionTechStack,
		CriterionCitySize,
		CriterionBudget,
	}
}

// ParseCriterion maps a wire key onto the closed set.
func ParseCriterion(key string) (Criterion, error) {
	for _, c := range Criteria() {
		if string(c) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCriterion, key)
}

var ErrUnknownCriterion = errors.New("unknown criterion")

// WeightStep is the slider granularity. Set accepts any value in range.
const WeightStep = 0.05

// WeightVector holds five independent importance weights in [0,1].
// They are not a distribution and are never normalized to sum to 1.
type WeightVector struct {
	Scenario  float64
	TechReq   float64
	TechStack float64
	CitySize  float64
	Budget    float64
}

// DefaultWeights returns the session-start weights.
func DefaultWeights() WeightVector {
	return WeightVector{
		Scenario:  0.2,
		TechReq:   0.2,
		TechStack: 0.2,
		CitySize:  0.2,
		Budget:    0.2,
	}
}

// Set stores value for criterion, clamped into [0,1].
func (w *WeightVector) Set(c Criterion, value float64) error {
	p, err := w.field(c)
	if err != nil {
		return err
	}
	*p = clampUnit(value)
	return nil
}

// Get returns the current weight of criterion.
func (w *WeightVector) Get(c Criterion) (float64, error) {
	p, err := w.field(c)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// ToPayload returns the full fixed-key mapping exactly as held.
func (w WeightVector) ToPayload() map[string]float64 {
	return map[string]float64{
		string(CriterionScenario):  w.Scenario,
		string(CriterionTechReq):   w.TechReq,
		string(CriterionTechStack): w.TechStack,
		string(CriterionCitySize):  w.CitySize,
		string(CriterionBudget):    w.Budget,
	}
}

// Sum returns the total of all weights. Display only.
func (w WeightVector) Sum() float64 {
	return w.Scenario + w.TechReq + w.TechStack + w.CitySize + w.Budget
}

func (w *WeightVector) field(c Criterion) (*float64, error) {
	switch c {
	case CriterionScenario:
		return &w.Scenario, nil
	case CriterionTechReq:
		return &w.TechReq, nil
	case CriterionTechStack:
		return &w.TechStack, nil
	case CriterionCitySize:
		return &w.CitySize, nil
	case CriterionBudget:
		return &w.Budget, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, string(c))
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
