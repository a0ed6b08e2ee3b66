package analyze

import (
	"encoding/json"

	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
)

// AnalyzeRequest is the wire payload of POST /analyze.
type AnalyzeRequest struct {
	ApplicationScenarios string `json:"applicationScenarios"`
	// TechnicalRequirements is itself a JSON document carried as a string.
	TechnicalRequirements string             `json:"technicalRequirements"`
	TechnologyStack       string             `json:"technologyStack"`
	CitySize              string             `json:"citySize"`
	BudgetRange           string             `json:"budgetRange"`
	Weights               map[string]float64 `json:"weights"`
}

// TechnicalRequirements is the inner document of AnalyzeRequest. Field order
// is part of the wire format.
type TechnicalRequirements struct {
	TPS           int    `json:"tps"`
	Latency       int    `json:"latency"`
	SecurityLevel string `json:"security_level"`
}

// Build serializes a profile and its weights. The budget range is forwarded as
// typed; the scorer rejects it if it does not parse.
func Build(form *profile.Form, weights scoring.WeightVector) AnalyzeRequest {
	return AnalyzeRequest{
		ApplicationScenarios:  form.Scenario.Text(),
		TechnicalRequirements: encodeTechnicalRequirements(form),
		TechnologyStack:       form.TechnologyStack,
		CitySize:              string(form.CitySize),
		BudgetRange:           form.BudgetRangeRaw,
		Weights:               weights.ToPayload(),
	}
}

func encodeTechnicalRequirements(form *profile.Form) string {
	data, _ := json.Marshal(TechnicalRequirements{
		TPS:           form.TPS,
		Latency:       form.LatencyMs,
		SecurityLevel: string(form.SecurityLevel),
	})
	return string(data)
}
