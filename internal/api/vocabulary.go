package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
)

type CriterionInfo struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Default float64 `json:"default"`
}

// VocabularyResponse is everything a client needs to render the form.
type VocabularyResponse struct {
	ScenarioTags   []string                `json:"scenario_tags"`
	Criteria       []CriterionInfo         `json:"criteria"`
	WeightStep     float64                 `json:"weight_step"`
	SecurityLevels []profile.SecurityLevel `json:"security_levels"`
	CitySizes      []profile.CitySize      `json:"city_sizes"`
	Defaults       profile.Snapshot        `json:"defaults"`
}

func NewVocabulary() VocabularyResponse {
	defaults := scoring.DefaultWeights()
	criteria := make([]CriterionInfo, 0, len(scoring.Criteria()))
	for _, c := range scoring.Criteria() {
		v, _ := defaults.Get(c)
		criteria = append(criteria, CriterionInfo{
			Key:     string(c),
			Label:   scoring.DisplayLabel(string(c)),
			Default: v,
		})
	}
	return VocabularyResponse{
		ScenarioTags:   profile.ScenarioTags,
		Criteria:       criteria,
		WeightStep:     scoring.WeightStep,
		SecurityLevels: profile.SecurityLevels,
		CitySizes:      profile.CitySizes,
		Defaults:       profile.NewForm().Snapshot(),
	}
}

func Vocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewVocabulary())
}
