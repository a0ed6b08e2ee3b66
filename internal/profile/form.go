package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type SecurityLevel string

const (
	SecurityHigh   SecurityLevel = "high"
	SecurityMedium SecurityLevel = "medium"
	SecurityLow    SecurityLevel = "low"
)

var SecurityLevels = []SecurityLevel{SecurityHigh, SecurityMedium, SecurityLow}

type CitySize string

const (
	CitySmall  CitySize = "small"
	CityMedium CitySize = "medium"
	CityLarge  CitySize = "large"
)

var CitySizes = []CitySize{CitySmall, CityMedium, CityLarge}

// Field names a single editable profile input.
type Field string

const (
	FieldScenarioText    Field = "scenarioText"
	FieldTPS             Field = "tps"
	FieldLatencyMs       Field = "latencyMs"
	FieldSecurityLevel   Field = "securityLevel"
	FieldTechnologyStack Field = "technologyStack"
	FieldCitySize        Field = "citySize"
	FieldBudgetRange     Field = "budgetRange"
)

var fieldAliases = map[string]Field{
	"scenarioText":     FieldScenarioText,
	"scenario_text":    FieldScenarioText,
	"tps":              FieldTPS,
	"latencyMs":        FieldLatencyMs,
	"latency_ms":       FieldLatencyMs,
	"latency":          FieldLatencyMs,
	"securityLevel":    FieldSecurityLevel,
	"security_level":   FieldSecurityLevel,
	"technologyStack":  FieldTechnologyStack,
	"technology_stack": FieldTechnologyStack,
	"citySize":         FieldCitySize,
	"city_size":        FieldCitySize,
	"budgetRange":      FieldBudgetRange,
	"budget_range":     FieldBudgetRange,
	"budgetRangeRaw":   FieldBudgetRange,
}

var (
	ErrUnknownField = errors.New("unknown profile field")
	ErrInvalidValue = errors.New("invalid field value")
)

// Defaults applied to every new form.
const (
	DefaultTPS         = 1000
	DefaultLatencyMs   = 200
	DefaultBudgetRange = "[0,100000]"
)

// Form is the user-editable request profile. It is owned by one session and
// mutated one field at a time.
type Form struct {
	Scenario        Scenario
	TPS             int
	LatencyMs       int
	SecurityLevel   SecurityLevel
	TechnologyStack string
	CitySize        CitySize
	// BudgetRangeRaw is expected to look like "[min,max]" but is never parsed
	// here; the scorer owns that.
	BudgetRangeRaw string
}

func NewForm() *Form {
	return &Form{
		TPS:            DefaultTPS,
		LatencyMs:      DefaultLatencyMs,
		SecurityLevel:  SecurityMedium,
		CitySize:       CityMedium,
		BudgetRangeRaw: DefaultBudgetRange,
	}
}

// ParseField resolves a field name or one of its snake_case aliases.
func ParseField(name string) (Field, error) {
	if f, ok := fieldAliases[name]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Update sets exactly one field from its raw input. Rejected input leaves the
// previous value in place.
func (f *Form) Update(field Field, value string) error {
	switch field {
	case FieldScenarioText:
		f.Scenario.EditFreeText(value)
	case FieldTPS:
		n, err := parsePositiveInt(value)
		if err != nil {
			return fmt.Errorf("tps: %w", err)
		}
		f.TPS = n
	case FieldLatencyMs:
		n, err := parsePositiveInt(value)
		if err != nil {
			return fmt.Errorf("latencyMs: %w", err)
		}
		f.LatencyMs = n
	case FieldSecurityLevel:
		lvl, err := ParseSecurityLevel(value)
		if err != nil {
			return err
		}
		f.SecurityLevel = lvl
	case FieldTechnologyStack:
		f.TechnologyStack = value
	case FieldCitySize:
		size, err := ParseCitySize(value)
		if err != nil {
			return err
		}
		f.CitySize = size
	case FieldBudgetRange:
		f.BudgetRangeRaw = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidValue, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d is below 1", ErrInvalidValue, n)
	}
	return n, nil
}

func ParseSecurityLevel(raw string) (SecurityLevel, error) {
	v := SecurityLevel(strings.ToLower(strings.TrimSpace(raw)))
	for _, lvl := range SecurityLevels {
		if v == lvl {
			return lvl, nil
		}
	}
	return "", fmt.Errorf("%w: security level %q", ErrInvalidValue, raw)
}

func ParseCitySize(raw string) (CitySize, error) {
	v := CitySize(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range CitySizes {
		if v == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: city size %q", ErrInvalidValue, raw)
}

// Clone returns a copy safe to read while the original keeps changing.
func (f *Form) Clone() *Form {
	c := *f
	c.Scenario = f.Scenario.Clone()
	return &c
}

// Snapshot is the read-only view of a form.
type Snapshot struct {
	ScenarioText    string        `json:"scenario_text"`
	SelectedTags    []string      `json:"selected_tags"`
	TPS             int           `json:"tps"`
	LatencyMs       int           `json:"latency_ms"`
	SecurityLevel   SecurityLevel `json:"security_level"`
	TechnologyStack string        `json:"technology_stack"`
	CitySize        CitySize      `json:"city_size"`
	BudgetRangeRaw  string        `json:"budget_range"`
}

func (f *Form) Snapshot() Snapshot {
	tags := f.Scenario.Selected()
	if tags == nil {
		tags = []string{}
	}
	return Snapshot{
		ScenarioText:    f.Scenario.Text(),
		SelectedTags:    tags,
		TPS:             f.TPS,
		LatencyMs:       f.LatencyMs,
		SecurityLevel:   f.SecurityLevel,
		TechnologyStack: f.TechnologyStack,
		CitySize:        f.CitySize,
		BudgetRangeRaw:  f.BudgetRangeRaw,
	}
}
