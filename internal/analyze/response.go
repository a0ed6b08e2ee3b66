package analyze

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
)

//go:embed schemas/analyze_response.schema.json
var responseSchemaJSON string

var schemaPrinter = message.NewPrinter(language.English)

var responseSchema = mustCompileSchema(responseSchemaJSON, "analyze_response.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// BudgetRange is a numeric budget interval. Elements that did not coerce to a
// finite number are kept and encode as null.
type BudgetRange []float64

func (b BudgetRange) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !isFinite(f) {
			buf.WriteString("null")
			continue
		}
		data, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Recommendation is one ranked case, safe to render: every field has a typed
// value even when the scorer omitted or mangled it.
type Recommendation struct {
	Score                float64            `json:"score"`
	CaseName             string             `json:"case_name"`
	ApplicationScenarios string             `json:"application_scenarios"`
	TechnologyStack      []string           `json:"technology_stack"`
	CitySize             string             `json:"city_size"`
	BudgetRange          BudgetRange        `json:"budget_range"`
	MatchReasons         []string           `json:"match_reasons"`
	MatchBreakdown       map[string]float64 `json:"match_breakdown,omitempty"`
}

// Breakdown returns the radial view of the match breakdown, or nil when the
// scorer sent none.
func (r *Recommendation) Breakdown() *scoring.Breakdown {
	if r.MatchBreakdown == nil {
		return nil
	}
	return scoring.NewBreakdown(r.MatchBreakdown)
}

// Analysis is a normalized analyze response.
type Analysis struct {
	Recommendations []Recommendation `json:"recommendations"`
	SubmissionID    string           `json:"submission_id,omitempty"`
}

// Normalize validates and coerces a raw analyze response. It either returns
// every entry or fails as a whole with a *ShapeError.
func Normalize(raw []byte) (*Analysis, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, &ShapeError{Path: "$", Reason: "body is not valid JSON", Detail: err.Error()}
	}
	if err := responseSchema.Validate(doc); err != nil {
		shapeErr := locateShapeFault(doc)
		shapeErr.Detail = schemaDetail(err)
		return nil, shapeErr
	}

	top := doc.(map[string]any)
	items := top["recommendations"].([]any)

	out := &Analysis{
		Recommendations: make([]Recommendation, 0, len(items)),
		SubmissionID:    toText(top["submission_id"]),
	}
	for _, item := range items {
		out.Recommendations = append(out.Recommendations, normalizeEntry(item.(map[string]any)))
	}
	return out, nil
}

func normalizeEntry(m map[string]any) Recommendation {
	rec := Recommendation{
		Score:                toNumber(m["score"]),
		CaseName:             toText(m["case_name"]),
		ApplicationScenarios: toText(m["application_scenarios"]),
		TechnologyStack:      toTextList(m["technology_stack"]),
		CitySize:             toText(m["city_size"]),
		MatchReasons:         toTextList(m["match_reasons"]),
		MatchBreakdown:       toScoreMap(m["match_breakdown"]),
	}
	if _, present := m["score"]; !present || !isFinite(rec.Score) {
		rec.Score = 0
	}

	if arr, ok := m["budget_range"].([]any); ok {
		rec.BudgetRange = make(BudgetRange, len(arr))
		for i, v := range arr {
			rec.BudgetRange[i] = toNumber(v)
		}
	} else {
		rec.BudgetRange = BudgetRange{0, 0}
	}
	return rec
}

// schemaDetail flattens a validation error into "location: reason" lines.
func schemaDetail(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var lines []string
	collectSchemaErrors(ve, &lines)
	return strings.Join(lines, "; ")
}

func collectSchemaErrors(ve *jsonschema.ValidationError, lines *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*lines = append(*lines, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, lines)
	}
}

// locateShapeFault walks the document to name the first structural problem.
func locateShapeFault(doc any) *ShapeError {
	top, ok := doc.(map[string]any)
	if !ok {
		return &ShapeError{Path: "$", Reason: "expected an object, got " + jsonKind(doc)}
	}
	recs, present := top["recommendations"]
	if !present {
		return &ShapeError{Path: "$.recommendations", Reason: "missing"}
	}
	items, ok := recs.([]any)
	if !ok {
		return &ShapeError{Path: "$.recommendations", Reason: "expected an array, got " + jsonKind(recs)}
	}
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return &ShapeError{
				Path:   fmt.Sprintf("$.recommendations[%d]", i),
				Reason: "expected an object, got " + jsonKind(item),
			}
		}
	}
	return &ShapeError{Path: "$", Reason: "does not match the analyze response schema"}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
