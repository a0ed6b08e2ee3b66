package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// toNumber converts an untyped JSON value the way the browser client's
// Number() did: numbers pass, numeric strings parse (including 0x, 0o and 0b
// integers), blank strings and null become 0, booleans become 1 or 0, a
// one-element array converts its element and everything else is NaN.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case float64:
		return n
	case int:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		return parseNumericString(n)
	case []any:
		switch len(n) {
		case 0:
			return 0
		case 1:
			return arrayElementNumber(n[0])
		}
	}
	return math.NaN()
}

// arrayElementNumber converts the sole element of an array, which JS first
// turns into its string form.
func arrayElementNumber(v any) float64 {
	switch v.(type) {
	case bool:
		return math.NaN()
	case map[string]any:
		return math.NaN()
	}
	return toNumber(v)
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseNumericString(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if digits[0] == '+' || digits[0] == '-' {
				return math.NaN()
			}
			i, ok := new(big.Int).SetString(digits, base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toText renders scalars as text and drops structured values.
func toText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64, bool:
		return fmt.Sprint(s)
	}
	return ""
}

// toTextList accepts an array of scalars or a comma-separated string. The
// result is never nil.
func toTextList(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s := toText(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(list, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// toScoreMap keeps the finite numeric entries of an object. Anything that is
// not an object yields nil.
func toScoreMap(v any) map[string]float64 {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(obj))
	for k, raw := range obj {
		if raw == nil {
			continue
		}
		if f := toNumber(raw); isFinite(f) {
			out[k] = f
		}
	}
	return out
}
