package scoring

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "requirements", DisplayLabel("tech_req"))
	assert.Equal(t, "scenario", DisplayLabel("scenario"))
	assert.Equal(t, "budget", DisplayLabel("budget"))
	assert.Equal(t, "custom_axis", DisplayLabel("custom_axis"))
}

func TestNewBreakdownOrderingAndLabels(t *testing.T) {
	b := NewBreakdown(map[string]float64{
		"zeta":       0.1,
		"budget":     0.4,
		"tech_req":   0.9,
		"scenario":   0.7,
		"city_size":  0.3,
		"tech_stack": 0.5,
	})
	require.Len(t, b.Axes, 6)

	keys := make([]string, len(b.Axes))
	for i, a := range b.Axes {
		keys[i] = a.Key
	}
	assert.Equal(t, []string{"scenario", "tech_req", "tech_stack", "city_size", "budget", "zeta"}, keys)
	assert.Equal(t, "requirements", b.Axes[1].Label)
	assert.Equal(t, "tech_req", b.Axes[1].Key, "data key must stay tech_req")
	assert.Equal(t, "90%", b.Axes[1].Percent)
	assert.Equal(t, [2]float64{0, 1}, b.Domain)
	assert.InDelta(t, 90.0, b.Axes[0].Angle, 1e-9)
	assert.InDelta(t, 30.0, b.Axes[1].Angle, 1e-9)
}

func TestNewBreakdownEmpty(t *testing.T) {
	b := NewBreakdown(nil)
	assert.Empty(t, b.Axes)

	var buf bytes.Buffer
	require.NoError(t, b.RenderSVG(&buf, 200))
	assert.NotContains(t, buf.String(), "<polygon")
}

func TestPointsStayWithinDomainBoundary(t *testing.T) {
	b := NewBreakdown(map[string]float64{
		"scenario":   0,
		"tech_req":   1,
		"tech_stack": 0.25,
		"city_size":  0.999,
		"budget":     0.5,
	})
	const outer = 100.0
	for i, a := range b.Axes {
		x, y := b.Point(i, outer)
		r := math.Hypot(x, y)
		assert.LessOrEqual(t, r, outer+1e-9, "axis %s escaped the outer ring", a.Key)
		assert.GreaterOrEqual(t, r, 0.0)
	}

	x, y := b.Point(0, outer)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	// tech_req at 1.0 sits exactly on the domain-max ring
	x, y = b.Point(1, outer)
	assert.InDelta(t, outer, math.Hypot(x, y), 1e-9)
}

func TestPointDoesNotClampOverflow(t *testing.T) {
	b := NewBreakdown(map[string]float64{"scenario": 1.5})
	x, y := b.Point(0, 10)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, -15, y, 1e-9)
}

func TestRenderSVG(t *testing.T) {
	b := NewBreakdown(map[string]float64{"tech_req": 0.6, "budget": 0.2, "scenario": 0.8})

	var buf bytes.Buffer
	require.NoError(t, b.RenderSVG(&buf, 256))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `class="domain-max"`)
	assert.Contains(t, out, `class="domain-min"`)
	assert.Contains(t, out, ">requirements</text>")
	assert.NotContains(t, out, ">tech_req</text>")
	assert.Contains(t, out, "<title>requirements: 60%</title>")
	assert.Equal(t, 3, strings.Count(out, `class="value"`))
}

func TestRenderText(t *testing.T) {
	b := NewBreakdown(map[string]float64{"tech_req": 0.5, "budget": 1.0})

	var buf bytes.Buffer
	require.NoError(t, b.RenderText(&buf, 10))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "requirements  "))
	assert.Equal(t, 5, strings.Count(lines[0], "█"))
	assert.Equal(t, 5, strings.Count(lines[0], "░"))
	assert.True(t, strings.HasSuffix(lines[0], "50%"))

	assert.True(t, strings.HasPrefix(lines[1], "budget        "))
	assert.Equal(t, 10, strings.Count(lines[1], "█"))
	assert.True(t, strings.HasSuffix(lines[1], "100%"))
}

func TestRenderTextCapsOversizedValues(t *testing.T) {
	for _, v := range []float64{1.5, 1e9, 1e14, 1e300, math.Inf(1)} {
		b := NewBreakdown(map[string]float64{"budget": v})

		var buf bytes.Buffer
		require.NotPanics(t, func() {
			require.NoError(t, b.RenderText(&buf, 20))
		}, "value %g", v)
		line := buf.String()
		assert.Equal(t, 20, strings.Count(line, "█"), "value %g", v)
		assert.Equal(t, 0, strings.Count(line, "░"), "value %g", v)
		assert.Contains(t, line, OverflowGlyph, "value %g", v)
	}

	// the chart model itself is left unclamped
	b := NewBreakdown(map[string]float64{"budget": 1e14})
	assert.Equal(t, 1e14, b.Axes[0].Value)
}

func TestRenderTextEmptyBarForNegativeAndNaN(t *testing.T) {
	for _, v := range []float64{-1e300, -0.3, math.NaN()} {
		b := NewBreakdown(map[string]float64{"budget": v})

		var buf bytes.Buffer
		require.NoError(t, b.RenderText(&buf, 10))
		line := buf.String()
		assert.Equal(t, 0, strings.Count(line, "█"), "value %g", v)
		assert.Equal(t, 10, strings.Count(line, "░"), "value %g", v)
		assert.NotContains(t, line, OverflowGlyph)
	}
}
