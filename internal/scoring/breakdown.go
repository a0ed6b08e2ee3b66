package scoring

import (
	"fmt"
	"html"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// RadiusDomain is the fixed value range of every breakdown axis. Values outside
// it are plotted as-is.
var RadiusDomain = [2]float64{0, 1}

// DisplayLabel returns the user-facing name of a breakdown key. Only the label
// changes; the key itself stays as sent by the scorer.
func DisplayLabel(key string) string {
	if key == string(CriterionTechReq) {
		return "requirements"
	}
	return key
}

// Axis is one spoke of the radial breakdown.
type Axis struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Angle   float64 `json:"angle"`
	Percent string  `json:"percent"`
}

// Breakdown maps a per-criterion score map onto a radial chart model.
type Breakdown struct {
	Domain [2]float64 `json:"domain"`
	Axes   []Axis     `json:"axes"`
}

// NewBreakdown builds one axis per key. Known criteria come first in canonical
// order, any other keys follow sorted. The first axis points up and the rest
// follow clockwise.
func NewBreakdown(scores map[string]float64) *Breakdown {
	keys := orderedKeys(scores)
	b := &Breakdown{Domain: RadiusDomain, Axes: make([]Axis, 0, len(keys))}
	step := 0.0
	if len(keys) > 0 {
		step = 360 / float64(len(keys))
	}
	for i, k := range keys {
		v := scores[k]
		b.Axes = append(b.Axes, Axis{
			Key:     k,
			Label:   DisplayLabel(k),
			Value:   v,
			Angle:   normalizeDegrees(90 - float64(i)*step),
			Percent: formatPercent(v),
		})
	}
	return b
}

func orderedKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	seen := make(map[string]bool, len(scores))
	for _, c := range Criteria() {
		if _, ok := scores[string(c)]; ok {
			keys = append(keys, string(c))
			seen[string(c)] = true
		}
	}
	var rest []string
	for k := range scores {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Point returns the plotted offset of axis i from the chart centre for a chart
// whose domain maximum sits at outerRadius. Y grows downwards.
func (b *Breakdown) Point(i int, outerRadius float64) (x, y float64) {
	a := b.Axes[i]
	r := scaleRadius(a.Value, outerRadius)
	theta := a.Angle * math.Pi / 180
	return r * math.Cos(theta), -r * math.Sin(theta)
}

func scaleRadius(v, outerRadius float64) float64 {
	span := RadiusDomain[1] - RadiusDomain[0]
	return (v - RadiusDomain[0]) / span * outerRadius
}

// RenderSVG draws the chart as a standalone SVG document of size x size pixels.
// Grid rings mark the domain boundaries and quarter steps between them.
func (b *Breakdown) RenderSVG(w io.Writer, size int) error {
	if size <= 0 {
		size = 256
	}
	c := float64(size) / 2
	outer := c * 0.8

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", size, size, size, size)
	fmt.Fprintf(&sb, `<circle class="domain-min" cx="%.2f" cy="%.2f" r="1.5" fill="#9ca3af"/>`+"\n", c, c)
	for _, frac := range []float64{0.25, 0.5, 0.75} {
		fmt.Fprintf(&sb, `<circle class="grid" cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#e5e7eb"/>`+"\n", c, c, outer*frac)
	}
	fmt.Fprintf(&sb, `<circle class="domain-max" cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#9ca3af"/>`+"\n", c, c, outer)

	for i, a := range b.Axes {
		theta := a.Angle * math.Pi / 180
		ex, ey := c+outer*math.Cos(theta), c-outer*math.Sin(theta)
		fmt.Fprintf(&sb, `<line class="axis" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#e5e7eb"/>`+"\n", c, c, ex, ey)
		lx, ly := c+(outer+14)*math.Cos(theta), c-(outer+14)*math.Sin(theta)
		fmt.Fprintf(&sb, `<text class="label" x="%.2f" y="%.2f" font-size="12" text-anchor="middle" data-axis="%d">%s</text>`+"\n",
			lx, ly, i, html.EscapeString(a.Label))
	}

	if len(b.Axes) > 0 {
		pts := make([]string, len(b.Axes))
		for i := range b.Axes {
			x, y := b.Point(i, outer)
			pts[i] = fmt.Sprintf("%.2f,%.2f", c+x, c+y)
		}
		fmt.Fprintf(&sb, `<polygon class="match" points="%s" stroke="#4f46e5" fill="#6366f1" fill-opacity="0.6"/>`+"\n", strings.Join(pts, " "))
		for i, a := range b.Axes {
			x, y := b.Point(i, outer)
			fmt.Fprintf(&sb, `<circle class="value" cx="%.2f" cy="%.2f" r="3" fill="#4f46e5"><title>%s: %s</title></circle>`+"\n",
				c+x, c+y, html.EscapeString(a.Label), a.Percent)
		}
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// OverflowGlyph ends a text bar whose value lies beyond the domain maximum.
const OverflowGlyph = "▶"

// RenderText writes one bar per axis, barWidth cells for the full domain.
// Bars are capped at barWidth; values above the domain end in OverflowGlyph and
// negative or NaN values draw an empty bar.
func (b *Breakdown) RenderText(w io.Writer, barWidth int) error {
	if barWidth <= 0 {
		barWidth = 20
	}
	labelWidth := 0
	for _, a := range b.Axes {
		if n := runewidth.StringWidth(a.Label); n > labelWidth {
			labelWidth = n
		}
	}
	for _, a := range b.Axes {
		filled, overflow := barCells(a.Value, barWidth)
		tail := " "
		if overflow {
			tail = OverflowGlyph
		}
		line := fmt.Sprintf("%s  %s%s%s%5s\n",
			runewidth.FillRight(a.Label, labelWidth),
			strings.Repeat("█", filled),
			strings.Repeat("░", barWidth-filled),
			tail,
			a.Percent,
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// barCells is computed in float space so huge values never reach an int
// conversion.
func barCells(v float64, barWidth int) (filled int, overflow bool) {
	cells := scaleRadius(v, float64(barWidth))
	switch {
	case math.IsNaN(cells) || cells <= 0:
		return 0, false
	case cells > float64(barWidth):
		return barWidth, true
	}
	return int(math.Round(cells)), false
}
