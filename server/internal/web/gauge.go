package web

import (
	"fmt"
	"math"
)

// Gauge geometry, in SVG user units. The dial is the upper half of a circle
// centred at (gaugeCX, gaugeCY); 0 sits at the left end and 1 at the right.
const (
	gaugeCX     = 150.0
	gaugeCY     = 150.0
	gaugeRadius = 110.0
	gaugeWidth  = 30.0
)

// band is one coloured range of the dial.
type band struct {
	From, To float64
	Color    string
}

// gaugeBands colour 0-30% green, 30-70% yellow and 70-100% red.
var gaugeBands = []band{
	{0, 0.3, "#90ee90"},
	{0.3, 0.7, "#ffeb3b"},
	{0.7, 1, "#f44336"},
}

// Arc is a stroked SVG path.
type Arc struct {
	Path  string
	Color string
}

// Line is an SVG line segment.
type Line struct {
	X1, Y1, X2, Y2 string
}

// Gauge is a pre-computed semicircular dial.
type Gauge struct {
	Bands  []Arc
	Value  Arc
	Marker Line
	Label  string
	Width  float64
}

// newGauge builds a dial showing prob with a marker at threshold.
func newGauge(prob, threshold float64) Gauge {
	g := Gauge{
		Value: Arc{Path: arcPath(0, clamp01(prob), gaugeRadius), Color: "#1f3b57"},
		Label: fmt.Sprintf("%.0f%%", prob*100),
		Width: gaugeWidth,
	}
	for _, b := range gaugeBands {
		g.Bands = append(g.Bands, Arc{Path: arcPath(b.From, b.To, gaugeRadius), Color: b.Color})
	}

	inner := gaugeRadius - gaugeWidth*0.75
	outer := gaugeRadius + gaugeWidth*0.75
	x1, y1 := point(clamp01(threshold), inner)
	x2, y2 := point(clamp01(threshold), outer)
	g.Marker = Line{X1: coord(x1), Y1: coord(y1), X2: coord(x2), Y2: coord(y2)}
	return g
}

// point maps a 0-1 dial position at radius r to SVG coordinates.
func point(v, r float64) (x, y float64) {
	theta := math.Pi * (1 - v)
	return gaugeCX + r*math.Cos(theta), gaugeCY - r*math.Sin(theta)
}

// arcPath draws the dial from position from to position to. Every arc spans
// at most half a turn, so the large-arc flag is always 0.
func arcPath(from, to, r float64) string {
	x0, y0 := point(from, r)
	x1, y1 := point(to, r)
	return fmt.Sprintf("M %s %s A %s %s 0 0 1 %s %s",
		coord(x0), coord(y0), coord(r), coord(r), coord(x1), coord(y1))
}

func coord(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
