// Package plotsvg renders a report's time series as a minimal hand-rolled
// SVG line chart for `flood plot`, built directly with fmt.Fprintf and
// strings.Builder; see DESIGN.md for why this stays off a plotting library.
package plotsvg

import (
	"fmt"
	"strings"

	"flood/internal/report"
)

const (
	width      = 900
	height     = 360
	marginLeft = 60
	marginY    = 30
)

// Series is one plotted line: a label plus one y-value per report time
// bucket, already extracted by the caller (throughput, a chosen percentile,
// or success rate).
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// Render draws one or more Series sharing a common x-axis (bucket index)
// onto a single SVG chart and returns the document as a string.
func Render(title string, series []Series) string {
	var b strings.Builder
	n := 0
	maxV := 0.0
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
		for _, v := range s.Values {
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxV == 0 {
		maxV = 1
	}
	if n < 2 {
		n = 2
	}

	plotW := float64(width - marginLeft - 20)
	plotH := float64(height - 2*marginY)

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#1a1a1a"/>`, width, height)
	fmt.Fprintf(&b, `<text x="%d" y="20" fill="#fafafa" font-family="monospace" font-size="14">%s</text>`, marginLeft, escapeXML(title))

	// axes
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#767676"/>`, marginLeft, height-marginY, width-20, height-marginY)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#767676"/>`, marginLeft, marginY, marginLeft, height-marginY)
	fmt.Fprintf(&b, `<text x="4" y="%d" fill="#767676" font-family="monospace" font-size="10">%.2f</text>`, marginY+4, maxV)
	fmt.Fprintf(&b, `<text x="4" y="%d" fill="#767676" font-family="monospace" font-size="10">0</text>`, height-marginY)

	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		var path strings.Builder
		for i, v := range s.Values {
			x := float64(marginLeft) + plotW*float64(i)/float64(n-1)
			y := float64(height-marginY) - plotH*(v/maxV)
			if i == 0 {
				fmt.Fprintf(&path, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&path, " L%.1f,%.1f", x, y)
			}
		}
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`, path.String(), s.Color)
	}

	legendY := marginY
	for _, s := range series {
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="4" fill="%s"/>`, width-160, legendY, s.Color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#fafafa" font-family="monospace" font-size="11">%s</text>`, width-148, legendY+4, escapeXML(s.Label))
		legendY += 16
	}

	b.WriteString("</svg>")
	return b.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// palette cycles a small fixed set of readable colors across baselines.
var palette = []string{"#7D56F4", "#04B575", "#FFAF00", "#FF5F87"}

// ThroughputSeries extracts one Series per report labeled by name, for
// `plot --throughput`.
func ThroughputSeries(reports []report.Report, names []string) []Series {
	out := make([]Series, 0, len(reports))
	for i, r := range reports {
		vals := make([]float64, 0, len(r.TimeSeries))
		for _, bucket := range r.TimeSeries {
			vals = append(vals, bucket.ThroughputRps)
		}
		out = append(out, Series{Label: labelFor(names, i), Color: palette[i%len(palette)], Values: vals})
	}
	return out
}

// PercentileSeries extracts one Series per report for the named quantile
// label (e.g. "p99"), for `plot --percentile P`.
func PercentileSeries(reports []report.Report, names []string, quantileLabel string) []Series {
	out := make([]Series, 0, len(reports))
	for i, r := range reports {
		vals := make([]float64, 0, len(r.TimeSeries))
		for _, bucket := range r.TimeSeries {
			vals = append(vals, float64(bucket.ServiceTimeUs[quantileLabel])/1000) // ms
		}
		out = append(out, Series{Label: labelFor(names, i), Color: palette[i%len(palette)], Values: vals})
	}
	return out
}

// SuccessRateSeries extracts one Series per report, for `plot --success-rate`.
func SuccessRateSeries(reports []report.Report, names []string) []Series {
	out := make([]Series, 0, len(reports))
	for i, r := range reports {
		vals := make([]float64, 0, len(r.TimeSeries))
		for _, bucket := range r.TimeSeries {
			vals = append(vals, bucket.SuccessRate*100)
		}
		out = append(out, Series{Label: labelFor(names, i), Color: palette[i%len(palette)], Values: vals})
	}
	return out
}

func labelFor(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("run %d", i)
}
