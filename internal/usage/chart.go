// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usage

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const (
	outputShade = "█"
	inputShade  = "▓"
	cachedShade = "░"
)

// palette cycles per model in name order.
var palette = []color.Attribute{
	color.FgBlue,
	color.FgGreen,
	color.FgYellow,
	color.FgRed,
	color.FgMagenta,
	color.FgCyan,
}

// Chart draws one stacked bar per bucket, scaled so the largest bucket
// spans width cells. Each model gets its own colour; within a model the
// shades distinguish output, uncached input and cached input.
func Chart(w io.Writer, buckets []Bucket, width int) error {
	if len(buckets) == 0 {
		_, err := fmt.Fprintln(w, "No usage recorded.")
		return err
	}

	models := modelNames(buckets)
	colors := make(map[string]*color.Color, len(models))
	legend := make([]string, 0, len(models))
	for i, m := range models {
		c := color.New(palette[i%len(palette)])
		colors[m] = c
		legend = append(legend, c.Sprint(outputShade+inputShade+cachedShade)+" "+m)
	}

	peak := 0
	labelWidth := 0
	for _, b := range buckets {
		if t := b.Total(); t > peak {
			peak = t
		}
		if len(b.Key) > labelWidth {
			labelWidth = len(b.Key)
		}
	}

	fmt.Fprintln(w, "Legend: "+strings.Join(legend, "  "))
	fmt.Fprintln(w, "        "+outputShade+inputShade+cachedShade+" Output/Input/Cache")
	fmt.Fprintln(w, strings.Repeat("─", labelWidth+width+14))

	for _, b := range buckets {
		var bar strings.Builder
		for _, m := range models {
			t, ok := b.Models[m]
			if !ok {
				continue
			}
			c := colors[m]
			bar.WriteString(c.Sprint(strings.Repeat(outputShade, cells(t.Output, peak, width))))
			bar.WriteString(c.Sprint(strings.Repeat(inputShade, cells(t.Input-t.Cached, peak, width))))
			bar.WriteString(c.Sprint(strings.Repeat(cachedShade, cells(t.Cached, peak, width))))
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s %s\n", labelWidth, b.Key, bar.String(), humanize.Comma(int64(b.Total()))); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes per-model totals across all buckets.
func Summary(w io.Writer, buckets []Bucket) error {
	totals := make(map[string]Tokens)
	for _, b := range buckets {
		for m, t := range b.Models {
			cur := totals[m]
			cur.add(t)
			totals[m] = cur
		}
	}

	for _, m := range modelNames(buckets) {
		t := totals[m]
		if _, err := fmt.Fprintf(w, "%s: %s in (%s cached), %s out, %s turns\n", m,
			humanize.Comma(int64(t.Input)), humanize.Comma(int64(t.Cached)),
			humanize.Comma(int64(t.Output)), humanize.Comma(int64(t.Turns))); err != nil {
			return err
		}
	}
	return nil
}

// cells scales value against peak onto width character cells.
func cells(value, peak, width int) int {
	if value <= 0 || peak <= 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(peak) * float64(width)))
}

func modelNames(buckets []Bucket) []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range buckets {
		for m := range b.Models {
			if !seen[m] {
				seen[m] = true
				names = append(names, m)
			}
		}
	}
	sort.Strings(names)
	return names
}
