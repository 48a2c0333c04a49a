// Package report draws math.random(n) many times and prints a
// locale-formatted histogram of the results.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sambeau/lmath/pkg/lmath/lmath"
)

// DefaultWidth is the length of the longest bar.
const DefaultWidth = 40

// Histogram counts how often each face 1..Faces came up.
type Histogram struct {
	Faces  int
	Trials int
	Counts []int
	Sum    float64
}

// Sample calls math.random(faces) trials times on in.
func Sample(in *lmath.Instance, faces, trials int) (*Histogram, error) {
	if faces < 1 {
		return nil, fmt.Errorf("faces must be at least 1, got %d", faces)
	}
	if trials < 1 {
		return nil, fmt.Errorf("trials must be at least 1, got %d", trials)
	}

	h := &Histogram{Faces: faces, Trials: trials, Counts: make([]int, faces)}
	for range trials {
		v := in.Random(float64(faces))
		i := int(v) - 1
		if v != math.Trunc(v) || i < 0 || i >= faces {
			return nil, fmt.Errorf("math.random(%d) returned %v", faces, v)
		}
		h.Counts[i]++
		h.Sum += v
	}
	return h, nil
}

// Mean is the average draw.
func (h *Histogram) Mean() float64 {
	return h.Sum / float64(h.Trials)
}

// ChiSquare is Pearson's statistic against a uniform distribution.
func (h *Histogram) ChiSquare() float64 {
	expected := float64(h.Trials) / float64(h.Faces)
	var chi float64
	for _, c := range h.Counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// Write prints h using number formatting for locale. Width is the length of
// the longest bar; zero means DefaultWidth.
func Write(w io.Writer, h *Histogram, locale string, width int) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	p := message.NewPrinter(tag)

	peak := 0
	for _, c := range h.Counts {
		peak = max(peak, c)
	}
	faceWidth := len(fmt.Sprint(h.Faces))

	counts := make([]string, len(h.Counts))
	countWidth := 0
	for i, c := range h.Counts {
		counts[i] = p.Sprintf("%v", number.Decimal(c))
		countWidth = max(countWidth, len([]rune(counts[i])))
	}

	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(float64(c) / float64(peak) * float64(width)))
		}
		pct := p.Sprintf("%v", number.Percent(float64(c)/float64(h.Trials), number.MinFractionDigits(1), number.MaxFractionDigits(1)))
		pad := strings.Repeat(" ", countWidth-len([]rune(counts[i])))
		if _, err := fmt.Fprintf(w, "%*d  %s%s  %8s  %s\n", faceWidth, i+1, pad, counts[i], pct, strings.Repeat("#", bar)); err != nil {
			return err
		}
	}

	_, err = p.Fprintf(w, "trials: %v  mean: %v  expected: %v  chi-square: %v (df %d)\n",
		number.Decimal(h.Trials),
		number.Decimal(h.Mean(), number.MaxFractionDigits(4)),
		number.Decimal(float64(h.Faces+1)/2, number.MaxFractionDigits(4)),
		number.Decimal(h.ChiSquare(), number.MaxFractionDigits(2)),
		h.Faces-1,
	)
	return err
}
