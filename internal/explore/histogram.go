package explore

import (
	"math"
	"strconv"

	"github.com/sells-group/ads-report/internal/model"
)

// Histogram defaults applied when options are left zero.
const (
	DefaultBinWidth = 25
	DefaultMaxBins  = 1000
)

// Histogram holds fixed-width bins shared by both classes.
type Histogram struct {
	Width   int
	Labels  []string
	// Clamped counts values beyond the last bin that were folded into it.
	Clamped int
	counts  [2][]int
}

// Bins returns the number of bins.
func (h Histogram) Bins() int {
	return len(h.Labels)
}

// Empty reports whether no values were observed.
func (h Histogram) Empty() bool {
	return len(h.Labels) == 0
}

// Counts returns the per-bin counts for l, aligned with Labels.
func (h Histogram) Counts(l model.Label) []int {
	if !l.Valid() {
		return nil
	}
	return h.counts[l.Index()]
}

// Histogram bins the length values of both classes against one shared set of
// boundaries. The bin count is floor(max/width)+1 where max is taken across
// both classes; a value v falls into bin floor(v/width). Negative values are
// counted in the first bin. The bin count never exceeds the MaxBins option:
// larger values are counted in the last bin, which is then labeled "{low}+".
// With no observed values the histogram is empty.
func (a *Aggregate) Histogram(width int) Histogram {
	if width <= 0 {
		width = DefaultBinWidth
	}
	h := Histogram{Width: width}

	if a.Total() == 0 {
		return h
	}

	maxBins := a.opts.MaxBins
	if maxBins <= 0 {
		maxBins = DefaultMaxBins
	}

	maxValue := 0.0
	for _, b := range a.buckets {
		for _, v := range b.Lengths {
			maxValue = math.Max(maxValue, v)
		}
	}

	bins := binIndex(maxValue, width, maxBins) + 1
	h.Labels = make([]string, bins)
	for i := range bins {
		low := i * width
		h.Labels[i] = strconv.Itoa(low) + "-" + strconv.Itoa(low+width-1)
	}

	last := float64(bins * width)
	for ci, b := range a.buckets {
		counts := make([]int, bins)
		for _, v := range b.Lengths {
			if v >= last {
				h.Clamped++
			}
			counts[binIndex(v, width, maxBins)]++
		}
		h.counts[ci] = counts
	}
	if h.Clamped > 0 {
		h.Labels[bins-1] = strconv.Itoa((bins-1)*width) + "+"
	}
	return h
}

// binIndex returns floor(v/width) limited to [0, maxBins-1]. The division is
// compared as a float so huge values cannot overflow the int conversion.
func binIndex(v float64, width, maxBins int) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	f := math.Floor(v / float64(width))
	if f >= float64(maxBins-1) {
		return maxBins - 1
	}
	return int(f)
}
