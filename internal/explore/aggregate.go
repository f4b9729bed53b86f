// Package explore accumulates per-class exploratory statistics: counts,
// feature averages, IP usage, length histograms and length/dots scatter data.
package explore

import (
	"math"

	"github.com/sells-group/ads-report/internal/model"
)

// Point is one scatter pair (length, dots).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ClassBucket holds the running aggregate for one ground-truth class.
type ClassBucket struct {
	Count     int
	LengthSum float64
	IPCount   int
	Lengths   []float64
	Points    []Point
}

// Options tunes the aggregate.
type Options struct {
	// MaxPoints caps the scatter points kept per class. 0 keeps all.
	MaxPoints int
	// MaxBins caps the histogram bin count. 0 means DefaultMaxBins.
	MaxBins int
}

// Aggregate folds records into exactly two buckets, one per label.
type Aggregate struct {
	opts    Options
	buckets [2]ClassBucket
}

// New returns an empty aggregate.
func New(opts Options) *Aggregate {
	return &Aggregate{opts: opts}
}

// Add folds rec into the bucket of its ground-truth label.
func (a *Aggregate) Add(rec model.ClassifiedRecord) {
	if !rec.Actual.Valid() {
		return
	}
	b := &a.buckets[rec.Actual.Index()]
	b.Count++
	b.LengthSum += rec.Length
	if rec.IP == 1 {
		b.IPCount++
	}
	b.Lengths = append(b.Lengths, rec.Length)
	if a.opts.MaxPoints <= 0 || len(b.Points) < a.opts.MaxPoints {
		b.Points = append(b.Points, Point{X: rec.Length, Y: rec.Dots})
	}
}

// Bucket returns the aggregate for l. Invalid labels yield an empty bucket.
func (a *Aggregate) Bucket(l model.Label) ClassBucket {
	if !l.Valid() {
		return ClassBucket{}
	}
	return a.buckets[l.Index()]
}

// Total returns the number of records folded across both classes.
func (a *Aggregate) Total() int {
	return a.buckets[0].Count + a.buckets[1].Count
}

// Mean returns the mean length for l, or 0 when the class is empty.
func (a *Aggregate) Mean(l model.Label) float64 {
	b := a.Bucket(l)
	if b.Count == 0 {
		return 0
	}
	return b.LengthSum / float64(b.Count)
}

// RoundedMean returns Mean rounded to one decimal place.
func (a *Aggregate) RoundedMean(l model.Label) float64 {
	return math.Round(a.Mean(l)*10) / 10
}
