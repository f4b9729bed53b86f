package explore

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ads-report/internal/model"
)

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func TestHistogram_SharedBins(t *testing.T) {
	a := New(Options{})
	a.Add(legit(0, 0, 0))
	a.Add(legit(24, 0, 0))
	a.Add(legit(25, 0, 0))
	a.Add(phish(110, 0, 0))

	h := a.Histogram(25)
	// max 110 -> floor(110/25)+1 = 5 bins for both classes.
	require.Equal(t, 5, h.Bins())
	assert.Equal(t, []string{"0-24", "25-49", "50-74", "75-99", "100-124"}, h.Labels)
	assert.Equal(t, []int{2, 1, 0, 0, 0}, h.Counts(model.LabelNegative))
	assert.Equal(t, []int{0, 0, 0, 0, 1}, h.Counts(model.LabelPositive))
	assert.Len(t, h.Counts(model.LabelPositive), h.Bins())
	assert.Nil(t, h.Counts(model.LabelInvalid))
}

func TestHistogram_BoundaryValue(t *testing.T) {
	a := New(Options{})
	a.Add(phish(50, 0, 0))

	h := a.Histogram(25)
	assert.Equal(t, []string{"0-24", "25-49", "50-74"}, h.Labels)
	assert.Equal(t, []int{0, 0, 1}, h.Counts(model.LabelPositive))
	assert.Equal(t, []int{0, 0, 0}, h.Counts(model.LabelNegative))
}

func TestHistogram_Empty(t *testing.T) {
	h := New(Options{}).Histogram(25)
	assert.True(t, h.Empty())
	assert.Zero(t, h.Bins())
	assert.Equal(t, 25, h.Width)
}

func TestHistogram_AllZeroValues(t *testing.T) {
	a := New(Options{})
	a.Add(legit(0, 0, 0))

	h := a.Histogram(25)
	assert.False(t, h.Empty())
	assert.Equal(t, []string{"0-24"}, h.Labels)
	assert.Equal(t, []int{1}, h.Counts(model.LabelNegative))
}

func TestHistogram_NegativeValuesInFirstBin(t *testing.T) {
	a := New(Options{})
	a.Add(legit(-40, 0, 0))
	a.Add(legit(30, 0, 0))

	h := a.Histogram(25)
	assert.Equal(t, []int{1, 1}, h.Counts(model.LabelNegative))
}

func TestHistogram_DefaultWidth(t *testing.T) {
	a := New(Options{})
	a.Add(legit(30, 0, 0))
	assert.Equal(t, DefaultBinWidth, a.Histogram(0).Width)
}

func TestHistogram_SumsMatchClassCounts(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 50 {
		a := New(Options{})
		n := rng.IntN(300)
		for range n {
			v := rng.Float64() * 400
			if rng.IntN(2) == 0 {
				a.Add(legit(v, 0, 0))
			} else {
				a.Add(phish(v, 0, 0))
			}
		}
		h := a.Histogram(10 + rng.IntN(40))
		for _, l := range model.Labels {
			require.Equal(t, a.Bucket(l).Count, sum(h.Counts(l)))
		}
	}
}

func TestHistogram_HugeValueClampedIntoLastBin(t *testing.T) {
	a := New(Options{})
	a.Add(legit(10, 0, 0))
	a.Add(phish(1e300, 0, 0))

	var h Histogram
	require.NotPanics(t, func() { h = a.Histogram(25) })
	require.Equal(t, DefaultMaxBins, h.Bins())
	assert.Equal(t, 1, h.Clamped)
	assert.Equal(t, "24975+", h.Labels[h.Bins()-1])
	assert.Equal(t, 1, h.Counts(model.LabelPositive)[h.Bins()-1])
	assert.Equal(t, 1, h.Counts(model.LabelNegative)[0])
}

func TestHistogram_LargeFiniteValueRespectsMaxBins(t *testing.T) {
	a := New(Options{MaxBins: 4})
	a.Add(legit(1e10, 0, 0))
	a.Add(legit(60, 0, 0))
	a.Add(phish(80, 0, 0))

	h := a.Histogram(25)
	assert.Equal(t, []string{"0-24", "25-49", "50-74", "75+"}, h.Labels)
	assert.Equal(t, []int{0, 0, 1, 1}, h.Counts(model.LabelNegative))
	assert.Equal(t, []int{0, 0, 0, 1}, h.Counts(model.LabelPositive))
	// 80 lies inside the last bin's range; only 1e10 is beyond it.
	assert.Equal(t, 1, h.Clamped)
	for _, l := range model.Labels {
		assert.Equal(t, a.Bucket(l).Count, sum(h.Counts(l)))
	}
}

func TestHistogram_NoClampWithinLimit(t *testing.T) {
	a := New(Options{MaxBins: 3})
	a.Add(legit(74, 0, 0))

	h := a.Histogram(25)
	assert.Equal(t, []string{"0-24", "25-49", "50-74"}, h.Labels)
	assert.Zero(t, h.Clamped)
}
