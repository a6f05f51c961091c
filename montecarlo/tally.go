package montecarlo

import "math"

// z-scores for the two-sided normal confidence intervals tally.h hard-codes.
const (
	z95 = 1.959963984540054
	z99 = 2.5758293035489004
)

// Tally reduces a bit-packed trial buffer into a Bernoulli probability
// estimate with its standard error and 95%/99% confidence intervals, ported
// from mc::kernel::tally's accumulation and confidence-interval formulas.
type Tally struct {
	NumOneBits  int
	TotalBits   int
	Mean        float64
	Variance    float64
	StdErr      float64
	Ci95Lower   float64
	Ci95Upper   float64
	Ci99Lower   float64
	Ci99Upper   float64
}

// NewTally reduces words (one basic event's or one gate's full sample
// buffer) into a Tally, treating every set bit as one observed failure
// across totalBits Bernoulli trials.
func NewTally(words []uint64, totalBits int) Tally {
	ones := PopCount(words)
	t := Tally{NumOneBits: ones, TotalBits: totalBits}
	t.updateStats()
	return t
}

// updateStats fills in every derived field from NumOneBits/TotalBits,
// mirroring tally::update_tally_stats: mean and variance of a Bernoulli
// estimator, its standard error, and the resulting symmetric confidence
// intervals, each clamped to the valid probability range [0, 1].
func (t *Tally) updateStats() {
	if t.TotalBits == 0 {
		return
	}
	t.Mean = float64(t.NumOneBits) / float64(t.TotalBits)
	t.Variance = t.Mean * (1 - t.Mean)
	t.StdErr = math.Sqrt(t.Variance / float64(t.TotalBits))

	t.Ci95Lower = clampProbability(t.Mean - z95*t.StdErr)
	t.Ci95Upper = clampProbability(t.Mean + z95*t.StdErr)
	t.Ci99Lower = clampProbability(t.Mean - z99*t.StdErr)
	t.Ci99Upper = clampProbability(t.Mean + z99*t.StdErr)
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Merge combines another Tally's trial counts into t (e.g. accumulating
// across iterations or sample batches) and recomputes its derived stats.
func (t *Tally) Merge(other Tally) {
	t.NumOneBits += other.NumOneBits
	t.TotalBits += other.TotalBits
	t.updateStats()
}
