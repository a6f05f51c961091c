package montecarlo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/montecarlo"
)

func TestNewTallyMeanMatchesObservedFraction(t *testing.T) {
	// 2 of 4 bits set across one word.
	tally := montecarlo.NewTally([]uint64{0b1010}, 4)
	require.Equal(t, 2, tally.NumOneBits)
	require.InDelta(t, 0.5, tally.Mean, 1e-9)
	require.InDelta(t, 0.25, tally.Variance, 1e-9)
}

func TestNewTallyConfidenceIntervalsBracketMean(t *testing.T) {
	tally := montecarlo.NewTally([]uint64{0xFF}, 1000)
	require.LessOrEqual(t, tally.Ci95Lower, tally.Mean)
	require.GreaterOrEqual(t, tally.Ci95Upper, tally.Mean)
	require.LessOrEqual(t, tally.Ci99Lower, tally.Ci95Lower)
	require.GreaterOrEqual(t, tally.Ci99Upper, tally.Ci95Upper)
}

func TestNewTallyConfidenceIntervalsClampToUnitRange(t *testing.T) {
	// One of two bits set: mean 0.5, stderr ~0.354, so mean ± 1.96·stderr is
	// about [-0.19, 1.19] before clamping.
	tally := montecarlo.NewTally([]uint64{0b01}, 2)
	require.GreaterOrEqual(t, tally.Ci95Lower, 0.0)
	require.LessOrEqual(t, tally.Ci95Upper, 1.0)
}

func TestTallyMergeAccumulatesTrialsAndRecomputesStats(t *testing.T) {
	a := montecarlo.NewTally([]uint64{0b1111}, 4)
	b := montecarlo.NewTally([]uint64{0b0000}, 4)
	a.Merge(b)
	require.Equal(t, 4, a.NumOneBits)
	require.Equal(t, 8, a.TotalBits)
	require.InDelta(t, 0.5, a.Mean, 1e-9)
}
