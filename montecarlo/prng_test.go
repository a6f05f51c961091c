package montecarlo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/montecarlo"
)

func TestProbabilityThresholdBounds(t *testing.T) {
	require.Equal(t, uint64(0), montecarlo.ProbabilityThreshold(0))
	require.Equal(t, uint64(1<<32), montecarlo.ProbabilityThreshold(1))
	require.Greater(t, montecarlo.ProbabilityThreshold(0.5), uint64(0))
	require.Less(t, montecarlo.ProbabilityThreshold(0.5), uint64(1<<32))
}

func TestPhiloxGenerateIsDeterministic(t *testing.T) {
	seed := montecarlo.State128{X: [4]uint32{1, 2, 3, 4}}
	var p montecarlo.PhiloxPRNG
	a := p.Generate(seed, 0)
	b := p.Generate(seed, 0)
	require.Equal(t, a, b)

	c := p.Generate(seed, 1)
	require.NotEqual(t, a, c)
}

func TestPhiloxDifferentSeedsDiverge(t *testing.T) {
	var p montecarlo.PhiloxPRNG
	a := p.Generate(montecarlo.State128{X: [4]uint32{1, 1, 1, 1}}, 0)
	b := p.Generate(montecarlo.State128{X: [4]uint32{1, 1, 1, 2}}, 0)
	require.NotEqual(t, a, b)
}

func TestWyRandAndSfc64AreDeterministicAndDiverge(t *testing.T) {
	seed := montecarlo.State128{X: [4]uint32{7, 11, 13, 17}}

	var wy montecarlo.WyRandPRNG
	require.Equal(t, wy.Generate(seed, 3), wy.Generate(seed, 3))

	var sfc montecarlo.SFC64PRNG
	require.Equal(t, sfc.Generate(seed, 3), sfc.Generate(seed, 3))

	require.NotEqual(t, wy.Generate(seed, 3), sfc.Generate(seed, 3))
}

func TestPackBernoulliDrawsMatchesProbabilityOnAverage(t *testing.T) {
	var p montecarlo.PhiloxPRNG
	threshold := montecarlo.ProbabilityThreshold(0.5)

	var ones, total int
	for i := uint32(0); i < 2000; i++ {
		seed := montecarlo.State128{X: [4]uint32{1, 1, i + 1, 0}}
		packed := montecarlo.PackBernoulliDraws(p, seed, threshold)
		for bit := 0; bit < 64; bit++ {
			total++
			if packed&(uint64(1)<<uint(bit)) != 0 {
				ones++
			}
		}
	}
	fraction := float64(ones) / float64(total)
	require.InDelta(t, 0.5, fraction, 0.05)
}

func TestPackBernoulliDrawsExtremesAreAllZeroOrAllOne(t *testing.T) {
	var p montecarlo.PhiloxPRNG
	seed := montecarlo.State128{X: [4]uint32{5, 6, 7, 8}}

	require.Equal(t, uint64(0), montecarlo.PackBernoulliDraws(p, seed, montecarlo.ProbabilityThreshold(0)))
	require.Equal(t, ^uint64(0), montecarlo.PackBernoulliDraws(p, seed, montecarlo.ProbabilityThreshold(1)))
}
