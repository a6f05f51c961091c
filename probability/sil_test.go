package probability_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/probability"
)

func TestIntegrateRequiresAtLeastTwoPoints(t *testing.T) {
	_, err := probability.Integrate([]probability.Point{{Probability: 1, Time: 0}})
	require.ErrorIs(t, err, probability.ErrInsufficientPoints)
}

func TestIntegrateTrapezoidalAreaOfConstantCurve(t *testing.T) {
	points := []probability.Point{{Probability: 2, Time: 0}, {Probability: 2, Time: 10}}
	area, err := probability.Integrate(points)
	require.NoError(t, err)
	require.InDelta(t, 20, area, 1e-9)
}

func TestAverageYOfConstantCurveIsTheConstant(t *testing.T) {
	points := []probability.Point{{Probability: 0.5, Time: 0}, {Probability: 0.5, Time: 100}}
	avg, err := probability.AverageY(points)
	require.NoError(t, err)
	require.InDelta(t, 0.5, avg, 1e-9)
}

func TestPartitionYOfConstantCurvePutsAllWeightInOneBucket(t *testing.T) {
	points := []probability.Point{{Probability: 5e-4, Time: 0}, {Probability: 5e-4, Time: 100}}
	buckets := []probability.SilBucket{{UpperBound: 1e-4}, {UpperBound: 1e-3}, {UpperBound: 1}}
	require.NoError(t, probability.PartitionY(points, buckets))
	require.InDelta(t, 0, buckets[0].Fraction, 1e-9)
	require.InDelta(t, 1, buckets[1].Fraction, 1e-9)
	require.InDelta(t, 0, buckets[2].Fraction, 1e-9)
}

func TestComputeSilSinglePointAssignsFullWeight(t *testing.T) {
	sil, err := probability.ComputeSil([]probability.Point{{Probability: 5e-4, Time: 8760}})
	require.NoError(t, err)
	require.InDelta(t, 5e-4, sil.PfdAvg, 1e-9)
	total := 0.0
	for _, bucket := range sil.PfdFractions {
		total += bucket.Fraction
	}
	require.InDelta(t, 1, total, 1e-9)
}

func TestComputeSilMultiPointNormalizesFractions(t *testing.T) {
	points := []probability.Point{
		{Probability: 0, Time: 0},
		{Probability: 1e-3, Time: 4380},
		{Probability: 2e-3, Time: 8760},
	}
	sil, err := probability.ComputeSil(points)
	require.NoError(t, err)
	require.Greater(t, sil.PfdAvg, 0.0)

	total := 0.0
	for _, bucket := range sil.PfdFractions {
		total += bucket.Fraction
	}
	require.InDelta(t, 1, total, 1e-6)
}

func TestComputeSilRejectsEmptyCurve(t *testing.T) {
	_, err := probability.ComputeSil(nil)
	require.ErrorIs(t, err, probability.ErrInsufficientPoints)
}
