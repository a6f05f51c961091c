package montecarlo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/montecarlo"
)

func TestEvaluateGateAnd(t *testing.T) {
	// 0b1100 & 0b1010 = 0b1000
	result, err := montecarlo.EvaluateGate(event.AND, []uint64{0b1100, 0b1010}, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0b1000), result)
}

func TestEvaluateGateOr(t *testing.T) {
	result, err := montecarlo.EvaluateGate(event.OR, []uint64{0b1100, 0b0010}, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0b1110), result)
}

func TestEvaluateGateXor(t *testing.T) {
	result, err := montecarlo.EvaluateGate(event.XOR, []uint64{0b1100, 0b1010}, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0b0110), result)
}

func TestEvaluateGateNandIsComplementOfAnd(t *testing.T) {
	and, err := montecarlo.EvaluateGate(event.AND, []uint64{0b1100, 0b1010}, nil)
	require.NoError(t, err)
	nand, err := montecarlo.EvaluateGate(event.NAND, []uint64{0b1100, 0b1010}, nil)
	require.NoError(t, err)
	require.Equal(t, ^and, nand)
}

func TestEvaluateGateNorIsComplementOfOr(t *testing.T) {
	or, err := montecarlo.EvaluateGate(event.OR, []uint64{0b1100, 0b0010}, nil)
	require.NoError(t, err)
	nor, err := montecarlo.EvaluateGate(event.NOR, []uint64{0b1100, 0b0010}, nil)
	require.NoError(t, err)
	require.Equal(t, ^or, nor)
}

func TestEvaluateGateNegatedInput(t *testing.T) {
	// AND of one positive and one negated literal: a & ~b
	a := uint64(0b1111)
	b := uint64(0b0101)
	result, err := montecarlo.EvaluateGate(event.AND, []uint64{a}, []uint64{b})
	require.NoError(t, err)
	require.Equal(t, a&^b, result)
}

func TestEvaluateGateNotSingleInput(t *testing.T) {
	result, err := montecarlo.EvaluateGate(event.NOT, []uint64{0b1010}, nil)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0b1010), result)
}

func TestEvaluateGateUnknownConnective(t *testing.T) {
	_, err := montecarlo.EvaluateGate(event.IFF, []uint64{0}, nil)
	require.ErrorIs(t, err, montecarlo.ErrUnsupportedConnective)
}

func TestEvaluateAtleastTwoOfThree(t *testing.T) {
	// bit 0: only a set -> count 1, fails k=2
	// bit 1: a,b set -> count 2, passes
	// bit 2: a,b,c set -> count 3, passes
	a := uint64(0b111)
	b := uint64(0b110)
	c := uint64(0b100)
	result, err := montecarlo.EvaluateAtleast([]uint64{a, b, c}, nil, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(0b110), result)
}

func TestEvaluateAtleastZeroIsAlwaysTrue(t *testing.T) {
	result, err := montecarlo.EvaluateAtleast([]uint64{0}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), result)
}

func TestEvaluateAtleastMoreThanInputsIsAlwaysFalse(t *testing.T) {
	result, err := montecarlo.EvaluateAtleast([]uint64{0xFF}, nil, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(0), result)
}

func TestPopCount(t *testing.T) {
	require.Equal(t, 4, montecarlo.PopCount([]uint64{0b1111, 0}))
	require.Equal(t, 8, montecarlo.PopCount([]uint64{0b1111, 0b1111}))
}
