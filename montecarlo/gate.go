package montecarlo

import (
	"errors"
	"math/bits"

	"github.com/openpra-org/scram-go/event"
)

// ErrUnsupportedConnective indicates EvaluateGate was asked to evaluate a
// Connective the bitwise kernel does not implement.
var ErrUnsupportedConnective = errors.New("montecarlo: unsupported connective")

// EvaluateGate combines one word (one 64-bit lane of packed Bernoulli
// trials) from each input buffer according to connective, ported from
// mc::kernel::op<OpType>::operator(): AND/NAND start accumulation at all-1s,
// OR/NOR/XOR start at all-0, positive inputs apply the base op directly and
// negated inputs apply it to the bitwise complement, and NOT/NAND/NOR invert
// the accumulated result at the end.
//
// positive and negated partition the gate's inputs by literal polarity,
// exactly as gates_block_'s negated_inputs_offset does: every word in
// positive is combined verbatim, every word in negated is combined after
// complementing.
func EvaluateGate(connective event.Connective, positive, negated []uint64) (uint64, error) {
	switch connective {
	case event.NULL:
		if len(positive) == 1 && len(negated) == 0 {
			return positive[0], nil
		}
		if len(negated) == 1 && len(positive) == 0 {
			return ^negated[0], nil
		}
		return 0, ErrUnsupportedConnective
	case event.NOT:
		if len(positive) == 1 && len(negated) == 0 {
			return ^positive[0], nil
		}
		if len(negated) == 1 && len(positive) == 0 {
			return negated[0], nil
		}
		return 0, ErrUnsupportedConnective
	case event.AND, event.NAND:
		result := ^uint64(0)
		for _, v := range positive {
			result &= v
		}
		for _, v := range negated {
			result &= ^v
		}
		if connective == event.NAND {
			result = ^result
		}
		return result, nil
	case event.OR, event.NOR:
		var result uint64
		for _, v := range positive {
			result |= v
		}
		for _, v := range negated {
			result |= ^v
		}
		if connective == event.NOR {
			result = ^result
		}
		return result, nil
	case event.XOR:
		var result uint64
		for _, v := range positive {
			result ^= v
		}
		for _, v := range negated {
			result ^= ^v
		}
		return result, nil
	case event.ATLEAST, event.CARDINALITY:
		return evaluateAtleast(positive, negated, 0)
	default:
		return 0, ErrUnsupportedConnective
	}
}

// EvaluateAtleast is EvaluateGate's ATLEAST/CARDINALITY path exposed
// directly, since that connective carries a threshold k that the generic
// EvaluateGate signature has no room for.
func EvaluateAtleast(positive, negated []uint64, k int) (uint64, error) {
	return evaluateAtleast(positive, negated, k)
}

// evaluateAtleast counts, per bit lane, how many of the (possibly negated)
// inputs are set, and sets the output bit when that count is >= k — the
// scalar-bit-lane equivalent of mc::kernel::op<kAtleast>'s per-bit popcount
// comparison.
func evaluateAtleast(positive, negated []uint64, k int) (uint64, error) {
	if k <= 0 {
		return ^uint64(0), nil
	}
	n := len(positive) + len(negated)
	if k > n {
		return 0, nil
	}
	var result uint64
	for bit := 0; bit < bitsPerWord; bit++ {
		count := 0
		mask := uint64(1) << uint(bit)
		for _, v := range positive {
			if v&mask != 0 {
				count++
			}
		}
		for _, v := range negated {
			if v&mask == 0 {
				count++
			}
		}
		if count >= k {
			result |= mask
		}
	}
	return result, nil
}

// PopCount returns the number of set (true) bits across a gate's full word
// buffer, the building block Tally's accumulation uses to turn
// packed words back into a scalar trial count.
func PopCount(words []uint64) int {
	total := 0
	for _, w := range words {
		total += bits.OnesCount64(w)
	}
	return total
}
