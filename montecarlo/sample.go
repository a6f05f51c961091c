package montecarlo

import "github.com/openpra-org/scram-go/pdag"

// bitsPerWord is the width of one bit-packed sample word: each bit is one
// independent Bernoulli trial.
const bitsPerWord = 64

// SampleShape describes how many packed words make up one basic event's
// sample buffer, ported from mc::event::sample_shape: batchSize trials
// grouped into wordsPerBatch 64-bit words each.
type SampleShape struct {
	NumTrials    int
	WordsPerBatch int
}

// NewSampleShape rounds numTrials up to a whole number of 64-bit words.
func NewSampleShape(numTrials int) SampleShape {
	words := (numTrials + bitsPerWord - 1) / bitsPerWord
	if words == 0 {
		words = 1
	}
	return SampleShape{NumTrials: numTrials, WordsPerBatch: words}
}

// BasicEventSampler draws one bit-packed sample buffer per basic event,
// seeding each word from the (pdagIndex, eventIndex, sampleIndex,
// iteration) tuple the original SYCL kernels use to build a decorrelated
// state128 per work item: state128{pdag_idx+1, event_idx+1, sample_idx+1,
// (iteration_idx+1)<<6}.
type BasicEventSampler struct {
	PRNG      PRNG
	Shape     SampleShape
	Iteration int
}

// Sample fills one basic event's word buffer, given its probability p and a
// stable eventIndex: the event's dense position among the basic events
// (SampleAll passes a sequential counter, not the PDAG variable index).
func (s *BasicEventSampler) Sample(pdagIndex, eventIndex int, p float64) []uint64 {
	threshold := ProbabilityThreshold(p)
	words := make([]uint64, s.Shape.WordsPerBatch)
	for sampleIdx := 0; sampleIdx < s.Shape.WordsPerBatch; sampleIdx++ {
		seed := State128{X: [4]uint32{
			uint32(pdagIndex + 1),
			uint32(eventIndex + 1),
			uint32(sampleIdx + 1),
			uint32(s.Iteration+1) << 6,
		}}
		words[sampleIdx] = PackBernoulliDraws(s.PRNG, seed, threshold)
	}
	return words
}

// SampleAll draws a word buffer for every basic event in graph, keyed by its
// variable index, using pVars as each event's probability at the current
// mission time. Following positional_counter::fill in mc/kernel/basic_event.h,
// pdagIndex is the event's own unique PDAG index (event_block[event_idx].index)
// and eventIndex is its dense position within the basic-event block
// (the thread's global id) — a separate, sequential counter from pdagIndex
// since basic-event indices are not contiguous in the PDAG (gates share the
// same index space).
func (s *BasicEventSampler) SampleAll(graph *pdag.PDAG, pVars pdag.IndexMap[float64]) pdag.IndexMap[[]uint64] {
	buffers := pdag.NewIndexMap[[]uint64](len(graph.BasicEvents))
	denseIndex := 0
	for idx, be := range graph.BasicEvents {
		if be == nil {
			continue
		}
		buffers.Set(idx, s.Sample(idx, denseIndex, pVars.Get(idx)))
		denseIndex++
	}
	return buffers
}
