package engine

import (
	"context"
	"math"
	"sort"

	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/montecarlo"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/settings"
)

// computeUncertainty propagates parameter uncertainty through two
// complementary routes, both driven by s.NumTrials()/s.Seed():
//
//   - a parameter-resampling pass: each trial redraws every basic event's
//     Expression (its Sample method — see expression.Expression's doc
//     comment on IsDeviate) and evaluates the exact top-event probability
//     via BddAnalyzer, building the empirical distribution Quantiles/Bins
//     describe;
//   - a direct Bernoulli-trial pass over the PDAG: montecarlo.BasicEventSampler
//     and Scheduler simulate occurrence rather than resample parameters, and
//     montecarlo.Tally reduces the root gate's outcome buffer into
//     Mean/StdErr/CI95/CI99 — the same derivation tally.h hard-codes, reused
//     here for UncertaintyResult's Confidence95Lower/Upper fields.
func computeUncertainty(id report.ResultID, s *settings.Settings, model *event.Model, graph *pdag.PDAG, b *bdd.Bdd) (report.UncertaintyResult, error) {
	values, err := resampleTotalProbability(s, model, graph, b)
	if err != nil {
		return report.UncertaintyResult{}, err
	}
	sort.Float64s(values)
	mean, stddev := meanStdDev(values)

	tally, err := tallyRoot(s, graph)
	if err != nil {
		return report.UncertaintyResult{}, err
	}

	result := report.UncertaintyResult{
		ID:                id,
		Mean:              mean,
		StdDev:            stddev,
		Confidence95Lower: tally.Ci95Lower,
		Confidence95Upper: tally.Ci95Upper,
		Quantiles:         computeQuantiles(values, s.NumQuantiles()),
		Bins:              computeHistogram(values, s.NumBins()),
	}
	if tally.Ci95Lower > 0 {
		result.ErrorFactor95 = math.Sqrt(tally.Ci95Upper / tally.Ci95Lower)
	}
	return result, nil
}

func resampleTotalProbability(s *settings.Settings, model *event.Model, graph *pdag.PDAG, b *bdd.Bdd) ([]float64, error) {
	analyzer := probability.NewBddAnalyzer(b)
	baseline := probability.ExtractVariableProbabilities(graph)
	n := s.NumTrials()
	values := make([]float64, n)

	for trial := 0; trial < n; trial++ {
		rng := newRand(s.Seed(), trial)
		sampled := model.SampleBasicEventProbabilities(rng)

		pVars := make(pdag.IndexMap[float64], len(baseline))
		copy(pVars, baseline)
		for idx := pdag.VariableStartIndex; idx < len(graph.BasicEvents); idx++ {
			be := graph.BasicEvents.Get(idx)
			if be == nil {
				continue
			}
			if p, ok := sampled[be.ID]; ok {
				pVars.Set(idx, p)
			}
		}
		values[trial] = analyzer.CalculateTotalProbability(pVars)
	}
	return values, nil
}

// tallyRoot runs a single bit-packed Bernoulli sweep over graph (point
// estimates, no parameter resampling) and reduces the root gate's buffer.
func tallyRoot(s *settings.Settings, graph *pdag.PDAG) (montecarlo.Tally, error) {
	pVars := probability.ExtractVariableProbabilities(graph)
	shape := montecarlo.NewSampleShape(s.NumTrials())
	sampler := &montecarlo.BasicEventSampler{PRNG: montecarlo.PhiloxPRNG{}, Shape: shape}
	buffers := sampler.SampleAll(graph, pVars)

	scheduler := montecarlo.NewScheduler(graph, buffers)
	if err := scheduler.Run(context.Background()); err != nil {
		return montecarlo.Tally{}, err
	}

	rootWords := scheduler.Buffers.Get(graph.Root.Index)
	return montecarlo.NewTally(rootWords, shape.WordsPerBatch*64), nil
}

func meanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	if len(values) > 1 {
		variance /= float64(len(values) - 1)
	}
	return mean, math.Sqrt(variance)
}

// computeQuantiles partitions sorted (ascending) values into n equal-mass
// buckets, reporting each bucket's boundary values.
func computeQuantiles(sorted []float64, n int) []report.Quantile {
	if n <= 0 || len(sorted) == 0 {
		return nil
	}
	out := make([]report.Quantile, n)
	for i := 0; i < n; i++ {
		lowerIdx := i * len(sorted) / n
		upperIdx := (i+1)*len(sorted)/n - 1
		if upperIdx < lowerIdx {
			upperIdx = lowerIdx
		}
		if upperIdx >= len(sorted) {
			upperIdx = len(sorted) - 1
		}
		out[i] = report.Quantile{
			Value:      sorted[upperIdx],
			LowerBound: sorted[lowerIdx],
			UpperBound: sorted[upperIdx],
		}
	}
	return out
}

// computeHistogram buckets sorted (ascending) values into n equal-width
// bins spanning [sorted[0], sorted[len-1]], counting occurrences per bin.
func computeHistogram(sorted []float64, n int) []report.HistogramBin {
	if n <= 0 || len(sorted) == 0 {
		return nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	width := (hi - lo) / float64(n)
	if width == 0 {
		width = 1
	}
	bins := make([]report.HistogramBin, n)
	for i := range bins {
		bins[i] = report.HistogramBin{LowerBound: lo + float64(i)*width, UpperBound: lo + float64(i+1)*width}
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Value++
	}
	return bins
}
