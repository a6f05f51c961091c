package engine

import (
	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/productfilter"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/settings"
	"github.com/openpra-org/scram-go/zbdd"
)

// analyzeProbability prices the top event, mirroring the probability
// analyser's dispatch: exact BDD evaluation when no approximation was
// requested, otherwise Rare-Event or MCUB over the filtered product set.
// When s.TimeStep() is nonzero the mission time is swept and, when SIL
// metrics were requested, the resulting curve is partitioned into PFD/PFH
// buckets.
func (e *Engine) analyzeProbability(id report.ResultID, s *settings.Settings, model *event.Model, graph *pdag.PDAG, b *bdd.Bdd, products *zbdd.Zbdd, summary productfilter.ProductSummary) (report.ProbabilityResult, []report.Warning) {
	calc := newProbabilityCalculator(s, graph, b, products, summary)
	result := report.ProbabilityResult{ID: id}
	var warnings []report.Warning

	pVars := probability.ExtractVariableProbabilities(graph)
	top := probability.ApplyInitiatingEventFrequency(calc.CalculateTotalProbability(pVars), model)
	result.Curve = []report.Point{{Time: s.MissionTime(), Probability: top}}

	if s.TimeStep() > 0 && model.MissionTime != nil {
		savedTime := model.MissionTime.Value()
		points := probability.CalculateProbabilityOverTime(calc, graph, model.MissionTime, s.TimeStep(), s.MissionTime(), model)
		model.MissionTime.Set(savedTime)

		curve := make([]report.Point, len(points))
		for i, p := range points {
			curve[i] = report.Point{Time: p.Time, Probability: p.Probability}
		}
		result.Curve = curve

		if s.SafetyIntegrityLevels() {
			sil, err := probability.ComputeSil(points)
			if err != nil {
				warnings = append(warnings, report.Warning("SIL computation skipped: "+err.Error()))
			} else {
				result.HasSil = true
				result.PfdAverage = sil.PfdAvg
				result.PfhAverage = sil.PfhAvg
				result.PfdBuckets = toReportBuckets(sil.PfdFractions)
				result.PfhBuckets = toReportBuckets(sil.PfhFractions)
			}
		}
	}

	return result, warnings
}

// newProbabilityCalculator picks the exact BDD evaluator when products were
// never required (s.RequiresProducts() false) or no approximation is
// selected, and the approximate Rare-Event/MCUB calculator otherwise.
func newProbabilityCalculator(s *settings.Settings, graph *pdag.PDAG, b *bdd.Bdd, products *zbdd.Zbdd, summary productfilter.ProductSummary) probability.ProbabilityCalculator {
	if products == nil || !s.RequiresProducts() || s.Approximation() == settings.ApproximationNone {
		return probability.NewBddAnalyzer(b)
	}

	var calculator probability.TotalProbabilityCalculator
	switch s.Approximation() {
	case settings.ApproximationMcub:
		calculator = probability.McubCalculator{}
	default:
		calculator = probability.RareEventCalculator{}
	}

	return &probability.Analyzer{
		Graph:      graph,
		Products:   products,
		Calculator: calculator,
		Options: productfilter.FilterOptions{
			LimitOrder: s.LimitOrder(),
			CutOff:     s.CutOff(),
		},
		AdaptiveActive: s.Adaptive() && summary.CutOffApplied,
	}
}

func toReportBuckets(buckets []probability.SilBucket) []report.SilBucket {
	out := make([]report.SilBucket, len(buckets))
	lower := 0.0
	for i, bucket := range buckets {
		out[i] = report.SilBucket{LowerBound: lower, UpperBound: bucket.UpperBound, Fraction: bucket.Fraction}
		lower = bucket.UpperBound
	}
	return out
}
