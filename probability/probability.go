// Package probability quantifies a fault tree's top-event probability: exact
// evaluation over a bdd.Bdd, or Rare-Event/MCUB approximation over a
// zbdd.Zbdd's product list, with product_filter-based truncation in between.
package probability

import (
	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/productfilter"
	"github.com/openpra-org/scram-go/zbdd"
)

// CutSetProbabilityCalculator multiplies the probability of every member of
// one cut set (all members are expected to carry positive, non-complemented
// indices — a cut set by definition is a conjunction of basic events in
// their failed state).
type CutSetProbabilityCalculator struct{}

// Calculate returns the product of pVars[member] over cutSet.
func (CutSetProbabilityCalculator) Calculate(cutSet zbdd.Product, pVars pdag.IndexMap[float64]) float64 {
	p := 1.0
	for _, member := range cutSet {
		p *= pVars.Get(member)
	}
	return p
}

// TotalProbabilityCalculator combines every cut set's probability into one
// top-event probability estimate.
type TotalProbabilityCalculator interface {
	Calculate(cutSets []zbdd.Product, pVars pdag.IndexMap[float64]) float64
}

// RareEventCalculator approximates the top-event probability as the plain
// sum of cut-set probabilities, clipped to 1. Valid only while individual
// cut-set probabilities stay small (the rare-event assumption); the sum
// otherwise overestimates because it double-counts overlapping failures.
type RareEventCalculator struct {
	CutSetProbabilityCalculator
}

// Calculate implements TotalProbabilityCalculator.
func (c RareEventCalculator) Calculate(cutSets []zbdd.Product, pVars pdag.IndexMap[float64]) float64 {
	sum := 0.0
	for _, cutSet := range cutSets {
		sum += c.CutSetProbabilityCalculator.Calculate(cutSet, pVars)
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// McubCalculator (min-cut-upper-bound) approximates the top-event
// probability as 1 - product(1 - p_i), which never exceeds 1 and is exact
// whenever cut sets are mutually independent and non-overlapping.
type McubCalculator struct {
	CutSetProbabilityCalculator
}

// Calculate implements TotalProbabilityCalculator.
func (c McubCalculator) Calculate(cutSets []zbdd.Product, pVars pdag.IndexMap[float64]) float64 {
	m := 1.0
	for _, cutSet := range cutSets {
		m *= 1 - c.CutSetProbabilityCalculator.Calculate(cutSet, pVars)
	}
	return 1 - m
}

// ExtractVariableProbabilities reads every basic event's current probability
// (at graph's mission time) into a dense pdag.IndexMap, for use as the
// p_vars argument to a TotalProbabilityCalculator or the BDD calculator.
func ExtractVariableProbabilities(graph *pdag.PDAG) pdag.IndexMap[float64] {
	pVars := pdag.NewIndexMap[float64](len(graph.BasicEvents))
	for idx, be := range graph.BasicEvents {
		if be == nil {
			continue
		}
		p, _ := be.P()
		pVars.Set(idx, p)
	}
	return pVars
}

// Analyzer computes the top-event probability of one PDAG/product set using
// an approximate (Rare-Event or MCUB) calculator, applying product_filter's
// order/cut-off/adaptive truncation exactly as ProbabilityAnalyzer<Calculator>
// ::CalculateTotalProbability does in the original engine: filters are only
// consulted when one of them is actually active, and the filtered product
// subset is used in place of the full set only when filtering changed
// anything.
type Analyzer struct {
	Graph      *pdag.PDAG
	Products   *zbdd.Zbdd
	Calculator TotalProbabilityCalculator
	Options    productfilter.FilterOptions
	// AdaptiveActive mirrors FaultTreeAnalysis::adaptive_mode_used(): whether
	// a prior qualitative pass already decided adaptive truncation is live
	// for this model (independent of Options.Adaptive, which only toggles
	// the estimator kind once adaptive mode is known to be active).
	AdaptiveActive bool
}

// CalculateTotalProbability returns the top-event probability given the
// current basic-event probabilities in pVars.
func (a *Analyzer) CalculateTotalProbability(pVars pdag.IndexMap[float64]) float64 {
	hasFilters := a.Options.LimitOrder > 0 || a.Options.CutOff > 0 || a.AdaptiveActive
	if !hasFilters {
		return a.Calculator.Calculate(a.Products.Products, pVars)
	}

	options := a.Options
	options.Adaptive = a.AdaptiveActive

	var filtered []zbdd.Product
	consumer := func(product zbdd.Product, _ float64) {
		filtered = append(filtered, product)
	}
	summary := productfilter.FilterProducts(a.Products, a.Graph, options, consumer)

	if summary.ProductCount == 0 {
		return 0
	}
	if len(filtered) == 0 ||
		(summary.ProductCount == summary.OriginalProductCount && !summary.CutOffApplied && !options.Adaptive) {
		return a.Calculator.Calculate(a.Products.Products, pVars)
	}
	return a.Calculator.Calculate(filtered, pVars)
}

// BddAnalyzer computes the top-event probability exactly from a bdd.Bdd,
// mirroring ProbabilityAnalyzer<Bdd>::CalculateProbability: a mark-toggling
// memoized recursion over the ITE graph, descending into module proxies via
// Bdd.Module, with the Shannon expansion
// p(ite) = p_var*p(high) + (1-p_var)*p(low).
type BddAnalyzer struct {
	Bdd         *bdd.Bdd
	currentMark bool
}

// NewBddAnalyzer wraps b for exact probability evaluation.
func NewBddAnalyzer(b *bdd.Bdd) *BddAnalyzer {
	return &BddAnalyzer{Bdd: b}
}

// CalculateTotalProbability returns the exact top-event probability given
// pVars, toggling the memoization generation so every call re-evaluates
// (basic-event probabilities may have changed, e.g. for a new mission time).
func (a *BddAnalyzer) CalculateTotalProbability(pVars pdag.IndexMap[float64]) float64 {
	a.currentMark = !a.currentMark
	prob := a.calculateProbability(a.Bdd.Root.Vertex, a.currentMark, pVars)
	if a.Bdd.Root.Complement {
		prob = 1 - prob
	}
	return prob
}

func (a *BddAnalyzer) calculateProbability(vertex *bdd.Ite, mark bool, pVars pdag.IndexMap[float64]) float64 {
	if vertex.IsTerminal() {
		return 1
	}
	if vertex.Mark() == mark {
		return vertex.P()
	}
	vertex.SetMark(mark)

	var pVar float64
	if vertex.Module {
		if mod, ok := a.Bdd.Module(vertex.Index); ok {
			pVar = a.calculateProbability(mod.Vertex, mark, pVars)
			if mod.Complement {
				pVar = 1 - pVar
			}
		}
	} else {
		pVar = pVars.Get(vertex.Index)
	}

	high := a.calculateProbability(vertex.High, mark, pVars)
	low := a.calculateProbability(vertex.Low, mark, pVars)
	if vertex.ComplementEdge {
		low = 1 - low
	}
	p := pVar*high + (1-pVar)*low
	vertex.SetP(p)
	return p
}

// ApplyInitiatingEventFrequency scales a computed probability by the model's
// initiating-event frequency, matching Analysis::ApplyInitiatingEventFrequency
// — used only where the original applies it explicitly (the time-sweep in
// CalculateProbabilityOverTime), not on every probability calculation.
func ApplyInitiatingEventFrequency(probability float64, model *event.Model) float64 {
	if model == nil || model.InitiatingEventFrequency == 0 {
		return probability
	}
	return probability * model.InitiatingEventFrequency
}
