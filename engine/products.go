package engine

import (
	"github.com/rs/zerolog"

	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/productfilter"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/settings"
	"github.com/openpra-org/scram-go/zbdd"
)

// countBasicEvents counts the non-nil slots in graph.BasicEvents, which is
// a dense array indexed by the PDAG's allocation order and therefore sized
// to the highest allocated index (gates included), not to the basic event
// count itself.
func countBasicEvents(graph *pdag.PDAG) int {
	n := 0
	for idx := pdag.VariableStartIndex; idx < len(graph.BasicEvents); idx++ {
		if graph.BasicEvents.Get(idx) != nil {
			n++
		}
	}
	return n
}

// buildFilterOptions translates a quantification run's settings into
// productfilter.FilterOptions, following FaultTreeAnalysis::Analyze's
// BuildFilterOptions: the adaptive target is the exact BDD probability,
// computed once up front (GetExactProbabilityValue) so FilterProducts can
// converge against it. The BDD evaluation has no failure path; adaptive
// mode is turned off (without a warning) when no approximation is
// selected.
//
// s.Algorithm()'s AlgorithmMocus has no distinct code path here: MOCUS is a
// direct cut-set enumeration strategy rather than a BDD/ZBDD variant, but
// RequiresProducts() already forces product generation for any non-BDD
// algorithm, so both AlgorithmZbdd and AlgorithmMocus runs flow through the
// same BDD-then-ZBDD pipeline as AlgorithmBdd once products are required;
// only ExactQuantification (true exclusively for AlgorithmBdd with no
// approximation) distinguishes BDD's direct pricing from the rest.
func buildFilterOptions(s *settings.Settings, graph *pdag.PDAG, b *bdd.Bdd) productfilter.FilterOptions {
	options := productfilter.FilterOptions{
		LimitOrder:          s.LimitOrder(),
		CutOff:              s.CutOff(),
		Adaptive:            s.Adaptive(),
		ExactQuantification: s.Algorithm() == settings.AlgorithmBdd && s.Approximation() == settings.ApproximationNone,
	}
	switch s.Approximation() {
	case settings.ApproximationRareEvent:
		options.Approximation = productfilter.ApproximationRareEvent
	case settings.ApproximationMcub:
		options.Approximation = productfilter.ApproximationMCUB
	default:
		options.Approximation = productfilter.ApproximationNone
	}
	if options.Adaptive && options.Approximation != productfilter.ApproximationNone {
		pVars := probability.ExtractVariableProbabilities(graph)
		options.AdaptiveTarget = probability.NewBddAnalyzer(b).CalculateTotalProbability(pVars)
	} else {
		options.Adaptive = false
	}
	return options
}

// sumOfProductsResult bundles newSumOfProducts' outputs: the report entry,
// the filtering summary (consumed by probability analysis below), and any
// numeric warnings raised along the way.
type sumOfProductsResult struct {
	sop      report.SumOfProducts
	summary  productfilter.ProductSummary
	warnings []report.Warning
}

// newSumOfProducts filters products and renders the surviving set as a
// report.SumOfProducts, choosing between the default <product> rendering
// and the bit-packed form per s.BitPackCutSets().
func newSumOfProducts(id report.ResultID, graph *pdag.PDAG, products *zbdd.Zbdd, options productfilter.FilterOptions, s *settings.Settings, logger zerolog.Logger) sumOfProductsResult {
	var filtered []zbdd.Product
	var filteredProbabilities []float64
	consumer := func(product zbdd.Product, probability float64) {
		filtered = append(filtered, product)
		filteredProbabilities = append(filteredProbabilities, probability)
	}
	summary := productfilter.FilterProducts(products, graph, options, consumer)

	retained := products.Products
	haveExplicitProbabilities := false
	if len(filtered) > 0 {
		retained = filtered
		haveExplicitProbabilities = true
	} else if summary.ProductCount == 0 && summary.OriginalProductCount > 0 {
		retained = nil
	}

	var warnings []report.Warning
	if summary.OriginalProductCount > 0 && summary.ProductCount == 0 {
		warnings = append(warnings, report.Warning("all products were pruned by the cut-off or limit order"))
		logger.Warn().Str("gate", id.GateName).Msg("all products pruned")
	}

	sop := report.SumOfProducts{
		ID:                   id,
		HasOriginalCount:     true,
		OriginalProductCount: summary.OriginalProductCount,
		HasProducts:          true,
		BasicEventCount:      countBasicEvents(graph),
		Distribution:         summary.Distribution,
	}
	if len(warnings) > 0 {
		sop.Warning = string(warnings[0])
	}

	if s.BitPackCutSets() {
		sop.BitPacked = bitPackProducts(graph, retained)
	} else {
		sop.Products = make([]report.Product, len(retained))
		for i, product := range retained {
			var prob *float64
			if haveExplicitProbabilities {
				p := filteredProbabilities[i]
				prob = &p
			}
			sop.Products[i] = productToReport(graph, product, prob)
		}
	}

	return sumOfProductsResult{sop: sop, summary: summary, warnings: warnings}
}

// productToReport renders one zbdd.Product as a report.Product, resolving
// each signed literal to its basic event name.
//
// Every literal renders as a plain report.Literal; report.CCFLiteral is
// never populated here because Model.ExpandCCFGroups synthesizes its
// independent/shared combination basic events without tagging them back
// onto the original member's CCF field, so the expanded model carries no
// reliable signal distinguishing a CCF-combination literal from an ordinary
// one post-expansion.
func productToReport(graph *pdag.PDAG, product zbdd.Product, probability *float64) report.Product {
	literals := make([]report.Literal, 0, len(product))
	for _, signed := range product {
		idx := signed
		complement := false
		if idx < 0 {
			idx = -idx
			complement = true
		}
		be := graph.BasicEvents.Get(idx)
		name := ""
		if be != nil {
			if be.Name != "" {
				name = be.Name
			} else {
				name = be.ID
			}
		}
		literals = append(literals, report.Literal{Name: name, Complement: complement})
	}
	return report.Product{Order: len(product), Probability: probability, Literals: literals}
}

// bitPackProducts serializes retained into the packed form: a dense
// basic-event name table plus one record per product.
func bitPackProducts(graph *pdag.PDAG, retained []zbdd.Product) *report.BitPackedCutSets {
	n := len(graph.BasicEvents)
	names := make([]string, n)
	indexOf := make(map[int]int, n)
	slot := 0
	for idx := pdag.VariableStartIndex; idx < n; idx++ {
		be := graph.BasicEvents.Get(idx)
		if be == nil {
			continue
		}
		name := be.Name
		if name == "" {
			name = be.ID
		}
		names[slot] = name
		indexOf[idx] = slot
		slot++
	}
	names = names[:slot]

	bytesPerVector := report.BytesPerVector(slot)
	records := make([]report.BitPackedRecord, len(retained))
	for i, product := range retained {
		vector := make([]byte, bytesPerVector)
		for _, signed := range product {
			idx := signed
			if idx < 0 {
				idx = -idx
			}
			bit, ok := indexOf[idx]
			if !ok || signed < 0 {
				continue
			}
			vector[bit/8] |= 1 << uint(bit%8)
		}
		records[i] = report.BitPackedRecord{Order: uint16(len(product)), Vector: vector}
	}
	return &report.BitPackedCutSets{BasicEventNames: names, Records: records}
}
