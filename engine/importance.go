package engine

import (
	"sort"

	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/zbdd"
)

// computeImportance derives each basic event's Birnbaum (MIF), critical
// (CIF), Fussell-Vesely (DIF), risk achievement worth (RAW), and risk
// reduction worth (RRW) factors from exact BDD evaluation, following the
// field names reporter.cc's ReportResults(ImportanceAnalysis) writes
// (factors.mif/cif/dif/raw/rrw) even though no importance_analysis.cc
// survived into original_source/ to port the derivation itself — this
// implements the textbook definitions directly:
//
//	MIF_i = dP/dp_i = P(p_i=1) - P(p_i=0)     (Birnbaum marginal importance)
//	CIF_i = MIF_i * p_i / P                    (critical importance)
//	DIF_i = (P - P(p_i=0)) / P                 (Fussell-Vesely, via RRW)
//	RAW_i = P(p_i=1) / P                       (risk achievement worth)
//	RRW_i = P / P(p_i=0)                       (risk reduction worth)
func computeImportance(id report.ResultID, graph *pdag.PDAG, b *bdd.Bdd, products *zbdd.Zbdd) report.ImportanceResult {
	analyzer := probability.NewBddAnalyzer(b)
	pVars := probability.ExtractVariableProbabilities(graph)
	baseline := analyzer.CalculateTotalProbability(pVars)
	occurrences := countOccurrences(products)

	result := report.ImportanceResult{ID: id}
	for idx := pdag.VariableStartIndex; idx < len(graph.BasicEvents); idx++ {
		be := graph.BasicEvents.Get(idx)
		if be == nil {
			continue
		}
		pi := pVars.Get(idx)

		pVars.Set(idx, 1)
		atOne := analyzer.CalculateTotalProbability(pVars)
		pVars.Set(idx, 0)
		atZero := analyzer.CalculateTotalProbability(pVars)
		pVars.Set(idx, pi)

		entry := report.ImportanceEntry{
			Name:        eventName(be),
			Probability: pi,
			Occurrence:  occurrences[idx],
		}
		entry.MIF = atOne - atZero
		if baseline > 0 {
			entry.CIF = entry.MIF * pi / baseline
			entry.DIF = (baseline - atZero) / baseline
			entry.RAW = atOne / baseline
		}
		if atZero > 0 {
			entry.RRW = baseline / atZero
		}
		result.Events = append(result.Events, entry)
	}

	sort.Slice(result.Events, func(i, j int) bool { return result.Events[i].MIF > result.Events[j].MIF })
	return result
}

// countOccurrences counts, per variable index, how many of products' minimal
// cut sets carry that variable as a positive literal. Returns an empty map
// when products is nil (importance requested with product generation
// skipped), leaving every entry's Occurrence at its zero value.
func countOccurrences(products *zbdd.Zbdd) map[int]int {
	counts := make(map[int]int)
	if products == nil {
		return counts
	}
	for _, product := range products.Products {
		for _, signed := range product {
			if signed > 0 {
				counts[signed]++
			}
		}
	}
	return counts
}

func eventName(be *event.BasicEvent) string {
	if be.Name != "" {
		return be.Name
	}
	return be.ID
}
