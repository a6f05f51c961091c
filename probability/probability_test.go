package probability_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/productfilter"
	"github.com/openpra-org/scram-go/zbdd"
)

func orGraph(t *testing.T) (*pdag.PDAG, map[string]int) {
	t.Helper()
	m := event.NewModel("or")
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.1)}
	b := &event.BasicEvent{ID: "b", Expr: expression.NewConstant(0.2)}
	require.NoError(t, m.AddBasicEvent(a))
	require.NoError(t, m.AddBasicEvent(b))
	f, err := event.NewFormula(event.OR, []event.Arg{{Event: a}, {Event: b}}, nil, nil)
	require.NoError(t, err)
	top := &event.Gate{ID: "top", Formula: f}
	require.NoError(t, m.AddGate(top))
	m.TopEvent = top

	graph, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)

	indices := make(map[string]int)
	for idx, be := range graph.BasicEvents {
		if be != nil {
			indices[be.ID] = idx
		}
	}
	return graph, indices
}

func TestCutSetProbabilityCalculatorMultipliesMembers(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := probability.ExtractVariableProbabilities(graph)
	var calc probability.CutSetProbabilityCalculator
	p := calc.Calculate(zbdd.Product{idx["a"], idx["b"]}, pVars)
	require.InDelta(t, 0.02, p, 1e-9)
}

func TestRareEventCalculatorSumsAndClips(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := probability.ExtractVariableProbabilities(graph)
	calc := probability.RareEventCalculator{}
	sum := calc.Calculate([]zbdd.Product{{idx["a"]}, {idx["b"]}}, pVars)
	require.InDelta(t, 0.3, sum, 1e-9)

	clipped := calc.Calculate([]zbdd.Product{{idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}, {idx["a"]}}, pVars)
	require.Equal(t, 1.0, clipped)
}

func TestMcubCalculatorNeverExceedsOne(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := probability.ExtractVariableProbabilities(graph)
	calc := probability.McubCalculator{}
	p := calc.Calculate([]zbdd.Product{{idx["a"]}, {idx["b"]}}, pVars)
	// 1 - (1-0.1)(1-0.2) = 1 - 0.72 = 0.28
	require.InDelta(t, 0.28, p, 1e-9)
}

func TestAnalyzerWithoutFiltersUsesFullProductSet(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := probability.ExtractVariableProbabilities(graph)
	products := &zbdd.Zbdd{Products: []zbdd.Product{{idx["a"]}, {idx["b"]}}}
	a := &probability.Analyzer{Graph: graph, Products: products, Calculator: probability.McubCalculator{}}
	p := a.CalculateTotalProbability(pVars)
	require.InDelta(t, 0.28, p, 1e-9)
}

func TestAnalyzerLimitOrderFiltersHigherOrderProducts(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := probability.ExtractVariableProbabilities(graph)
	products := &zbdd.Zbdd{Products: []zbdd.Product{{idx["a"]}, {idx["a"], idx["b"]}}}
	a := &probability.Analyzer{
		Graph:      graph,
		Products:   products,
		Calculator: probability.RareEventCalculator{},
		Options:    productfilter.FilterOptions{LimitOrder: 1},
	}
	p := a.CalculateTotalProbability(pVars)
	require.InDelta(t, 0.1, p, 1e-9)
}

func TestBddAnalyzerMatchesExactOrProbability(t *testing.T) {
	graph, _ := orGraph(t)
	b, err := bdd.New(graph)
	require.NoError(t, err)
	pVars := probability.ExtractVariableProbabilities(graph)
	a := probability.NewBddAnalyzer(b)
	p := a.CalculateTotalProbability(pVars)
	// 1 - (1-0.1)(1-0.2) = 0.28, the exact OR-gate probability.
	require.InDelta(t, 0.28, p, 1e-9)
}

func TestBddAnalyzerRecomputesAfterProbabilityChange(t *testing.T) {
	graph, idx := orGraph(t)
	b, err := bdd.New(graph)
	require.NoError(t, err)
	a := probability.NewBddAnalyzer(b)

	pVars := probability.ExtractVariableProbabilities(graph)
	first := a.CalculateTotalProbability(pVars)

	pVars.Set(idx["a"], 0.9)
	second := a.CalculateTotalProbability(pVars)
	require.Greater(t, second, first)
}

func TestApplyInitiatingEventFrequencyScales(t *testing.T) {
	m := event.NewModel("m")
	m.InitiatingEventFrequency = 2
	require.InDelta(t, 0.6, probability.ApplyInitiatingEventFrequency(0.3, m), 1e-9)
	require.InDelta(t, 0.3, probability.ApplyInitiatingEventFrequency(0.3, nil), 1e-9)
}
