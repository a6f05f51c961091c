package montecarlo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
	"github.com/openpra-org/scram-go/montecarlo"
	"github.com/openpra-org/scram-go/pdag"
)

func orGraph(t *testing.T) (*pdag.PDAG, map[string]int) {
	t.Helper()
	m := event.NewModel("or")
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.5)}
	b := &event.BasicEvent{ID: "b", Expr: expression.NewConstant(0.5)}
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

func TestSchedulerEvaluatesOrGateOverSampleBuffers(t *testing.T) {
	graph, idx := orGraph(t)

	pVars := pdag.NewIndexMap[float64](len(graph.BasicEvents))
	pVars.Set(idx["a"], 0.5)
	pVars.Set(idx["b"], 0.5)

	sampler := &montecarlo.BasicEventSampler{
		PRNG:  montecarlo.PhiloxPRNG{},
		Shape: montecarlo.NewSampleShape(200000),
	}
	buffers := sampler.SampleAll(graph, pVars)

	scheduler := montecarlo.NewScheduler(graph, buffers)
	require.NoError(t, scheduler.Run(context.Background()))

	rootWords := scheduler.Buffers.Get(graph.Root.Index)
	require.NotEmpty(t, rootWords)

	tally := montecarlo.NewTally(rootWords, len(rootWords)*64)
	// 1 - (1-0.5)(1-0.5) = 0.75
	require.InDelta(t, 0.75, tally.Mean, 0.02)
}

func TestWaveOrderingRunsChildrenBeforeParents(t *testing.T) {
	graph, idx := orGraph(t)
	pVars := pdag.NewIndexMap[float64](len(graph.BasicEvents))
	pVars.Set(idx["a"], 1.0)
	pVars.Set(idx["b"], 0.0)

	sampler := &montecarlo.BasicEventSampler{
		PRNG:  montecarlo.PhiloxPRNG{},
		Shape: montecarlo.NewSampleShape(64),
	}
	buffers := sampler.SampleAll(graph, pVars)
	scheduler := montecarlo.NewScheduler(graph, buffers)
	require.NoError(t, scheduler.Run(context.Background()))

	rootWords := scheduler.Buffers.Get(graph.Root.Index)
	require.Equal(t, ^uint64(0), rootWords[0])
}
