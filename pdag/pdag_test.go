package pdag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
	"github.com/openpra-org/scram-go/pdag"
)

func twoEventOrModel(t *testing.T) *event.Model {
	t.Helper()
	m := event.NewModel("two-event-or")
	a := &event.BasicEvent{ID: "a", Name: "A", Expr: expression.NewConstant(0.1)}
	b := &event.BasicEvent{ID: "b", Name: "B", Expr: expression.NewConstant(0.2)}
	require.NoError(t, m.AddBasicEvent(a))
	require.NoError(t, m.AddBasicEvent(b))

	formula, err := event.NewFormula(event.OR, []event.Arg{{Event: a}, {Event: b}}, nil, nil)
	require.NoError(t, err)
	top := &event.Gate{ID: "top", Formula: formula}
	require.NoError(t, m.AddGate(top))
	m.TopEvent = top
	return m
}

func TestNewAssignsDenseIndices(t *testing.T) {
	m := twoEventOrModel(t)
	graph, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)
	require.NotNil(t, graph.Root)
	require.Len(t, graph.Variables, 2)
	require.Equal(t, 1, len(graph.Gates))

	for _, v := range graph.Variables {
		require.GreaterOrEqual(t, v.Index, 2)
		require.Greater(t, v.Order, graph.Root.Order)
	}
}

func TestIdempotentConstruction(t *testing.T) {
	m := twoEventOrModel(t)
	g1, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)
	g2, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)

	require.Equal(t, g1.Root.Index, g2.Root.Index)
	require.Equal(t, g1.Root.Order, g2.Root.Order)
	require.Equal(t, len(g1.Variables), len(g2.Variables))
}

func TestModuleDiscoveryTrivialGraphHasNoModules(t *testing.T) {
	m := twoEventOrModel(t)
	graph, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)
	// A single OR over two leaves has no nested gates to be modules.
	require.Empty(t, graph.ModuleRoots)
}

func TestNestedModuleIsDetected(t *testing.T) {
	m := event.NewModel("nested")
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.1)}
	b := &event.BasicEvent{ID: "b", Expr: expression.NewConstant(0.2)}
	c := &event.BasicEvent{ID: "c", Expr: expression.NewConstant(0.3)}
	for _, be := range []*event.BasicEvent{a, b, c} {
		require.NoError(t, m.AddBasicEvent(be))
	}
	innerFormula, err := event.NewFormula(event.AND, []event.Arg{{Event: a}, {Event: b}}, nil, nil)
	require.NoError(t, err)
	inner := &event.Gate{ID: "inner", Formula: innerFormula}
	require.NoError(t, m.AddGate(inner))

	topFormula, err := event.NewFormula(event.OR, []event.Arg{{Event: inner}, {Event: c}}, nil, nil)
	require.NoError(t, err)
	top := &event.Gate{ID: "top", Formula: topFormula}
	require.NoError(t, m.AddGate(top))
	m.TopEvent = top

	graph, err := pdag.New(m, pdag.Options{})
	require.NoError(t, err)
	require.Len(t, graph.ModuleRoots, 1)
}
