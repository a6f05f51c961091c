package eventtree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/eventtree"
	"github.com/openpra-org/scram-go/expression"
)

func TestAnalyzeRejectsNilInitialState(t *testing.T) {
	_, err := eventtree.Analyze(&eventtree.EventTree{Name: "t"}, "t")
	require.ErrorIs(t, err, eventtree.ErrNoInitialState)
}

func TestAnalyzeSingleSequenceSingleFormula(t *testing.T) {
	be := &event.BasicEvent{ID: "pump-fails", Expr: expression.NewConstant(0.01)}
	f, err := event.NewFormula(event.NULL, []event.Arg{{Event: be}}, nil, nil)
	require.NoError(t, err)

	seq := &eventtree.Sequence{
		Name:         "core-damage",
		Instructions: []eventtree.Instruction{&eventtree.CollectFormula{Formula: f}},
	}
	tree := &eventtree.EventTree{
		Name:         "loss-of-power",
		InitialState: &eventtree.Branch{Target: seq},
	}

	analysis, err := eventtree.Analyze(tree, "lop")
	require.NoError(t, err)
	require.Len(t, analysis.Sequences, 1)
	result := analysis.Sequences[0]
	require.Equal(t, seq, result.Sequence)
	require.False(t, result.ExpressionOnly)
	require.Equal(t, "__core-damage", result.Gate.ID)
	require.Equal(t, event.NULL, result.Gate.Formula.Connective)
}

func TestAnalyzeForkProducesOrOfPathAnds(t *testing.T) {
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.1)}
	b := &event.BasicEvent{ID: "b", Expr: expression.NewConstant(0.2)}
	c := &event.BasicEvent{ID: "c", Expr: expression.NewConstant(0.3)}
	fa, err := event.NewFormula(event.NULL, []event.Arg{{Event: a}}, nil, nil)
	require.NoError(t, err)
	fb, err := event.NewFormula(event.NULL, []event.Arg{{Event: b}}, nil, nil)
	require.NoError(t, err)
	fc, err := event.NewFormula(event.NULL, []event.Arg{{Event: c}}, nil, nil)
	require.NoError(t, err)

	seq := &eventtree.Sequence{Name: "end-state"}
	successPath := eventtree.Branch{
		Instructions: []eventtree.Instruction{&eventtree.CollectFormula{Formula: fb}},
		Target:       seq,
	}
	failurePath := eventtree.Branch{
		Instructions: []eventtree.Instruction{&eventtree.CollectFormula{Formula: fc}},
		Target:       seq,
	}
	fork := &eventtree.Fork{
		FunctionalEvent: "safety-system",
		Paths: []eventtree.Path{
			{State: "Success", Branch: successPath},
			{State: "Failure", Branch: failurePath},
		},
	}
	tree := &eventtree.EventTree{
		Name: "transient",
		InitialState: &eventtree.Branch{
			Instructions: []eventtree.Instruction{&eventtree.CollectFormula{Formula: fa}},
			Target:       fork,
		},
	}

	analysis, err := eventtree.Analyze(tree, "transient")
	require.NoError(t, err)
	require.Len(t, analysis.Sequences, 1)

	gate := analysis.Sequences[0].Gate
	require.Equal(t, event.OR, gate.Formula.Connective)
	require.Len(t, gate.Formula.Args, 2)
	for _, arg := range gate.Formula.Args {
		sub, ok := arg.Event.(*event.Gate)
		require.True(t, ok)
		require.Equal(t, event.AND, sub.Formula.Connective)
		require.Len(t, sub.Formula.Args, 2)
	}
}

func TestAnalyzeExpressionOnlySequenceSumsProducts(t *testing.T) {
	seq := &eventtree.Sequence{Name: "frequency-only"}
	branch := &eventtree.Branch{
		Instructions: []eventtree.Instruction{
			&eventtree.CollectExpression{Expr: expression.NewConstant(0.5)},
		},
		Target: seq,
	}
	tree := &eventtree.EventTree{Name: "t", InitialState: branch}

	analysis, err := eventtree.Analyze(tree, "t")
	require.NoError(t, err)
	require.Len(t, analysis.Sequences, 1)
	result := analysis.Sequences[0]
	require.True(t, result.ExpressionOnly)
	require.Equal(t, event.NULL, result.Gate.Formula.Connective)
	be, ok := result.Gate.Formula.Args[0].Event.(*event.BasicEvent)
	require.True(t, ok)
	p, _ := be.P()
	require.InDelta(t, 0.5, p, 1e-9)
}

func TestAnalyzeHouseEventOverrideSubstitutesClone(t *testing.T) {
	house := &event.HouseEvent{ID: "maintenance", State: false}
	gate := &event.Gate{ID: "inner"}
	innerFormula, err := event.NewFormula(event.NULL, []event.Arg{{Event: house}}, nil, nil)
	require.NoError(t, err)
	gate.Formula = innerFormula

	outerFormula, err := event.NewFormula(event.NULL, []event.Arg{{Event: gate}}, nil, nil)
	require.NoError(t, err)

	seq := &eventtree.Sequence{Name: "s"}
	branch := &eventtree.Branch{
		Instructions: []eventtree.Instruction{
			&eventtree.SetHouseEvent{Name: "maintenance", State: true},
			&eventtree.CollectFormula{Formula: outerFormula},
		},
		Target: seq,
	}
	tree := &eventtree.EventTree{Name: "t", InitialState: branch}

	analysis, err := eventtree.Analyze(tree, "t")
	require.NoError(t, err)

	clonedGate, ok := analysis.Sequences[0].Gate.Formula.Args[0].Event.(*event.Gate)
	require.True(t, ok)
	require.NotSame(t, gate, clonedGate)
	clonedHouse, ok := clonedGate.Formula.Args[0].Event.(*event.HouseEvent)
	require.True(t, ok)
	require.True(t, clonedHouse.State)
	require.NotSame(t, house, clonedHouse)
}

func TestAnalyzeNoContributionUsesTrueHouseEvent(t *testing.T) {
	seq := &eventtree.Sequence{Name: "trivial"}
	tree := &eventtree.EventTree{Name: "t", InitialState: &eventtree.Branch{Target: seq}}

	analysis, err := eventtree.Analyze(tree, "t")
	require.NoError(t, err)
	gate := analysis.Sequences[0].Gate
	require.Equal(t, event.NULL, gate.Formula.Connective)
	he, ok := gate.Formula.Args[0].Event.(*event.HouseEvent)
	require.True(t, ok)
	require.Same(t, event.TrueEvent, he)
}

func TestCloneFormulaSharesBasicEventsAndUnoverriddenHouseEvents(t *testing.T) {
	be := &event.BasicEvent{ID: "b"}
	house := &event.HouseEvent{ID: "h", State: true}
	f, err := event.NewFormula(event.AND, []event.Arg{{Event: be}, {Event: house}}, nil, nil)
	require.NoError(t, err)

	clone := eventtree.CloneFormula(f, map[string]bool{})
	require.Same(t, be, clone.Args[0].Event)
	require.Same(t, house, clone.Args[1].Event)
}
