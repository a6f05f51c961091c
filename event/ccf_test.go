package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
)

func TestExpandCCFGroupsReplacesMembersWithOrGates(t *testing.T) {
	m := event.NewModel("ccf-model")
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.1)}
	b := &event.BasicEvent{ID: "b", Expr: expression.NewConstant(0.1)}
	c := &event.BasicEvent{ID: "c", Expr: expression.NewConstant(0.1)}
	for _, be := range []*event.BasicEvent{a, b, c} {
		require.NoError(t, m.AddBasicEvent(be))
	}

	formula, err := event.NewFormula(event.AND, []event.Arg{{Event: a}, {Event: b}, {Event: c}}, nil, nil)
	require.NoError(t, err)
	top := &event.Gate{ID: "top", Formula: formula}
	require.NoError(t, m.AddGate(top))

	group := &event.CCFGroup{Name: "g1", Members: []*event.BasicEvent{a, b, c}, Factors: []float64{0.05}}
	require.NoError(t, m.AddCCFGroup(group))

	require.NoError(t, m.ExpandCCFGroups())
	require.NoError(t, m.Validate())

	for _, arg := range top.Formula.Args {
		gate, ok := arg.Event.(*event.Gate)
		require.True(t, ok, "member should be retargeted to a synthesized gate")
		assert.Equal(t, event.OR, gate.Formula.Connective)
		assert.GreaterOrEqual(t, len(gate.Formula.Args), 2)
	}
}

func TestExpandCCFGroupsSkipsSingleMemberGroups(t *testing.T) {
	m := event.NewModel("m")
	a := &event.BasicEvent{ID: "a", Expr: expression.NewConstant(0.1)}
	require.NoError(t, m.AddBasicEvent(a))
	group := &event.CCFGroup{Name: "g1", Members: []*event.BasicEvent{a}}
	require.NoError(t, m.AddCCFGroup(group))
	require.NoError(t, m.ExpandCCFGroups())
	assert.Empty(t, m.Gates)
}
