// Package eventtree unfolds an event tree's branch/fork structure into the
// per-sequence formulas and expressions that feed the fault-tree analyses in
// pdag/bdd/zbdd: one synthesized Gate per Sequence, its formula an OR of
// per-path ANDs and its probability expression a sum of per-path products.
package eventtree

import (
	"errors"
	"fmt"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
)

// ErrNoInitialState indicates an EventTree has no InitialState to walk.
var ErrNoInitialState = errors.New("eventtree: event tree has no initial state")

// Instruction is one side effect attached to a Branch: SetHouseEvent,
// CollectFormula, CollectExpression, or Link.
type Instruction interface {
	accept(v *pathVisitor)
}

// SetHouseEvent records a per-path override applied when CollectFormula
// later deep-clones a formula: any house event named Name is replaced by a
// private singleton fixed to State.
type SetHouseEvent struct {
	Name  string
	State bool
}

func (s *SetHouseEvent) accept(v *pathVisitor) { v.visitSetHouseEvent(s) }

// CollectFormula attaches Formula's deep clone (after house-event
// substitution) to the current path.
type CollectFormula struct {
	Formula *event.Formula
}

func (c *CollectFormula) accept(v *pathVisitor) { v.visitCollectFormula(c) }

// CollectExpression attaches Expr to the current path's probability product.
type CollectExpression struct {
	Expr expression.Expression
}

func (c *CollectExpression) accept(v *pathVisitor) { v.visitCollectExpression(c) }

// Link continues the walk into another event tree, carrying forward the
// current functional-event context.
type Link struct {
	Tree *EventTree
}

func (l *Link) accept(v *pathVisitor) { v.visitLink(l) }

// Target is what a Branch transitions to: either another Fork or a terminal
// Sequence.
type Target interface {
	isTarget()
}

// Branch is one node of the tree: a list of instructions executed on entry,
// then a transition to Target.
type Branch struct {
	Instructions []Instruction
	Target       Target
}

// Path is one arm of a Fork, labeled with the functional event's outcome
// state (e.g. "Success"/"Failure").
type Path struct {
	State  string
	Branch Branch
}

// Fork splits execution on one functional event's outcome.
type Fork struct {
	FunctionalEvent string
	Paths           []Path
}

func (*Fork) isTarget() {}

// Sequence is a named terminal outcome of the tree; instructions collected
// along every path that reaches it produce its gate (via Analyze).
type Sequence struct {
	Name         string
	Instructions []Instruction
}

func (*Sequence) isTarget() {}

// EventTree owns the branch/fork graph rooted at InitialState.
type EventTree struct {
	Name         string
	InitialState *Branch
}

// pathCollector accumulates one path's formulas/expressions/house-event
// overrides, mirroring EventTreeAnalysis::PathCollector.
type pathCollector struct {
	setInstructions map[string]bool
	formulas        []*event.Formula
	expressions     []expression.Expression
}

func (p pathCollector) clone() pathCollector {
	overrides := make(map[string]bool, len(p.setInstructions))
	for k, v := range p.setInstructions {
		overrides[k] = v
	}
	formulas := make([]*event.Formula, len(p.formulas))
	copy(formulas, p.formulas)
	expressions := make([]expression.Expression, len(p.expressions))
	copy(expressions, p.expressions)
	return pathCollector{setInstructions: overrides, formulas: formulas, expressions: expressions}
}

// pathVisitor walks one Branch's instructions, mutating the collector it
// owns — the Go analogue of EventTreeAnalysis::CollectSequences::Collector.
type pathVisitor struct {
	collector    *pathCollector
	cloneCounter *int
	// followLink is invoked in place when a Link instruction is visited,
	// continuing the walk into the linked tree with the current path's
	// collector; the enclosing branch's own Target is then skipped (the
	// link fully redirected the path), matching Visit(const Link*)'s
	// continue_connector call and is_linked()-gated sequence registration.
	followLink func(tree *EventTree, collector pathCollector)
	linked     bool
}

func (v *pathVisitor) visitSetHouseEvent(s *SetHouseEvent) {
	v.collector.setInstructions[s.Name] = s.State
}

func (v *pathVisitor) visitCollectFormula(c *CollectFormula) {
	clone := cloneFormulaShared(c.Formula, v.collector.setInstructions, v.cloneCounter)
	v.collector.formulas = append(v.collector.formulas, clone)
}

func (v *pathVisitor) visitCollectExpression(c *CollectExpression) {
	v.collector.expressions = append(v.collector.expressions, c.Expr)
}

func (v *pathVisitor) visitLink(l *Link) {
	v.linked = true
	if l.Tree != nil && l.Tree.InitialState != nil && v.followLink != nil {
		v.followLink(l.Tree, v.collector.clone())
	}
}

// sequenceOutcome is every path's contribution to one named sequence.
type sequenceOutcome struct {
	sequence *Sequence
	paths    []pathCollector
}

// Analysis holds the synthesized per-sequence gates. Every intermediate gate
// created along the way (makeGate) is reachable from one of these gates'
// Formula trees, so Go's ordinary GC keeps them alive without a separate
// registry.
type Analysis struct {
	Sequences []SequenceResult
}

// SequenceResult is one sequence's synthesized gate, plus whether it carries
// only a probability expression (no Boolean formula at all — a pure
// frequency contribution).
type SequenceResult struct {
	Sequence           *Sequence
	Gate               *event.Gate
	ExpressionOnly     bool
}

// Analyze walks tree.InitialState, collecting every path that reaches each
// Sequence, and synthesizes one gate per sequence: an OR of per-path ANDs
// when any path contributed a formula, or a NULL gate over a synthesized
// basic event carrying the sum of per-path expression products otherwise.
func Analyze(tree *EventTree, treeName string) (*Analysis, error) {
	if tree == nil || tree.InitialState == nil {
		return nil, ErrNoInitialState
	}
	a := &Analysis{}
	outcomes := make(map[*Sequence]*sequenceOutcome)
	var order []*Sequence
	cloneCounter := 0

	var walk func(branch *Branch, collector pathCollector)
	followLink := func(linkedTree *EventTree, collector pathCollector) {
		walk(linkedTree.InitialState, collector)
	}
	walk = func(branch *Branch, collector pathCollector) {
		visitor := &pathVisitor{collector: &collector, cloneCounter: &cloneCounter, followLink: followLink}
		for _, instr := range branch.Instructions {
			instr.accept(visitor)
		}
		if visitor.linked {
			return
		}
		switch target := branch.Target.(type) {
		case *Fork:
			for _, path := range target.Paths {
				walk(&path.Branch, collector.clone())
			}
		case *Sequence:
			seqVisitor := &pathVisitor{collector: &collector, cloneCounter: &cloneCounter, followLink: followLink}
			for _, instr := range target.Instructions {
				instr.accept(seqVisitor)
			}
			if seqVisitor.linked {
				return
			}
			outcome, ok := outcomes[target]
			if !ok {
				outcome = &sequenceOutcome{sequence: target}
				outcomes[target] = outcome
				order = append(order, target)
			}
			outcome.paths = append(outcome.paths, collector)
		}
	}
	walk(tree.InitialState, pathCollector{setInstructions: map[string]bool{}})

	formulaID := 0
	makeGate := func(f *event.Formula) *event.Gate {
		g := &event.Gate{ID: fmt.Sprintf("___%s__formula_%d__", treeName, formulaID), Formula: f}
		formulaID++
		return g
	}

	for _, seq := range order {
		outcome := outcomes[seq]
		gate := &event.Gate{ID: "__" + seq.Name}

		var pathFormulas []*event.Formula
		var pathExpressions []expression.Expression
		for _, path := range outcome.paths {
			switch len(path.formulas) {
			case 0:
			case 1:
				pathFormulas = append(pathFormulas, path.formulas[0])
			default:
				args := make([]event.Arg, len(path.formulas))
				for i, f := range path.formulas {
					args[i] = event.Arg{Event: makeGate(f)}
				}
				andFormula, err := event.NewFormula(event.AND, args, nil, nil)
				if err != nil {
					return nil, err
				}
				pathFormulas = append(pathFormulas, andFormula)
			}
			switch len(path.expressions) {
			case 0:
			case 1:
				pathExpressions = append(pathExpressions, path.expressions[0])
			default:
				pathExpressions = append(pathExpressions, expression.NewMul(path.expressions...))
			}
		}

		expressionOnly := len(pathFormulas) == 0 && len(pathExpressions) > 0
		switch {
		case len(pathFormulas) == 1:
			gate.Formula = pathFormulas[0]
		case len(pathFormulas) > 1:
			args := make([]event.Arg, len(pathFormulas))
			for i, f := range pathFormulas {
				args[i] = event.Arg{Event: makeGate(f)}
			}
			orFormula, err := event.NewFormula(event.OR, args, nil, nil)
			if err != nil {
				return nil, err
			}
			gate.Formula = orFormula
		case len(pathExpressions) > 0:
			var expr expression.Expression
			if len(pathExpressions) == 1 {
				expr = pathExpressions[0]
			} else {
				expr = expression.NewAdd(pathExpressions...)
			}
			be := &event.BasicEvent{ID: "__" + seq.Name, Expr: expr}
			nullFormula, err := event.NewFormula(event.NULL, []event.Arg{{Event: be}}, nil, nil)
			if err != nil {
				return nil, err
			}
			gate.Formula = nullFormula
		default:
			nullFormula, err := event.NewFormula(event.NULL, []event.Arg{{Event: event.TrueEvent}}, nil, nil)
			if err != nil {
				return nil, err
			}
			gate.Formula = nullFormula
		}

		a.Sequences = append(a.Sequences, SequenceResult{Sequence: seq, Gate: gate, ExpressionOnly: expressionOnly})
	}

	return a, nil
}
