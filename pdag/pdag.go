// Package pdag implements the canonical, fully-indexed propositional DAG:
// the internal Boolean graph that the BDD, ZBDD, and Monte Carlo engines all
// consume. It assigns every basic event a stable positive index, pushes
// literal polarity onto argument edges, assigns a topological variable
// order, and discovers variable-disjoint modules.
package pdag

import (
	"errors"
	"fmt"

	"github.com/openpra-org/scram-go/event"
)

// kVariableStartIndex is the first index available to a variable or gate;
// 0 and 1 are reserved for the FALSE and TRUE constants respectively.
const kVariableStartIndex = 2

// VariableStartIndex exports kVariableStartIndex for callers outside this
// package (product_filter-style literal-to-basic-event index arithmetic)
// that need the same constant without duplicating it.
const VariableStartIndex = kVariableStartIndex

// Sentinel errors, mirroring core/types.go's package-prefixed convention.
var (
	ErrUnknownGateType = errors.New("pdag: unknown gate type")
	ErrCyclicGraph     = errors.New("pdag: gate is its own ancestor")
)

// Vertex is a PDAG node: either a Variable (leaf) or a Gate (internal).
type Vertex interface {
	VertexIndex() int
	VertexOrder() int
}

// Variable is a PDAG leaf referencing one basic event.
type Variable struct {
	Index int
	Order int
	Event *event.BasicEvent
}

func (v *Variable) VertexIndex() int { return v.Index }
func (v *Variable) VertexOrder() int { return v.Order }

// Arg is one signed edge from a Gate to a child Vertex: Index carries the
// polarity (negative = complemented) while Child always points at the
// positively-indexed vertex. A constant argument has its polarity folded
// into the constant itself (index 0 FALSE, index 1 TRUE).
type Arg struct {
	Index int
	Child Vertex
}

// Gate is a PDAG internal vertex.
type Gate struct {
	Index      int
	Order      int
	Connective event.Connective
	Args       []Arg
	MinNumber  int
	MaxNumber  int
	Coherent   bool
	Module     bool
	Mark       bool
}

func (g *Gate) VertexIndex() int { return g.Index }
func (g *Gate) VertexOrder() int { return g.Order }

// IsTrivial holds iff the root is a NULL-gate over one literal or constant.
func (g *Gate) IsTrivial() bool {
	if g.Connective != event.NULL || len(g.Args) != 1 {
		return false
	}
	_, isGate := g.Args[0].Child.(*Gate)
	return !isGate
}

// IndexMap is a dense, 1-based lookup from vertex index to T, following
// Pdag::IndexMap<T>. Index i is stored at slot i; slots below
// kVariableStartIndex are unused (reserved for constants).
type IndexMap[T any] []T

// NewIndexMap returns an IndexMap sized to hold indices [0, size).
func NewIndexMap[T any](size int) IndexMap[T] {
	return make(IndexMap[T], size)
}

// Get returns the value at index i, growing the map if necessary is NOT
// performed here; callers size the map up-front via NewIndexMap.
func (m IndexMap[T]) Get(i int) T { return m[i] }

// Set stores v at index i.
func (m IndexMap[T]) Set(i int, v T) { m[i] = v }

// PDAG is the canonical indexed Boolean graph built from one event.Model.
type PDAG struct {
	Root        *Gate
	Gates       map[int]*Gate
	Variables   map[int]*Variable
	BasicEvents IndexMap[*event.BasicEvent] // dense 1-based index -> basic event
	ModuleRoots map[int]Vertex

	nextIndex int

	// Normalization knobs, mirrored from settings.
	KeepNullGates      bool
	ExpandAtleastGates bool
	ExpandXorGates     bool

	// InitiatingEventFrequency multiplies every computed top-event
	// probability; defaults to 1.
	InitiatingEventFrequency float64
}

// Options configure PDAG construction.
type Options struct {
	KeepNullGates      bool
	ExpandAtleastGates bool
	ExpandXorGates     bool
}

// IsTrivial holds iff the PDAG's root is a NULL-gate over one literal or a constant.
func (p *PDAG) IsTrivial() bool {
	return p.Root != nil && p.Root.IsTrivial()
}

// BasicEventsSlice returns basic_events(): a dense
// 1-based map, indexed by variable index, to the originating event pointer.
func (p *PDAG) BasicEventsSlice() IndexMap[*event.BasicEvent] { return p.BasicEvents }

func (p *PDAG) allocIndex() int {
	idx := p.nextIndex
	p.nextIndex++
	return idx
}

// New constructs a PDAG from model, rooted at model.TopEvent.
func New(model *event.Model, opts Options) (*PDAG, error) {
	p := &PDAG{
		Gates:                    make(map[int]*Gate),
		Variables:                make(map[int]*Variable),
		ModuleRoots:              make(map[int]Vertex),
		KeepNullGates:            opts.KeepNullGates,
		ExpandAtleastGates:       opts.ExpandAtleastGates,
		ExpandXorGates:           opts.ExpandXorGates,
		InitiatingEventFrequency: model.InitiatingEventFrequency,
		nextIndex:                kVariableStartIndex,
	}
	if p.InitiatingEventFrequency == 0 {
		p.InitiatingEventFrequency = 1
	}

	b := &builder{pdag: p, gateIndex: make(map[string]*Gate), varIndex: make(map[string]*Variable), visiting: make(map[string]bool)}
	root, err := b.buildGate(model.TopEvent)
	if err != nil {
		return nil, err
	}
	p.Root = root

	maxIdx := p.nextIndex
	p.BasicEvents = NewIndexMap[*event.BasicEvent](maxIdx)
	for idx, v := range p.Variables {
		p.BasicEvents.Set(idx, v.Event)
	}

	AssignOrder(p)
	DiscoverModules(p)
	return p, nil
}

type builder struct {
	pdag        *PDAG
	gateIndex   map[string]*Gate
	varIndex    map[string]*Variable
	visiting    map[string]bool
	synthCount  int
}

// newSynthGate allocates a fresh, uniquely-IDed gate that exists only for
// the duration of PDAG construction (used by XOR/ATLEAST expansion); it is
// never registered on the source event.Model.
func (b *builder) newSynthGate(formula *event.Formula) *event.Gate {
	b.synthCount++
	return &event.Gate{ID: fmt.Sprintf("__synth__%d__", b.synthCount), Formula: formula}
}

func (b *builder) buildGate(g *event.Gate) (*Gate, error) {
	if existing, ok := b.gateIndex[g.ID]; ok {
		return existing, nil
	}
	if b.visiting[g.ID] {
		return nil, fmt.Errorf("%w: %s", ErrCyclicGraph, g.ID)
	}
	b.visiting[g.ID] = true
	defer delete(b.visiting, g.ID)

	formula := g.Formula
	if b.pdag.ExpandXorGates && formula.Connective == event.XOR {
		formula = b.expandXor(formula)
	}
	if b.pdag.ExpandAtleastGates && (formula.Connective == event.ATLEAST || formula.Connective == event.CARDINALITY) {
		formula = b.expandAtleast(formula)
	}

	pg := &Gate{
		Index:      b.pdag.allocIndex(),
		Connective: formula.Connective,
		MinNumber:  minOf(formula.MinNumber),
		MaxNumber:  maxOf(formula.MaxNumber, len(formula.Args)),
		Coherent:   isCoherentConnective(formula.Connective),
	}
	b.gateIndex[g.ID] = pg
	b.pdag.Gates[pg.Index] = pg

	seen := make(map[int]bool, len(formula.Args))
	for _, arg := range formula.Args {
		signedIdx, child, err := b.resolveArg(arg)
		if err != nil {
			return nil, err
		}
		if seen[signedIdx] {
			continue // canonicalised: no duplicate literal within a gate
		}
		seen[signedIdx] = true
		pg.Args = append(pg.Args, Arg{Index: signedIdx, Child: child})
	}

	if !b.pdag.KeepNullGates && pg.Connective == event.NULL && len(pg.Args) == 1 {
		// NULL-gate elision is handled by the caller via resolveArg's
		// recursive inlining; here we simply leave the gate in place when
		// it is the formula root (the PDAG root is always materialized).
	}
	return pg, nil
}

func (b *builder) resolveArg(arg event.Arg) (int, Vertex, error) {
	switch v := arg.Event.(type) {
	case *event.BasicEvent:
		vr, ok := b.varIndex[v.ID]
		if !ok {
			vr = &Variable{Index: b.pdag.allocIndex(), Event: v}
			b.varIndex[v.ID] = vr
			b.pdag.Variables[vr.Index] = vr
		}
		idx := vr.Index
		if arg.Complement {
			idx = -idx
		}
		return idx, vr, nil
	case *event.HouseEvent:
		state := v.State
		idx := 1
		if !state {
			idx = 0
		}
		if arg.Complement {
			idx = 1 - idx
		}
		return boolIndex(idx == 1), constantVertex(idx == 1), nil
	case *event.Gate:
		if !b.pdag.KeepNullGates && v.Formula != nil && v.Formula.Connective == event.NULL && len(v.Formula.Args) == 1 {
			inner := v.Formula.Args[0]
			signedIdx, child, err := b.resolveArg(inner)
			if err != nil {
				return 0, nil, err
			}
			if arg.Complement {
				if c, ok := child.(*constant); ok {
					return boolIndex(!c.value), constantVertex(!c.value), nil
				}
				signedIdx = -signedIdx
			}
			return signedIdx, child, nil
		}
		child, err := b.buildGate(v)
		if err != nil {
			return 0, nil, err
		}
		idx := child.Index
		if arg.Complement {
			idx = -idx
		}
		return idx, child, nil
	default:
		return 0, nil, fmt.Errorf("%w: %T", ErrUnknownGateType, v)
	}
}

// constant is a sentinel Vertex for the two PDAG constants (index 0/1).
type constant struct{ value bool }

func (c *constant) VertexIndex() int {
	if c.value {
		return 1
	}
	return 0
}
func (c *constant) VertexOrder() int { return 0 }

var (
	trueConstant  = &constant{value: true}
	falseConstant = &constant{value: false}
)

func constantVertex(v bool) Vertex {
	if v {
		return trueConstant
	}
	return falseConstant
}

func boolIndex(v bool) int {
	if v {
		return 1
	}
	return 0
}

func minOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func maxOf(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func isCoherentConnective(c event.Connective) bool {
	switch c {
	case event.AND, event.OR, event.ATLEAST, event.NULL:
		return true
	default:
		return false
	}
}
