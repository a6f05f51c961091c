// Package event models the fault-tree event hierarchy: basic events, house
// events, gates over a Formula, common-cause-failure groups, and the Model
// that owns them. These are the leaves and the logical structure that the
// pdag package indexes into its canonical Boolean graph.
package event

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/openpra-org/scram-go/expression"
)

// Sentinel errors for event-model construction, mirroring core/types.go's
// package-prefixed sentinel convention.
var (
	// ErrEmptyID indicates an event was constructed with an empty identifier.
	ErrEmptyID = errors.New("event: id is empty")
	// ErrDuplicateID indicates two events in the same Model share an id.
	ErrDuplicateID = errors.New("event: duplicate id")
	// ErrDanglingReference indicates a gate's formula refers to an event the Model does not own.
	ErrDanglingReference = errors.New("event: dangling reference")
	// ErrUnknownConnective indicates a Formula carries an unrecognized Connective.
	ErrUnknownConnective = errors.New("event: unknown connective")
	// ErrBadAtleastBounds indicates ATLEAST/CARDINALITY bounds violate 0 <= min <= max <= |args|.
	ErrBadAtleastBounds = errors.New("event: invalid min/max bounds")
	// ErrCCFGroupSize indicates a CCF group's declared factor count does not match its member count.
	ErrCCFGroupSize = errors.New("event: ccf group size mismatch")
)

// Connective is the Boolean operator at a gate.
type Connective int

const (
	AND Connective = iota
	OR
	NOT
	XOR
	NAND
	NOR
	IFF
	ATLEAST
	CARDINALITY
	IMPLY
	NULL
)

var connectiveNames = [...]string{
	AND: "and", OR: "or", NOT: "not", XOR: "xor", NAND: "nand",
	NOR: "nor", IFF: "iff", ATLEAST: "atleast", CARDINALITY: "cardinality",
	IMPLY: "imply", NULL: "null",
}

func (c Connective) String() string {
	if int(c) < 0 || int(c) >= len(connectiveNames) {
		return "unknown"
	}
	return connectiveNames[c]
}

// ArgEvent is the interface implemented by the three kinds of formula
// argument: *BasicEvent, *HouseEvent, *Gate.
type ArgEvent interface {
	argEventID() string
}

// BasicEvent is a leaf failure event with a probability expression.
type BasicEvent struct {
	ID       string
	Name     string
	CCF      *CCFGroup
	Expr     expression.Expression
}

func (b *BasicEvent) argEventID() string { return b.ID }

// P returns the basic event's probability at the current mission time,
// clamped to [0, 1]. wasClamped reports whether clamping changed the value
// (callers surface this as a numeric warning).
func (b *BasicEvent) P() (p float64, wasClamped bool) {
	if b.Expr == nil {
		return 0, false
	}
	return expression.Clamp01(b.Expr.Value())
}

// HouseEvent is a Boolean constant that can be flipped per event-tree path.
type HouseEvent struct {
	ID    string
	Name  string
	State bool
}

func (h *HouseEvent) argEventID() string { return h.ID }

// TrueEvent and FalseEvent are the two canonical house-event singletons.
var (
	TrueEvent  = &HouseEvent{ID: "__true__", Name: "TRUE", State: true}
	FalseEvent = &HouseEvent{ID: "__false__", Name: "FALSE", State: false}
)

// Arg is one (event, polarity) pair inside a Formula's argument multiset.
type Arg struct {
	Event      ArgEvent
	Complement bool
}

// Formula is the logical expression at a Gate.
//
// Invariant: a Formula is never shared between two Gates; cloning (see the
// eventtree package) always deep-copies.
type Formula struct {
	Connective Connective
	Args       []Arg
	MinNumber  *int // ATLEAST/CARDINALITY only
	MaxNumber  *int // CARDINALITY only
}

// NewFormula constructs a Formula, validating ATLEAST/CARDINALITY bounds.
func NewFormula(connective Connective, args []Arg, minNumber, maxNumber *int) (*Formula, error) {
	if connective == ATLEAST || connective == CARDINALITY {
		min := 0
		if minNumber != nil {
			min = *minNumber
		}
		max := len(args)
		if maxNumber != nil {
			max = *maxNumber
		}
		if min < 0 || max < min || max > len(args) {
			return nil, fmt.Errorf("%w: min=%d max=%d nargs=%d", ErrBadAtleastBounds, min, max, len(args))
		}
	}
	return &Formula{Connective: connective, Args: args, MinNumber: minNumber, MaxNumber: maxNumber}, nil
}

// Clone returns a deep copy of f. Gates referenced as arguments are shared
// (not recursively cloned) — callers needing a fully independent subtree
// (house-event substitution) use eventtree.CloneFormula instead.
func (f *Formula) Clone() *Formula {
	args := make([]Arg, len(f.Args))
	copy(args, f.Args)
	clone := &Formula{Connective: f.Connective, Args: args}
	if f.MinNumber != nil {
		m := *f.MinNumber
		clone.MinNumber = &m
	}
	if f.MaxNumber != nil {
		m := *f.MaxNumber
		clone.MaxNumber = &m
	}
	return clone
}

// String renders a diagnostic description of the formula tree, following
// the connective(args...) shape of the original engine's DescribeFormula.
func (f *Formula) String() string {
	s := f.Connective.String()
	if f.Connective == ATLEAST || f.Connective == CARDINALITY {
		min, max := 0, len(f.Args)
		if f.MinNumber != nil {
			min = *f.MinNumber
		}
		if f.MaxNumber != nil {
			max = *f.MaxNumber
		}
		s += fmt.Sprintf("[min=%d,max=%d]", min, max)
	}
	s += "("
	for i, arg := range f.Args {
		if i > 0 {
			s += ", "
		}
		if arg.Complement {
			s += "not("
		}
		s += describeArgEvent(arg.Event)
		if arg.Complement {
			s += ")"
		}
	}
	s += ")"
	return s
}

func describeArgEvent(e ArgEvent) string {
	switch v := e.(type) {
	case *Gate:
		if v.Formula == nil {
			return v.ID
		}
		return v.ID + "->" + v.Formula.String()
	case *BasicEvent:
		if v.Name != "" {
			return v.Name
		}
		return v.ID
	case *HouseEvent:
		if v == TrueEvent {
			return "TRUE"
		}
		if v == FalseEvent {
			return "FALSE"
		}
		state := "FALSE"
		if v.State {
			state = "TRUE"
		}
		return v.ID + "=" + state
	default:
		return "<unknown>"
	}
}

// Gate is an internal vertex: a single Formula plus two mark bits used by
// graph walks (visit, mark) — mirroring mef::Gate.
type Gate struct {
	ID      string
	Name    string
	Formula *Formula
	Visit   bool
	Mark    bool
}

func (g *Gate) argEventID() string { return g.ID }

// CCFGroup is a common-cause-failure group: a set of basic events whose
// independent failure is supplemented by shared-cause failure combinations.
// Expansion (replacing each member with a combination gate) is performed by
// Model.ExpandCCFGroups: for a group of n members with total probability Q,
// each member becomes an OR of an independent event with probability
// Q·(1-Σrho) and, for every k-member combination (k = 2..n) containing it,
// one event shared by that combination with probability Q·rho_k/C(n-1,k-1).
type CCFGroup struct {
	Name    string
	Members []*BasicEvent
	// Factors holds one factor per level 2..n (Factors[k-2] is rho_k).
	// len(Factors) must equal len(Members)-1 for a fully specified
	// multi-level model, or 1, in which case the single factor is applied
	// to the all-n level only.
	Factors []float64
}

// Validate checks the factor-count invariant.
func (g *CCFGroup) Validate() error {
	if len(g.Members) < 2 {
		return nil
	}
	if len(g.Factors) != 1 && len(g.Factors) != len(g.Members)-1 {
		return fmt.Errorf("%w: group %q has %d members and %d factors", ErrCCFGroupSize, g.Name, len(g.Members), len(g.Factors))
	}
	return nil
}

// Model owns every event-model object for one analysis. Objects are
// immutable after analysis begins except for MissionTime (see
// expression.MissionTime).
type Model struct {
	Name         string
	BasicEvents  map[string]*BasicEvent
	HouseEvents  map[string]*HouseEvent
	Gates        map[string]*Gate
	CCFGroups    map[string]*CCFGroup
	TopEvent     *Gate
	MissionTime  *expression.MissionTime
	// InitiatingEventFrequency multiplies every computed top-event
	// probability; defaults to 1 when unset (NewModel sets it).
	InitiatingEventFrequency float64
}

// NewModel returns an empty Model with InitiatingEventFrequency defaulted to 1.
func NewModel(name string) *Model {
	return &Model{
		Name:                     name,
		BasicEvents:              make(map[string]*BasicEvent),
		HouseEvents:              make(map[string]*HouseEvent),
		Gates:                    make(map[string]*Gate),
		CCFGroups:                make(map[string]*CCFGroup),
		MissionTime:              expression.NewMissionTime(0),
		InitiatingEventFrequency: 1,
	}
}

// AddBasicEvent registers a basic event, rejecting duplicate or empty ids.
func (m *Model) AddBasicEvent(b *BasicEvent) error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if _, exists := m.BasicEvents[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}
	m.BasicEvents[b.ID] = b
	return nil
}

// AddGate registers a gate, rejecting duplicate or empty ids.
func (m *Model) AddGate(g *Gate) error {
	if g.ID == "" {
		return ErrEmptyID
	}
	if _, exists := m.Gates[g.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, g.ID)
	}
	m.Gates[g.ID] = g
	return nil
}

// AddHouseEvent registers a house event, rejecting duplicate or empty ids.
func (m *Model) AddHouseEvent(h *HouseEvent) error {
	if h.ID == "" {
		return ErrEmptyID
	}
	if _, exists := m.HouseEvents[h.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, h.ID)
	}
	m.HouseEvents[h.ID] = h
	return nil
}

// AddCCFGroup registers a CCF group after validating its factor count.
func (m *Model) AddCCFGroup(g *CCFGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.CCFGroups[g.Name] = g
	return nil
}

// Validate walks every gate's formula and reports a dangling reference if
// any argument event is not owned by this Model (and is not one of the two
// house-event singletons).
func (m *Model) Validate() error {
	for _, g := range m.Gates {
		if g.Formula == nil {
			continue
		}
		for _, arg := range g.Formula.Args {
			if err := m.checkOwned(arg.Event); err != nil {
				return fmt.Errorf("gate %s: %w", g.ID, err)
			}
		}
	}
	return nil
}

func (m *Model) checkOwned(e ArgEvent) error {
	switch v := e.(type) {
	case *BasicEvent:
		if _, ok := m.BasicEvents[v.ID]; !ok {
			return fmt.Errorf("%w: basic-event %s", ErrDanglingReference, v.ID)
		}
	case *HouseEvent:
		if v == TrueEvent || v == FalseEvent {
			return nil
		}
		if _, ok := m.HouseEvents[v.ID]; !ok {
			return fmt.Errorf("%w: house-event %s", ErrDanglingReference, v.ID)
		}
	case *Gate:
		if _, ok := m.Gates[v.ID]; !ok {
			return fmt.Errorf("%w: gate %s", ErrDanglingReference, v.ID)
		}
	}
	return nil
}

// SampleBasicEventProbabilities draws one Bernoulli-parameter realization
// per basic event from its Expression (used by uncertainty analysis to
// perturb the model before re-running the qualitative/quantitative pipeline).
func (m *Model) SampleBasicEventProbabilities(rng *rand.Rand) map[string]float64 {
	out := make(map[string]float64, len(m.BasicEvents))
	for id, b := range m.BasicEvents {
		if b.Expr == nil {
			out[id] = 0
			continue
		}
		v, _ := expression.Clamp01(b.Expr.Sample(rng))
		out[id] = v
	}
	return out
}
