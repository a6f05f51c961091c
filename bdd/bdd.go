// Package bdd implements a reduced, ordered binary decision diagram with
// complement edges over a pdag.PDAG: the unique-table/Apply machinery that
// turns the propositional graph into a canonical Boolean function, plus
// dynamic variable-order sifting. The rest of the engine (zbdd, probability)
// walks the resulting Ite graph through Function, never touching the unique
// table directly.
package bdd

import (
	"errors"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
)

// ErrUnsupportedConnective indicates Apply was asked to combine two BDD
// functions with a connective other than AND/OR (the only two the ITE
// reduction needs — every other gate type is normalized away before
// reaching the BDD).
var ErrUnsupportedConnective = errors.New("bdd: unsupported connective for apply")

// Ite is one "if-then-else" vertex: test Index, then High, else Low, with a
// complement bit on the Low edge only (the single complement edge per node
// that keeps the unique table half the size of a naive ROBDD).
type Ite struct {
	Index          int
	Order          int
	ID             int // unique, monotonically increasing function id
	High           *Ite
	Low            *Ite
	ComplementEdge bool
	Module         bool
	Coherent       bool
	mark           bool
	p              float64
}

// Mark reports the node's current traversal mark bit. The mark field is
// reused across unrelated walks (node counting, structure testing, and the
// probability calculator's memoization) exactly as in the original engine's
// single mark_ field — every walk clears it back to false when done.
func (n *Ite) Mark() bool { return n.mark }

// SetMark sets the node's traversal mark bit.
func (n *Ite) SetMark(m bool) { n.mark = m }

// P returns the node's last memoized probability, valid only while Mark()
// equals the caller's own walk-generation flag.
func (n *Ite) P() float64 { return n.p }

// SetP stores the node's memoized probability for the current walk.
func (n *Ite) SetP(p float64) { n.p = p }

// Terminal is the single shared "1" leaf; "0" is represented as a
// complemented edge to Terminal, never as a distinct node.
var Terminal = &Ite{ID: 1}

func (n *Ite) isTerminal() bool { return n == Terminal }

// IsTerminal reports whether n is the shared "1" leaf.
func (n *Ite) IsTerminal() bool { return n == Terminal }

// Function is a signed reference to a BDD vertex: the actual Boolean
// function is Complement XOR the vertex's own polarity.
type Function struct {
	Complement bool
	Vertex     *Ite
}

// uniqueKey identifies an Ite node by its (index, high-id, signed-low-id)
// triple, mirroring the original engine's UniqueTable key.
type uniqueKey struct {
	index  int
	highID int
	lowID  int
}

// Bdd converts one pdag.PDAG into a reduced, ordered BDD with complement
// edges, following the construction in the original engine's bdd.cc:
// convert gate-by-gate bottom up, memoizing module/shared-gate results,
// applying AND/OR via a variable-order-aware ITE merge, then optionally
// sifting the variable order on large graphs.
type Bdd struct {
	Root     Function
	Coherent bool

	uniqueTable map[uniqueKey]*Ite
	andTable    map[[2]int]Function
	orTable     map[[2]int]Function

	indexToOrder map[int]int
	modules      map[int]Function

	nextFunctionID int

	// ReorderingEnabled mirrors reordering_enabled_; sifting only triggers
	// once the constructed graph exceeds SiftingThreshold nodes.
	ReorderingEnabled bool
	SiftingThreshold  int
}

// defaultSiftingThreshold is the default node count above which New triggers
// PerformSifting, matching the original engine's hard-coded 1000.
const defaultSiftingThreshold = 1000

// New builds a Bdd from graph. Complement edges and node sharing make this
// cheap to keep around even for the trivial one-gate case.
func New(graph *pdag.PDAG) (*Bdd, error) {
	b := &Bdd{
		Coherent:          true,
		uniqueTable:       make(map[uniqueKey]*Ite),
		andTable:          make(map[[2]int]Function),
		orTable:           make(map[[2]int]Function),
		indexToOrder:      make(map[int]int),
		modules:           make(map[int]Function),
		nextFunctionID:    2,
		ReorderingEnabled: true,
		SiftingThreshold:  defaultSiftingThreshold,
	}

	if graph.Root == nil {
		b.Root = Function{Vertex: Terminal}
		return b, nil
	}
	b.Coherent = graph.Root.Coherent

	if graph.IsTrivial() {
		arg := graph.Root.Args[0]
		if v, ok := arg.Child.(*pdag.Variable); ok {
			vertex := b.findOrAddVertex(v.Index, Terminal, Terminal, true, v.Order)
			b.indexToOrder[v.Index] = v.Order
			b.Root = Function{Complement: arg.Index < 0, Vertex: vertex}
		} else {
			b.Root = Function{Complement: arg.Child.VertexIndex() == 0, Vertex: Terminal}
		}
		return b, nil
	}

	converted := make(map[int]convertEntry)
	fn, err := b.convertGate(graph.Root, converted)
	if err != nil {
		return nil, err
	}
	b.Root = fn

	if b.ReorderingEnabled {
		nodes := b.CountIteNodes(b.Root.Vertex)
		if nodes > b.SiftingThreshold && len(b.indexToOrder) > 1 {
			b.PerformSifting(8, 0)
		}
	}
	return b, nil
}

type convertEntry struct {
	fn Function
}

// convertGate converts one gate bottom-up into a BDD Function, memoizing
// shared (multi-parent) gate results exactly like ConvertGraph's `gates`
// map in the original engine.
func (b *Bdd) convertGate(g *pdag.Gate, converted map[int]convertEntry) (Function, error) {
	if entry, ok := converted[g.Index]; ok {
		return entry.fn, nil
	}

	var args []Function
	for _, arg := range g.Args {
		switch child := arg.Child.(type) {
		case *pdag.Variable:
			vertex := b.findOrAddVertex(child.Index, Terminal, Terminal, true, child.Order)
			b.indexToOrder[child.Index] = child.Order
			args = append(args, Function{Complement: arg.Index < 0, Vertex: vertex})
		case *pdag.Gate:
			res, err := b.convertGate(child, converted)
			if err != nil {
				return Function{}, err
			}
			if child.Module {
				proxy := b.findOrAddVertex(child.Index, Terminal, Terminal, true, child.Order)
				proxy.Module = true
				proxy.Coherent = child.Coherent
				b.indexToOrder[child.Index] = child.Order
				args = append(args, Function{Complement: arg.Index < 0, Vertex: proxy})
			} else {
				args = append(args, Function{Complement: (arg.Index < 0) != res.Complement, Vertex: res.Vertex})
			}
		default:
			// Constant argument: index 1 is TRUE, index 0 is FALSE.
			args = append(args, Function{Complement: child.VertexIndex() == 0, Vertex: Terminal})
		}
	}
	if len(args) == 0 {
		return Function{Vertex: Terminal}, nil
	}

	orderOf := func(f Function) int {
		if f.Vertex.isTerminal() {
			return -1
		}
		return f.Vertex.Order
	}
	for i := 1; i < len(args); i++ {
		for j := i; j > 0 && orderOf(args[j-1]) < orderOf(args[j]); j-- {
			args[j-1], args[j] = args[j], args[j-1]
		}
	}

	connective := applyConnective(g.Connective)
	result := args[0]
	for _, next := range args[1:] {
		var err error
		result, err = b.Apply(connective, result.Vertex, next.Vertex, result.Complement, next.Complement)
		if err != nil {
			return Function{}, err
		}
	}
	if g.Connective == event.NOT || g.Connective == event.NAND || g.Connective == event.NOR {
		result.Complement = !result.Complement
	}
	b.clearComputedTables()

	if g.Module {
		b.modules[g.Index] = result
	}
	converted[g.Index] = convertEntry{fn: result}
	return result, nil
}

func applyConnective(c event.Connective) event.Connective {
	if c == event.OR || c == event.NOR {
		return event.OR
	}
	return event.AND
}

// findOrAddVertex returns the canonical Ite for (index, high, low,
// complementEdge), creating one if the unique table has no match.
func (b *Bdd) findOrAddVertex(index int, high, low *Ite, complementEdge bool, order int) *Ite {
	lowID := low.ID
	if complementEdge {
		lowID = -lowID
	}
	key := uniqueKey{index: index, highID: high.ID, lowID: lowID}
	if existing, ok := b.uniqueTable[key]; ok {
		return existing
	}
	ite := &Ite{
		Index:          index,
		Order:          order,
		ID:             b.nextFunctionID,
		High:           high,
		Low:            low,
		ComplementEdge: complementEdge,
	}
	b.nextFunctionID++
	b.uniqueTable[key] = ite
	return ite
}

func minMaxSignedID(one, two *Ite, complementOne, complementTwo bool) [2]int {
	a := one.ID
	if complementOne {
		a = -a
	}
	c := two.ID
	if complementTwo {
		c = -c
	}
	if one.ID > two.ID {
		return [2]int{c, a}
	}
	return [2]int{a, c}
}

// Apply combines two BDD vertices under connective (AND or OR), memoizing
// by signed-id pair exactly like the original engine's and_table_/or_table_.
func (b *Bdd) Apply(connective event.Connective, one, two *Ite, complementOne, complementTwo bool) (Function, error) {
	switch connective {
	case event.AND:
		return b.applyAnd(one, two, complementOne, complementTwo)
	case event.OR:
		return b.applyOr(one, two, complementOne, complementTwo)
	default:
		return Function{}, ErrUnsupportedConnective
	}
}

func (b *Bdd) applyAnd(one, two *Ite, complementOne, complementTwo bool) (Function, error) {
	if one.isTerminal() {
		if complementOne {
			return Function{Complement: true, Vertex: Terminal}, nil
		}
		return Function{Complement: complementTwo, Vertex: two}, nil
	}
	if two.isTerminal() {
		if complementTwo {
			return Function{Complement: true, Vertex: Terminal}, nil
		}
		return Function{Complement: complementOne, Vertex: one}, nil
	}
	if one.ID == two.ID {
		if complementOne != complementTwo {
			return Function{Complement: true, Vertex: Terminal}, nil
		}
		return Function{Complement: complementOne, Vertex: one}, nil
	}
	key := minMaxSignedID(one, two, complementOne, complementTwo)
	if cached, ok := b.andTable[key]; ok {
		return cached, nil
	}
	result, err := b.applyIte(event.AND, one, two, complementOne, complementTwo)
	if err != nil {
		return Function{}, err
	}
	b.andTable[key] = result
	return result, nil
}

func (b *Bdd) applyOr(one, two *Ite, complementOne, complementTwo bool) (Function, error) {
	if one.isTerminal() {
		if !complementOne {
			return Function{Vertex: Terminal}, nil
		}
		return Function{Complement: complementTwo, Vertex: two}, nil
	}
	if two.isTerminal() {
		if !complementTwo {
			return Function{Vertex: Terminal}, nil
		}
		return Function{Complement: complementOne, Vertex: one}, nil
	}
	if one.ID == two.ID {
		if complementOne != complementTwo {
			return Function{Vertex: Terminal}, nil
		}
		return Function{Complement: complementOne, Vertex: one}, nil
	}
	key := minMaxSignedID(one, two, complementOne, complementTwo)
	if cached, ok := b.orTable[key]; ok {
		return cached, nil
	}
	result, err := b.applyIte(event.OR, one, two, complementOne, complementTwo)
	if err != nil {
		return Function{}, err
	}
	b.orTable[key] = result
	return result, nil
}

// applyIte recurses on the earlier-ordered variable, matching the original
// engine's order-aware Apply<Type>(ItePtr, ItePtr, ...).
func (b *Bdd) applyIte(connective event.Connective, one, two *Ite, complementOne, complementTwo bool) (Function, error) {
	if one.Order > two.Order {
		one, two = two, one
		complementOne, complementTwo = complementTwo, complementOne
	}

	var high, low Function
	var err error
	if one.Order == two.Order {
		high, err = b.Apply(connective, one.High, two.High, complementOne, complementTwo)
		if err != nil {
			return Function{}, err
		}
		low, err = b.Apply(connective, one.Low, two.Low, complementOne != one.ComplementEdge, complementTwo != two.ComplementEdge)
		if err != nil {
			return Function{}, err
		}
	} else {
		high, err = b.Apply(connective, one.High, two, complementOne, complementTwo)
		if err != nil {
			return Function{}, err
		}
		low, err = b.Apply(connective, one.Low, two, complementOne != one.ComplementEdge, complementTwo)
		if err != nil {
			return Function{}, err
		}
	}

	complementEdge := high.Complement != low.Complement
	if complementEdge || high.Vertex.ID != low.Vertex.ID {
		vertex := b.findOrAddVertex(one.Index, high.Vertex, low.Vertex, complementEdge, one.Order)
		return Function{Complement: high.Complement, Vertex: vertex}, nil
	}
	return high, nil
}

// Module returns the Function a module-proxy vertex at index stands for, as
// recorded by convertGate when it encountered a module gate.
func (b *Bdd) Module(index int) (Function, bool) {
	fn, ok := b.modules[index]
	return fn, ok
}

// CalculateConsensus returns the consensus (Boole-Shannon co-factor product)
// of ite's high and low cofactors, used by the ZBDD engine to derive prime
// implicants rather than plain minimal cut sets.
func (b *Bdd) CalculateConsensus(ite *Ite, complement bool) (Function, error) {
	b.clearComputedTables()
	return b.applyAnd(ite.High, ite.Low, complement, complement != ite.ComplementEdge)
}

// CountIteNodes counts the distinct Ite nodes reachable from vertex,
// descending into module proxies. It is self-contained: marks are cleared
// before counting and restored to false afterward, so callers never need to
// manage mark state themselves.
func (b *Bdd) CountIteNodes(vertex *Ite) int {
	b.clearMarks(vertex, false)
	n := b.countIteNodes(vertex)
	b.clearMarks(vertex, false)
	return n
}

func (b *Bdd) countIteNodes(vertex *Ite) int {
	if vertex.isTerminal() || vertex.mark {
		return 0
	}
	vertex.mark = true
	inModule := 0
	if vertex.Module {
		if mod, ok := b.modules[vertex.Index]; ok {
			inModule = b.countIteNodes(mod.Vertex)
		}
	}
	return 1 + inModule + b.countIteNodes(vertex.High) + b.countIteNodes(vertex.Low)
}

func (b *Bdd) clearMarks(vertex *Ite, mark bool) {
	if vertex.isTerminal() || vertex.mark == mark {
		return
	}
	vertex.mark = mark
	if vertex.Module {
		if mod, ok := b.modules[vertex.Index]; ok {
			b.clearMarks(mod.Vertex, mark)
		}
	}
	b.clearMarks(vertex.High, mark)
	b.clearMarks(vertex.Low, mark)
}

// clearComputedTables drops the and/or Apply memoization tables, mirroring
// ClearTables: they are only valid within one ConvertGraph merge pass.
func (b *Bdd) clearComputedTables() {
	b.andTable = make(map[[2]int]Function)
	b.orTable = make(map[[2]int]Function)
}

// TestStructure walks the BDD asserting every reduction/ordering invariant
// holds; it panics on violation since a broken BDD means a construction bug,
// never bad input.
func (b *Bdd) TestStructure() {
	b.clearMarks(b.Root.Vertex, false)
	b.testStructure(b.Root.Vertex)
	b.clearMarks(b.Root.Vertex, false)
}

func (b *Bdd) testStructure(vertex *Ite) {
	if vertex.isTerminal() || vertex.mark {
		return
	}
	vertex.mark = true
	if vertex.Index == 0 {
		panic("bdd: illegal zero index for a node")
	}
	if vertex.Order == 0 {
		panic("bdd: improper order for a node")
	}
	if vertex.High == nil || vertex.Low == nil {
		panic("bdd: malformed node high/low pointers")
	}
	if !vertex.ComplementEdge && vertex.High.ID == vertex.Low.ID {
		panic("bdd: reduction rule failure")
	}
	if !vertex.High.isTerminal() && vertex.Order >= vertex.High.Order {
		panic("bdd: ordering of nodes failed (high)")
	}
	if !vertex.Low.isTerminal() && vertex.Order >= vertex.Low.Order {
		panic("bdd: ordering of nodes failed (low)")
	}
	if vertex.Module {
		mod, ok := b.modules[vertex.Index]
		if !ok || mod.Vertex.isTerminal() {
			panic("bdd: terminal modules must be removed")
		}
		b.testStructure(mod.Vertex)
	}
	b.testStructure(vertex.High)
	b.testStructure(vertex.Low)
}
