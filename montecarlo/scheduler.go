package montecarlo

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
)

// Scheduler evaluates every gate in a PDAG bottom-up over bit-packed sample
// buffers, exploiting pdag.AssignOrder's invariant that a child's Order is
// always strictly greater than its parent's: gates sharing one Order value
// can never be each other's ancestor or descendant, so each "wave" of
// same-Order gates can be evaluated concurrently, following the layered
// dispatch the original engine's queue::layer_manager performs across SYCL
// kernel launches.
type Scheduler struct {
	Graph   *pdag.PDAG
	Buffers pdag.IndexMap[[]uint64]
}

// NewScheduler prepares a Scheduler whose Buffers map already holds one
// sample buffer per basic event (from BasicEventSampler.SampleAll); gate
// buffers are filled in by Run.
func NewScheduler(graph *pdag.PDAG, variableBuffers pdag.IndexMap[[]uint64]) *Scheduler {
	return &Scheduler{Graph: graph, Buffers: variableBuffers}
}

// Run evaluates every gate's word buffer, deepest (highest Order) first, so
// a gate's children are always already populated when the gate itself is
// processed. Gates within one wave run concurrently via errgroup.
func (s *Scheduler) Run(ctx context.Context) error {
	waves := waveByDescendingOrder(s.Graph)
	for _, wave := range waves {
		g, ctx := errgroup.WithContext(ctx)
		for _, gate := range wave {
			gate := gate
			g.Go(func() error {
				return s.evaluateGate(ctx, gate)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func waveByDescendingOrder(graph *pdag.PDAG) [][]*pdag.Gate {
	byOrder := make(map[int][]*pdag.Gate)
	for _, gate := range graph.Gates {
		byOrder[gate.Order] = append(byOrder[gate.Order], gate)
	}
	orders := make([]int, 0, len(byOrder))
	for order := range byOrder {
		orders = append(orders, order)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(orders)))

	waves := make([][]*pdag.Gate, len(orders))
	for i, order := range orders {
		gates := byOrder[order]
		sort.Slice(gates, func(a, b int) bool { return gates[a].Index < gates[b].Index })
		waves[i] = gates
	}
	return waves
}

func (s *Scheduler) evaluateGate(ctx context.Context, gate *pdag.Gate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	numWords := s.bufferWidth()
	out := make([]uint64, numWords)

	for word := 0; word < numWords; word++ {
		var positive, negated []uint64
		for _, arg := range gate.Args {
			childWords := s.Buffers.Get(arg.Child.VertexIndex())
			v := childWords[word]
			if arg.Index < 0 {
				negated = append(negated, v)
			} else {
				positive = append(positive, v)
			}
		}
		result, err := s.evaluateWord(gate, positive, negated)
		if err != nil {
			return err
		}
		out[word] = result
	}
	s.Buffers.Set(gate.Index, out)
	return nil
}

func (s *Scheduler) evaluateWord(gate *pdag.Gate, positive, negated []uint64) (uint64, error) {
	if gate.Connective == event.ATLEAST || gate.Connective == event.CARDINALITY {
		return EvaluateAtleast(positive, negated, gate.MinNumber)
	}
	return EvaluateGate(gate.Connective, positive, negated)
}

// bufferWidth finds the word-buffer length from any populated basic-event
// buffer, for gates whose first wave has no args sharing the probe index.
func (s *Scheduler) bufferWidth() int {
	for _, words := range s.Buffers {
		if len(words) > 0 {
			return len(words)
		}
	}
	return 0
}
