// Package zbdd derives the minimal cut sets (or, with consensus, prime
// implicants) of a bdd.Bdd as an explicit product list: each product is a
// sorted slice of signed basic-event indices whose conjunction is one
// disjunct of the top event's Boolean function.
package zbdd

import (
	"sort"

	"github.com/openpra-org/scram-go/bdd"
)

// Product is one minimal cut set / prime implicant: a conjunction of signed
// basic-event indices (negative = complemented).
type Product []int

// Zbdd holds every product extracted from one Bdd's root function, generated
// once at construction and then only ever iterated.
type Zbdd struct {
	Products []Product

	// ConsensusEnabled requests prime-implicant generation (via
	// bdd.Bdd.CalculateConsensus) instead of plain minimal cut sets. Prime
	// implicants include both the AND-cofactor products and their pairwise
	// consensus, which is required whenever the underlying PDAG is
	// non-coherent (contains a negation).
	ConsensusEnabled bool
}

// New walks b's root function top-down, enumerating every path to the 1
// terminal as one product: a high edge adds the variable's index, and a low
// edge adds its negated index only when coherent is false (a coherent
// product holds positive literals only). When coherent is false (the PDAG contains a
// negated gate), consensus products are additionally computed so the result
// set covers prime implicants rather than plain cut sets.
func New(b *bdd.Bdd, coherent bool) (*Zbdd, error) {
	z := &Zbdd{ConsensusEnabled: !coherent}

	seen := make(map[string]bool)
	var walk func(vertex *bdd.Ite, complement bool, path []int) error
	walk = func(vertex *bdd.Ite, complement bool, path []int) error {
		if vertex == bdd.Terminal {
			if complement {
				return nil // reached the 0 terminal: not a satisfying path
			}
			product := make(Product, len(path))
			copy(product, path)
			sort.Ints(product)
			key := productKey(product)
			if !seen[key] {
				seen[key] = true
				z.Products = append(z.Products, product)
			}
			return nil
		}

		highComplement := complement
		if err := walk(vertex.High, highComplement, append(path, vertex.Index)); err != nil {
			return err
		}
		lowComplement := complement != vertex.ComplementEdge
		lowPath := path
		if z.ConsensusEnabled {
			lowPath = append(path, -vertex.Index)
		}
		if err := walk(vertex.Low, lowComplement, lowPath); err != nil {
			return err
		}

		if z.ConsensusEnabled && !vertex.High.IsTerminal() {
			consensus, err := b.CalculateConsensus(vertex, complement)
			if err != nil {
				return err
			}
			if err := walk(consensus.Vertex, consensus.Complement, path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(b.Root.Vertex, b.Root.Complement, nil); err != nil {
		return nil, err
	}
	return z, nil
}

func productKey(p Product) string {
	buf := make([]byte, 0, len(p)*6)
	for _, lit := range p {
		buf = appendInt(buf, lit)
		buf = append(buf, ',')
	}
	return string(buf)
}

func appendInt(buf []byte, v int) []byte {
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}
	if v == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
