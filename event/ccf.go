package event

import (
	"fmt"
	"math/big"

	"github.com/openpra-org/scram-go/expression"
)

// ExpandCCFGroups replaces every member of every registered CCF group with
// an OR-gate over an independent-failure basic event and one shared basic
// event per common-cause combination, following the multiple-Greek-letter
// (MGL) beta-factor family: for n identical members with total failure
// probability Q and per-level factors rho_2..rho_n (Factors[0..n-2]), the
// independent term is Q*(1 - sum(rho_k)) and each k-member combination
// shares one basic event of probability Q*rho_k / C(n-1, k-1).
//
// The original member basic event's ID is repointed, inside every gate that
// referenced it, to a freshly synthesized OR-gate; callers must re-run
// Model.Validate after expansion.
func (m *Model) ExpandCCFGroups() error {
	for _, group := range m.CCFGroups {
		if err := group.Validate(); err != nil {
			return err
		}
		if len(group.Members) < 2 {
			continue
		}
		replacement, err := m.expandCCFGroup(group)
		if err != nil {
			return err
		}
		for id, gate := range replacement {
			m.retarget(id, gate)
		}
	}
	return nil
}

// expandCCFGroup returns a map from original member id to the synthesized
// replacement gate for that member.
func (m *Model) expandCCFGroup(group *CCFGroup) (map[string]*Gate, error) {
	n := len(group.Members)
	factors := group.Factors
	if len(factors) == 1 {
		// Simple two-parameter beta-factor model: one shared event for "all fail together".
		factors = make([]float64, n-1)
		factors[n-2] = group.Factors[0]
	}

	replacement := make(map[string]*Gate, n)
	// One shared basic event per (level, combination).
	sharedByCombo := make(map[string]*BasicEvent)

	combos := combinationsUpTo(n)
	for memberIdx, member := range group.Members {
		p, _ := member.P()
		rhoSum := 0.0
		for _, rho := range factors {
			rhoSum += rho
		}
		independentP := p * (1 - rhoSum)

		indepEvent := &BasicEvent{
			ID:   fmt.Sprintf("__ccf__%s__%s__indep", group.Name, member.ID),
			Name: member.Name + " (independent)",
			Expr: expression.NewConstant(independentP),
		}
		if err := m.AddBasicEvent(indepEvent); err != nil {
			return nil, err
		}

		args := []Arg{{Event: indepEvent}}
		for level := 2; level <= n; level++ {
			rho := factors[level-2]
			if rho == 0 {
				continue
			}
			denom := binomial(n-1, level-1)
			if denom == 0 {
				continue
			}
			sharedP := p * rho / float64(denom)
			for _, combo := range combos[level] {
				if !containsIndex(combo, memberIdx) {
					continue
				}
				key := fmt.Sprintf("%s:%d:%v", group.Name, level, combo)
				shared, ok := sharedByCombo[key]
				if !ok {
					shared = &BasicEvent{
						ID:   fmt.Sprintf("__ccf__%s__lvl%d__%v", group.Name, level, combo),
						Name: fmt.Sprintf("%s CCF level %d %v", group.Name, level, combo),
						Expr: expression.NewConstant(sharedP),
					}
					if err := m.AddBasicEvent(shared); err != nil {
						return nil, err
					}
					sharedByCombo[key] = shared
				}
				args = append(args, Arg{Event: shared})
			}
		}

		formula, err := NewFormula(OR, args, nil, nil)
		if err != nil {
			return nil, err
		}
		gate := &Gate{ID: "__ccf_gate__" + member.ID, Name: member.Name, Formula: formula}
		if err := m.AddGate(gate); err != nil {
			return nil, err
		}
		replacement[member.ID] = gate
	}
	return replacement, nil
}

// retarget rewrites every gate's formula so that any argument referencing
// the basic event with the given id instead references the replacement gate,
// preserving polarity.
func (m *Model) retarget(basicEventID string, replacement *Gate) {
	for _, g := range m.Gates {
		if g.Formula == nil {
			continue
		}
		for i, arg := range g.Formula.Args {
			if be, ok := arg.Event.(*BasicEvent); ok && be.ID == basicEventID {
				g.Formula.Args[i].Event = replacement
			}
		}
	}
}

func containsIndex(combo []int, idx int) bool {
	for _, v := range combo {
		if v == idx {
			return true
		}
	}
	return false
}

// combinationsUpTo returns, for every level 2..n, every level-sized subset
// of indices [0,n) as a sorted slice of ints.
func combinationsUpTo(n int) map[int][][]int {
	out := make(map[int][][]int, n-1)
	for level := 2; level <= n; level++ {
		out[level] = combinations(n, level)
	}
	return out
}

func combinations(n, k int) [][]int {
	var result [][]int
	combo := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			item := make([]int, k)
			copy(item, combo)
			result = append(result, item)
			return
		}
		for i := start; i < n; i++ {
			combo[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return result
}

func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	res := big.NewInt(1)
	for i := 0; i < k; i++ {
		res.Mul(res, big.NewInt(int64(n-i)))
		res.Div(res, big.NewInt(int64(i+1)))
	}
	return res.Int64()
}
