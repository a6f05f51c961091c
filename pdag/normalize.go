package pdag

import "github.com/openpra-org/scram-go/event"

// expandXor rewrites an n-ary XOR left-to-right into nested two-argument
// forms `a XOR b == (a AND NOT b) OR (NOT a AND b)`.
func (b *builder) expandXor(formula *event.Formula) *event.Formula {
	args := formula.Args
	if len(args) < 2 {
		return formula
	}
	acc := args[0]
	for _, next := range args[1:] {
		acc = b.pairwiseXor(acc, next)
	}
	f, _ := event.NewFormula(event.NULL, []event.Arg{acc}, nil, nil)
	return f
}

func (b *builder) pairwiseXor(a, c event.Arg) event.Arg {
	notA := event.Arg{Event: a.Event, Complement: !a.Complement}
	notC := event.Arg{Event: c.Event, Complement: !c.Complement}

	leftFormula, _ := event.NewFormula(event.AND, []event.Arg{a, notC}, nil, nil)
	rightFormula, _ := event.NewFormula(event.AND, []event.Arg{notA, c}, nil, nil)

	leftGate := b.newSynthGate(leftFormula)
	rightGate := b.newSynthGate(rightFormula)

	return event.Arg{Event: b.newSynthGate(mustFormula(event.OR, []event.Arg{
		{Event: leftGate}, {Event: rightGate},
	}))}
}

func mustFormula(c event.Connective, args []event.Arg) *event.Formula {
	f, err := event.NewFormula(c, args, nil, nil)
	if err != nil {
		panic(err) // args are well-formed by construction; only ATLEAST/CARDINALITY can fail
	}
	return f
}

// expandAtleast rewrites an ATLEAST-k/CARDINALITY[min,max] gate into an
// equivalent AND/OR network: OR, over every k-combination of the n
// arguments, of the AND of that combination. CARDINALITY's
// max bound is realized by additionally forbidding any (max+1)-combination,
// i.e. ANDing in the negation of every (max+1)-subset's conjunction.
func (b *builder) expandAtleast(formula *event.Formula) *event.Formula {
	args := formula.Args
	n := len(args)
	min := formula.MinNumber != nil && *formula.MinNumber > 0
	minVal := 0
	if formula.MinNumber != nil {
		minVal = *formula.MinNumber
	}
	maxVal := n
	if formula.MaxNumber != nil {
		maxVal = *formula.MaxNumber
	}
	_ = min

	if minVal <= 0 {
		// "at least 0 of n" is vacuously true.
		return mustFormula(event.NULL, []event.Arg{{Event: event.TrueEvent}})
	}

	var orArgs []event.Arg
	for _, combo := range combinations(n, minVal) {
		andArgs := make([]event.Arg, len(combo))
		for i, idx := range combo {
			andArgs[i] = args[idx]
		}
		if len(andArgs) == 1 {
			orArgs = append(orArgs, andArgs[0])
			continue
		}
		gate := b.newSynthGate(mustFormula(event.AND, andArgs))
		orArgs = append(orArgs, event.Arg{Event: gate})
	}

	atLeastKFormula := orArgs[0]
	if len(orArgs) > 1 {
		atLeastKFormula = event.Arg{Event: b.newSynthGate(mustFormula(event.OR, orArgs))}
	}

	if maxVal >= n {
		f, _ := event.NewFormula(event.NULL, []event.Arg{atLeastKFormula}, nil, nil)
		return f
	}

	// Forbid any (maxVal+1)-combination from all being true.
	var notTooMany []event.Arg
	for _, combo := range combinations(n, maxVal+1) {
		andArgs := make([]event.Arg, len(combo))
		for i, idx := range combo {
			andArgs[i] = args[idx]
		}
		gate := b.newSynthGate(mustFormula(event.AND, andArgs))
		notTooMany = append(notTooMany, event.Arg{Event: gate, Complement: true})
	}
	boundGate := b.newSynthGate(mustFormula(event.AND, append([]event.Arg{atLeastKFormula}, notTooMany...)))
	f, _ := event.NewFormula(event.NULL, []event.Arg{{Event: boundGate}}, nil, nil)
	return f
}

func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	if k == 0 {
		return [][]int{{}}
	}
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
