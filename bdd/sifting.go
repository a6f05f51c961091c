package bdd

// PerformSifting runs dynamic variable reordering over the current variable
// order, repeatedly relocating each variable to the position that minimizes
// total node count, stopping at the first pass that brings no improvement or
// after maxIterations passes, whichever comes first.
// growthThreshold is accepted for parity with the original signature but
// unused: the port only tracks absolute size, never a relative growth bound.
func (b *Bdd) PerformSifting(maxIterations int, growthThreshold float64) {
	if !b.ReorderingEnabled {
		return
	}
	b.clearMarks(b.Root.Vertex, false)
	currentSize := b.CountIteNodes(b.Root.Vertex)
	b.clearMarks(b.Root.Vertex, false)
	if currentSize <= b.SiftingThreshold || len(b.indexToOrder) < 2 {
		return
	}

	bestSize := currentSize
	for iteration := 0; iteration < maxIterations; iteration++ {
		improved := false
		for varIndex := range snapshotOrder(b.indexToOrder) {
			optimal := b.findOptimalPosition(varIndex)
			if optimal != b.indexToOrder[varIndex] {
				b.relocateVariable(varIndex, optimal)
				b.clearMarks(b.Root.Vertex, false)
				newSize := b.CountIteNodes(b.Root.Vertex)
				b.clearMarks(b.Root.Vertex, false)
				if newSize < bestSize {
					bestSize = newSize
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
}

func snapshotOrder(order map[int]int) []int {
	keys := make([]int, 0, len(order))
	for idx := range order {
		keys = append(keys, idx)
	}
	return keys
}

// findOptimalPosition tries sliding varIndex up and down via adjacent swaps,
// restoring state after each probe, returning the order position that
// minimized total node count (or the variable's current position if no
// swap helped).
func (b *Bdd) findOptimalPosition(varIndex int) int {
	currentOrder, ok := b.indexToOrder[varIndex]
	if !ok {
		return 1
	}
	bestOrder := currentOrder
	b.clearMarks(b.Root.Vertex, false)
	bestSize := b.CountIteNodes(b.Root.Vertex)
	b.clearMarks(b.Root.Vertex, false)

	savedOrder := cloneOrderMap(b.indexToOrder)
	savedRoot := b.Root

	testOrder := currentOrder
	for testOrder > 1 {
		neighborIndex := -1
		for idx, o := range b.indexToOrder {
			if o == testOrder-1 {
				neighborIndex = idx
				break
			}
		}
		if neighborIndex == -1 {
			break
		}
		b.swapAdjacentVariables(neighborIndex)
		testOrder--
		b.clearMarks(b.Root.Vertex, false)
		newSize := b.CountIteNodes(b.Root.Vertex)
		b.clearMarks(b.Root.Vertex, false)
		if newSize < bestSize {
			bestSize = newSize
			bestOrder = testOrder
		}
	}
	b.indexToOrder = cloneOrderMap(savedOrder)
	b.Root = savedRoot

	testOrder = currentOrder
	maxOrder := maxOrderValue(b.indexToOrder)
	for testOrder < maxOrder {
		if !b.hasVariableAtOrder(testOrder + 1) {
			break
		}
		b.swapAdjacentVariables(varIndex)
		testOrder++
		b.clearMarks(b.Root.Vertex, false)
		newSize := b.CountIteNodes(b.Root.Vertex)
		b.clearMarks(b.Root.Vertex, false)
		if newSize < bestSize {
			bestSize = newSize
			bestOrder = testOrder
		}
	}
	b.indexToOrder = savedOrder
	b.Root = savedRoot

	return bestOrder
}

func (b *Bdd) hasVariableAtOrder(order int) bool {
	for _, o := range b.indexToOrder {
		if o == order {
			return true
		}
	}
	return false
}

func maxOrderValue(order map[int]int) int {
	max := 1
	for _, o := range order {
		if o > max {
			max = o
		}
	}
	return max
}

func cloneOrderMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// swapAdjacentVariables exchanges varIndex with whichever variable currently
// sits one position below it, rebuilding the touched subgraph through the
// unique table so every ITE node respects the new order.
func (b *Bdd) swapAdjacentVariables(varIndex int) {
	currentOrder, ok := b.indexToOrder[varIndex]
	if !ok {
		return
	}
	nextOrder := currentOrder + 1
	swapIndex := -1
	for idx, o := range b.indexToOrder {
		if o == nextOrder {
			swapIndex = idx
			break
		}
	}
	if swapIndex == -1 {
		return
	}

	b.indexToOrder[varIndex] = nextOrder
	b.indexToOrder[swapIndex] = currentOrder

	substitution := make(map[*Ite]*Ite)
	b.Root = b.swapVariablesInSubgraph(b.Root, varIndex, swapIndex, substitution)
	b.clearComputedTables()
}

// relocateVariable walks varIndex from its current position to newOrder one
// adjacent swap at a time.
func (b *Bdd) relocateVariable(varIndex, newOrder int) {
	current := b.indexToOrder[varIndex]
	for current < newOrder && b.hasVariableAtOrder(current+1) {
		b.swapAdjacentVariables(varIndex)
		current++
	}
	for current > newOrder {
		neighborIndex := -1
		for idx, o := range b.indexToOrder {
			if o == current-1 {
				neighborIndex = idx
				break
			}
		}
		if neighborIndex == -1 {
			break
		}
		b.swapAdjacentVariables(neighborIndex)
		current--
	}
}

// swapVariablesInSubgraph rebuilds fn's subgraph with var1Index and
// var2Index's roles exchanged: every node that tested var1 now tests var2
// and vice versa, with order taken from the already-updated indexToOrder.
// Untouched nodes are reused; touched ones are recreated via the unique
// table and cached in substitution so shared subgraphs stay shared.
func (b *Bdd) swapVariablesInSubgraph(fn Function, var1Index, var2Index int, substitution map[*Ite]*Ite) Function {
	if fn.Vertex.isTerminal() {
		return fn
	}
	if replaced, ok := substitution[fn.Vertex]; ok {
		return Function{Complement: fn.Complement, Vertex: replaced}
	}

	ite := fn.Vertex
	newHigh := b.swapVariablesInSubgraph(Function{Complement: false, Vertex: ite.High}, var1Index, var2Index, substitution)
	newLow := b.swapVariablesInSubgraph(Function{Complement: ite.ComplementEdge, Vertex: ite.Low}, var1Index, var2Index, substitution)

	newIndex := ite.Index
	switch ite.Index {
	case var1Index:
		newIndex = var2Index
	case var2Index:
		newIndex = var1Index
	}
	newOrder := b.indexToOrder[newIndex]
	newVertex := b.findOrAddVertex(newIndex, newHigh.Vertex, newLow.Vertex, newLow.Complement, newOrder)
	newVertex.Module = ite.Module
	newVertex.Coherent = ite.Coherent
	substitution[ite] = newVertex

	return Function{Complement: fn.Complement, Vertex: newVertex}
}
