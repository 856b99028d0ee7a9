package grammar

// Permutations enumerates the cartesian product of a grammar's key groups
// lazily. The first-declared group varies slowest; grouped names advance in
// lockstep. The sequence is restartable.
type Permutations struct {
	groups []KeyGroup
	idx    []int
	done   bool
}

// NewPermutations creates an enumerator over the given key groups.
func NewPermutations(groups []KeyGroup) *Permutations {
	p := &Permutations{groups: groups}
	p.Restart()
	return p
}

// Count returns the total number of permutations: the product of each
// group's value-sequence length. Grouped keys count once, by tuple count.
func (p *Permutations) Count() int {
	total := 1
	for _, g := range p.groups {
		total *= len(g.Values)
	}
	return total
}

// Restart rewinds the enumeration to the first permutation.
func (p *Permutations) Restart() {
	p.idx = make([]int, len(p.groups))
	p.done = false
	for _, g := range p.groups {
		if len(g.Values) == 0 {
			p.done = true
			return
		}
	}
}

// Next returns the next permutation binding, or false when exhausted. The
// returned map is owned by the caller.
func (p *Permutations) Next() (map[string]any, bool) {
	if p.done {
		return nil, false
	}

	binding := make(map[string]any)
	for gi, vi := range p.idx {
		group := p.groups[gi]
		for ni, name := range group.Names {
			binding[name] = group.Values[vi][ni]
		}
	}

	// Advance the odometer, last group fastest.
	for gi := len(p.idx) - 1; gi >= 0; gi-- {
		p.idx[gi]++
		if p.idx[gi] < len(p.groups[gi].Values) {
			return binding, true
		}
		p.idx[gi] = 0
	}
	p.done = true
	return binding, true
}
