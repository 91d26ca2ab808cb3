package dictionary

// automaton is an Aho-Corasick machine over bytes. It is built once and
// never mutated afterwards, so concurrent scans need no locking.
type automaton struct {
	nodes    []acNode
	patterns []int // byte length per pattern
}

type acNode struct {
	next map[byte]int32
	fail int32
	// out lists the patterns recognised in this state, longest first,
	// including those inherited through the failure chain.
	out []int32
}

type hit struct {
	pattern int
	start   int
	end     int // exclusive
}

func newAutomaton() *automaton {
	return &automaton{nodes: []acNode{{next: map[byte]int32{}}}}
}

func (a *automaton) add(key string) int {
	cur := int32(0)
	for i := 0; i < len(key); i++ {
		c := key[i]
		nxt, ok := a.nodes[cur].next[c]
		if !ok {
			a.nodes = append(a.nodes, acNode{next: map[byte]int32{}})
			nxt = int32(len(a.nodes) - 1)
			a.nodes[cur].next[c] = nxt
		}
		cur = nxt
	}
	id := len(a.patterns)
	a.patterns = append(a.patterns, len(key))
	a.nodes[cur].out = append(a.nodes[cur].out, int32(id))
	return id
}

// build computes failure links breadth-first and merges output sets.
func (a *automaton) build() {
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for c, child := range a.nodes[cur].next {
			f := a.nodes[cur].fail
			for {
				if nxt, ok := a.nodes[f].next[c]; ok && nxt != child {
					a.nodes[child].fail = nxt
					break
				}
				if f == 0 {
					a.nodes[child].fail = 0
					break
				}
				f = a.nodes[f].fail
			}
			inherited := a.nodes[a.nodes[child].fail].out
			if len(inherited) > 0 {
				merged := make([]int32, 0, len(a.nodes[child].out)+len(inherited))
				merged = append(merged, a.nodes[child].out...)
				merged = append(merged, inherited...)
				a.nodes[child].out = merged
			}
			queue = append(queue, child)
		}
	}
}

func (a *automaton) step(state int32, c byte) int32 {
	for {
		if nxt, ok := a.nodes[state].next[c]; ok {
			return nxt
		}
		if state == 0 {
			return 0
		}
		state = a.nodes[state].fail
	}
}

// scan calls fn for every (possibly overlapping) occurrence in order of end
// position. Returning false stops the scan.
func (a *automaton) scan(text string, fn func(hit) bool) {
	state := int32(0)
	for i := 0; i < len(text); i++ {
		state = a.step(state, text[i])
		for _, p := range a.nodes[state].out {
			end := i + 1
			if !fn(hit{pattern: int(p), start: end - a.patterns[p], end: end}) {
				return
			}
		}
	}
}
