package matching

import (
	"container/heap"
	"math"
)

// candidate is a scored catalog position.
type candidate struct {
	index int
	score float64
}

// better orders candidates by descending score, earlier catalog index first
// on ties.
func (c candidate) better(o candidate) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	return c.index < o.index
}

// worstFirst is a min-heap whose root is the weakest kept candidate.
type worstFirst []candidate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return h[j].better(h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// selectTop returns up to k indexes of scores that are >= minProb, ordered by
// descending score with ties kept in index order. It runs in O(n log k).
func selectTop(scores []float64, minProb float64, k int) []candidate {
	if k < 1 {
		return []candidate{}
	}
	h := make(worstFirst, 0, min(k, len(scores)))
	for i, s := range scores {
		if math.IsNaN(s) || s < minProb {
			continue
		}
		c := candidate{index: i, score: s}
		if h.Len() < k {
			heap.Push(&h, c)
			continue
		}
		if c.better(h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}
	out := make([]candidate, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(candidate)
	}
	return out
}
