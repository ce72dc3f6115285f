package bruteforce

import (
	"container/heap"

	"github.com/viant/embedstore/store"
)

type candidate struct {
	seq    int
	score  float64
	record store.Record
}

// worse reports whether a ranks below b: lower score, or the same score and
// later in scan order.
func worse(a, b *candidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.seq > b.seq
}

// candidates implements heap.Interface with the worst kept candidate at the
// root.
type candidates []candidate

func (h candidates) Len() int           { return len(h) }
func (h candidates) Less(i, j int) bool { return worse(&h[i], &h[j]) }
func (h candidates) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidates) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidates) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = candidate{}
	*h = old[:n-1]
	return x
}

// topK keeps the k best candidates offered to it.
type topK struct {
	k int
	h candidates
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(candidates, 0, k)}
}

// offer considers a candidate. Candidates arrive in scan order, so one that
// only ties the current worst never displaces it.
func (t *topK) offer(c candidate) {
	if t.k == 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if c.score > t.h[0].score {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// drain empties the heap and returns the candidates best first.
func (t *topK) drain() []candidate {
	out := make([]candidate, len(t.h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(candidate)
	}
	return out
}
