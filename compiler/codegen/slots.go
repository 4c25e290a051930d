package codegen

import "nikand.dev/go/heap"

// slotPlan assigns dense local-variable indices to a routine's
// parameters and locals, per spec.md §4.5: parameters occupy 0..n-1 in
// declaration order (slot-counted, since a real parameter consumes two
// indices), followed by locals ordered by first use in the body,
// matching the teacher's use of nikand.dev/go/heap as a ready-list
// ordering structure in compiler/back/back6.go.
type slotPlan struct {
	index map[string]int
	next  int
}

type localUse struct {
	name     string
	firstUse int
	width    int
}

func localUseLess(d []localUse, i, j int) bool { return d[i].firstUse < d[j].firstUse }

// newSlotPlan builds the plan: params first (in order, each width wide),
// then locals ordered by first use via a min-heap keyed on first-use
// position.
func newSlotPlan(params []localUse, locals []localUse) *slotPlan {
	p := &slotPlan{index: make(map[string]int, len(params)+len(locals))}

	for _, pm := range params {
		p.index[pm.name] = p.next
		p.next += pm.width
	}

	h := heap.Heap[localUse]{Less: localUseLess}

	for _, l := range locals {
		h.Push(l)
	}

	for h.Len() != 0 {
		l := h.Pop()

		if _, ok := p.index[l.name]; ok {
			continue
		}

		p.index[l.name] = p.next
		p.next += l.width
	}

	return p
}

// slot returns the assigned local index for name, or -1 if unknown (a
// global, which lives in a static field instead).
func (p *slotPlan) slot(name string) int {
	i, ok := p.index[name]
	if !ok {
		return -1
	}

	return i
}

// localsCount is the "locals" limit spec.md §4.5 requires: computed
// conservatively as the highest assigned slot plus its width, with a
// floor of 5.
func (p *slotPlan) localsCount() int {
	if p.next < 5 {
		return 5
	}

	return p.next
}
