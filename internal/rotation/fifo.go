package rotation

import (
	"container/list"

	id "courthouse/pkg/domain"
)

// fifo is an ordered set: each id appears at most once, and any member can be
// detached in O(1). Callers hold the owning structure's lock.
type fifo struct {
	order   *list.List
	members map[id.EntityID]*list.Element
}

func newFIFO() fifo {
	return fifo{order: list.New(), members: make(map[id.EntityID]*list.Element)}
}

func (f *fifo) pushBack(v id.EntityID) bool {
	if _, ok := f.members[v]; ok {
		return false
	}
	f.members[v] = f.order.PushBack(v)
	return true
}

func (f *fifo) front() (id.EntityID, bool) {
	e := f.order.Front()
	if e == nil {
		return 0, false
	}
	return e.Value.(id.EntityID), true
}

func (f *fifo) remove(v id.EntityID) bool {
	e, ok := f.members[v]
	if !ok {
		return false
	}
	f.order.Remove(e)
	delete(f.members, v)
	return true
}

func (f *fifo) moveToBack(v id.EntityID) {
	if e, ok := f.members[v]; ok {
		f.order.MoveToBack(e)
	}
}

func (f *fifo) contains(v id.EntityID) bool {
	_, ok := f.members[v]
	return ok
}

func (f *fifo) len() int { return f.order.Len() }

func (f *fifo) snapshot() []id.EntityID {
	out := make([]id.EntityID, 0, f.order.Len())
	for e := f.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(id.EntityID))
	}
	return out
}
