package lease

import (
	"container/heap"
)

// --------------------------------------------------------------------------
// Expiry Index
// --------------------------------------------------------------------------

// item is one scheduled expiry in the index, identified by lock name
// and ordered by deadline.
type item struct {
	Name     string // lock name of the lease
	Deadline int64  // expiry deadline in unix nanoseconds
	index    int    // index in the heap, maintained by the heap package
}

// expiryIndex combines a min-heap ordered by deadline with a map for
// O(1) access by name. The watchdog peeks the earliest deadline instead
// of scanning the whole table; renewals update the scheduled deadline
// in place.
//
// Not thread-safe; the Table serializes access with its own mutex.
type expiryIndex struct {
	items   []*item
	itemMap map[string]*item
}

func newExpiryIndex() *expiryIndex {
	return &expiryIndex{
		items:   make([]*item, 0),
		itemMap: make(map[string]*item),
	}
}

// --------------------------------------------------------------------------
// heap.Interface
// --------------------------------------------------------------------------

func (idx *expiryIndex) Len() int { return len(idx.items) }

func (idx *expiryIndex) Less(i, j int) bool {
	return idx.items[i].Deadline < idx.items[j].Deadline
}

func (idx *expiryIndex) Swap(i, j int) {
	idx.items[i], idx.items[j] = idx.items[j], idx.items[i]
	idx.items[i].index = i
	idx.items[j].index = j
}

func (idx *expiryIndex) Push(x interface{}) {
	n := len(idx.items)
	it := x.(*item)
	it.index = n
	idx.items = append(idx.items, it)
	idx.itemMap[it.Name] = it
}

func (idx *expiryIndex) Pop() interface{} {
	old := idx.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	idx.items = old[:n-1]
	delete(idx.itemMap, it.Name)
	return it
}

// --------------------------------------------------------------------------
// Convenience Methods
// --------------------------------------------------------------------------

// Schedule adds the name with the given deadline, or moves the existing
// entry to the new deadline.
func (idx *expiryIndex) Schedule(name string, deadline int64) {
	if it, ok := idx.itemMap[name]; ok {
		it.Deadline = deadline
		heap.Fix(idx, it.index)
		return
	}
	heap.Push(idx, &item{Name: name, Deadline: deadline})
}

// Remove deletes the entry for the name if one is scheduled.
func (idx *expiryIndex) Remove(name string) {
	if it, ok := idx.itemMap[name]; ok {
		heap.Remove(idx, it.index)
	}
}

// PopDue removes and returns the name with the earliest deadline if that
// deadline is at or before now. The boolean is false if nothing is due.
func (idx *expiryIndex) PopDue(now int64) (string, bool) {
	if len(idx.items) == 0 || idx.items[0].Deadline > now {
		return "", false
	}
	it := heap.Pop(idx).(*item)
	return it.Name, true
}
