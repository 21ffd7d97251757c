package cache

// listIndex backs FIFO, LIFO, LRU and MRU with one ordered key list.
//
// The back of the list is the most recently inserted (or touched) key.
// Writes always move a key to the back. Reads only do so for the
// recency policies, so FIFO and LIFO keep insertion order under reads.
type listIndex[K comparable] struct {
	nodes        map[K]*listNode[K]
	order        keyList[K]
	evictNewest  bool
	reorderOnHit bool
}

func newListIndex[K comparable](evictNewest, reorderOnHit bool) *listIndex[K] {
	idx := &listIndex[K]{
		nodes:        make(map[K]*listNode[K]),
		evictNewest:  evictNewest,
		reorderOnHit: reorderOnHit,
	}
	idx.order.init()
	return idx
}

func (x *listIndex[K]) Register(key K) {
	if n, ok := x.nodes[key]; ok {
		x.order.moveToBack(n)
		return
	}
	n := &listNode[K]{key: key}
	x.nodes[key] = n
	x.order.pushBack(n)
}

func (x *listIndex[K]) Touch(key K) {
	if n, ok := x.nodes[key]; ok {
		x.order.moveToBack(n)
	}
}

func (x *listIndex[K]) Hit(key K) {
	if x.reorderOnHit {
		x.Touch(key)
	}
}

func (x *listIndex[K]) Victim() K {
	var n *listNode[K]
	if x.evictNewest {
		n = x.order.back()
	} else {
		n = x.order.front()
	}
	if n == nil {
		panic("cache: victim requested from empty order index")
	}
	return n.key
}

func (x *listIndex[K]) Remove(key K) {
	n, ok := x.nodes[key]
	if !ok {
		return
	}
	x.order.unlink(n)
	delete(x.nodes, key)
}

func (x *listIndex[K]) Len() int {
	return x.order.len
}

func (x *listIndex[K]) Keys() []K {
	return x.order.appendKeys(make([]K, 0, x.order.len), x.evictNewest)
}

func (x *listIndex[K]) Reset() {
	x.nodes = make(map[K]*listNode[K])
	x.order.init()
}

var _ OrderIndex[string] = (*listIndex[string])(nil)
