package cache

// freqBucket holds every key touched exactly count times.
// Buckets form a list in ascending count order; empty buckets are unlinked.
type freqBucket[K comparable] struct {
	count int
	keys  keyList[K] // front is the least recently touched
	prev  *freqBucket[K]
	next  *freqBucket[K]
}

func newFreqBucket[K comparable](count int) *freqBucket[K] {
	b := &freqBucket[K]{count: count}
	b.keys.init()
	return b
}

type lfuNode[K comparable] struct {
	listNode[K]
	bucket *freqBucket[K]
}

// lfuIndex is an O(1) LFU index: a list of frequency buckets, each holding
// its keys in recency order.
type lfuIndex[K comparable] struct {
	nodes map[K]*lfuNode[K]
	head  *freqBucket[K] // lowest count
}

func newLFUIndex[K comparable]() *lfuIndex[K] {
	return &lfuIndex[K]{nodes: make(map[K]*lfuNode[K])}
}

func (x *lfuIndex[K]) Register(key K) {
	if _, ok := x.nodes[key]; ok {
		x.Touch(key)
		return
	}
	b := x.head
	if b == nil || b.count != 1 {
		b = newFreqBucket[K](1)
		b.next = x.head
		if x.head != nil {
			x.head.prev = b
		}
		x.head = b
	}
	n := &lfuNode[K]{bucket: b}
	n.key = key
	b.keys.pushBack(&n.listNode)
	x.nodes[key] = n
}

func (x *lfuIndex[K]) Touch(key K) {
	n, ok := x.nodes[key]
	if !ok {
		return
	}
	cur := n.bucket
	next := cur.next

	// Sole member and no bucket waiting at count+1: bump in place.
	if cur.keys.len == 1 && (next == nil || next.count != cur.count+1) {
		cur.count++
		return
	}

	if next == nil || next.count != cur.count+1 {
		next = newFreqBucket[K](cur.count + 1)
		next.prev = cur
		next.next = cur.next
		if cur.next != nil {
			cur.next.prev = next
		}
		cur.next = next
	}
	cur.keys.unlink(&n.listNode)
	next.keys.pushBack(&n.listNode)
	n.bucket = next
	if cur.keys.len == 0 {
		x.unlinkBucket(cur)
	}
}

func (x *lfuIndex[K]) Hit(key K) {
	x.Touch(key)
}

func (x *lfuIndex[K]) Victim() K {
	if x.head == nil {
		panic("cache: victim requested from empty order index")
	}
	return x.head.keys.front().key
}

func (x *lfuIndex[K]) Remove(key K) {
	n, ok := x.nodes[key]
	if !ok {
		return
	}
	b := n.bucket
	b.keys.unlink(&n.listNode)
	delete(x.nodes, key)
	if b.keys.len == 0 {
		x.unlinkBucket(b)
	}
}

func (x *lfuIndex[K]) Len() int {
	return len(x.nodes)
}

func (x *lfuIndex[K]) Keys() []K {
	keys := make([]K, 0, len(x.nodes))
	for b := x.head; b != nil; b = b.next {
		keys = b.keys.appendKeys(keys, false)
	}
	return keys
}

func (x *lfuIndex[K]) Reset() {
	x.nodes = make(map[K]*lfuNode[K])
	x.head = nil
}

// Frequency returns how many times key has been registered or touched.
func (x *lfuIndex[K]) Frequency(key K) (int, bool) {
	n, ok := x.nodes[key]
	if !ok {
		return 0, false
	}
	return n.bucket.count, true
}

func (x *lfuIndex[K]) unlinkBucket(b *freqBucket[K]) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		x.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.prev = nil
	b.next = nil
}

var _ OrderIndex[string] = (*lfuIndex[string])(nil)
