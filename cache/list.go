package cache

// listNode is an intrusive list element addressed by key.
type listNode[K comparable] struct {
	key  K
	prev *listNode[K]
	next *listNode[K]
}

// keyList is a circular doubly-linked list of keys with a sentinel root.
// The front is the oldest end and the back is the newest end.
// A keyList must not be copied after init.
type keyList[K comparable] struct {
	root listNode[K]
	len  int
}

func (l *keyList[K]) init() *keyList[K] {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

func (l *keyList[K]) front() *listNode[K] {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

func (l *keyList[K]) back() *listNode[K] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

func (l *keyList[K]) pushBack(n *listNode[K]) {
	at := l.root.prev
	n.prev = at
	n.next = &l.root
	at.next = n
	l.root.prev = n
	l.len++
}

func (l *keyList[K]) unlink(n *listNode[K]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
	l.len--
}

func (l *keyList[K]) moveToBack(n *listNode[K]) {
	if l.root.prev == n {
		return
	}
	l.unlink(n)
	l.pushBack(n)
}

// appendKeys appends the keys front to back, or back to front when reverse is set.
func (l *keyList[K]) appendKeys(dst []K, reverse bool) []K {
	if reverse {
		for n := l.root.prev; n != &l.root; n = n.prev {
			dst = append(dst, n.key)
		}
		return dst
	}
	for n := l.root.next; n != &l.root; n = n.next {
		dst = append(dst, n.key)
	}
	return dst
}
