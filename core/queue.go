package core

// pendingQueue holds serialized envelopes waiting for an open transport.
// When max > 0 and the queue is full, the oldest entry is evicted.
type pendingQueue struct {
	items [][]byte
	max   int
}

func newPendingQueue(max int) *pendingQueue {
	return &pendingQueue{max: max}
}

// push appends data and reports whether an older entry was evicted.
func (q *pendingQueue) push(data []byte) bool {
	evicted := false
	if q.max > 0 && len(q.items) >= q.max {
		q.items[0] = nil
		q.items = q.items[1:]
		evicted = true
	}
	q.items = append(q.items, data)
	return evicted
}

// drain returns all entries in insertion order and empties the queue.
func (q *pendingQueue) drain() [][]byte {
	items := q.items
	q.items = nil
	return items
}

func (q *pendingQueue) len() int { return len(q.items) }
