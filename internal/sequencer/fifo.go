package sequencer

// fifo is an unbounded first-in first-out queue.
//
// It is not safe for concurrent use; the driver and application code only
// touch a Sequencer from the tick loop.
type fifo[T any] struct {
	items []T
}

// push adds v to the back.
func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

// front returns the first element without removing it.
func (q *fifo[T]) front() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// pop removes and returns the first element.
func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]

	// Clear the slot so the backing array does not keep the action alive.
	q.items[0] = zero

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return v, true
}

func (q *fifo[T]) len() int {
	return len(q.items)
}

// clear drops every element.
func (q *fifo[T]) clear() {
	clear(q.items)
	q.items = q.items[:0]
}
