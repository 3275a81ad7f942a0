package core

// ByteQueue is a fixed-capacity single-producer single-consumer byte FIFO.
// The producer is typically a UART interrupt and the consumer the main loop.
// A byte pushed into a full queue is dropped and counted.
type ByteQueue struct {
	buf     []byte
	head    int // next write
	tail    int // next read
	dropped uint32
}

// NewByteQueue creates a queue holding up to capacity bytes
func NewByteQueue(capacity int) *ByteQueue {
	// One slot stays empty to tell full from empty
	return &ByteQueue{buf: make([]byte, capacity+1)}
}

// Push enqueues b from the producer side. It reports false if the queue was full.
func (q *ByteQueue) Push(b byte) bool {
	st := disableInterrupts()
	defer restoreInterrupts(st)

	next := (q.head + 1) % len(q.buf)
	if next == q.tail {
		q.dropped++
		return false
	}
	q.buf[q.head] = b
	q.head = next
	return true
}

// Pop dequeues one byte from the consumer side
func (q *ByteQueue) Pop() (byte, bool) {
	st := disableInterrupts()
	defer restoreInterrupts(st)

	if q.tail == q.head {
		return 0, false
	}
	b := q.buf[q.tail]
	q.tail = (q.tail + 1) % len(q.buf)
	return b, true
}

// Drain pops every queued byte into fn and returns how many were handled
func (q *ByteQueue) Drain(fn func(b byte)) int {
	n := 0
	for {
		b, ok := q.Pop()
		if !ok {
			return n
		}
		fn(b)
		n++
	}
}

// Len returns the number of queued bytes
func (q *ByteQueue) Len() int {
	st := disableInterrupts()
	defer restoreInterrupts(st)
	return (q.head - q.tail + len(q.buf)) % len(q.buf)
}

// Cap returns the queue capacity
func (q *ByteQueue) Cap() int {
	return len(q.buf) - 1
}

// Dropped returns the number of bytes lost to a full queue
func (q *ByteQueue) Dropped() uint32 {
	st := disableInterrupts()
	defer restoreInterrupts(st)
	return q.dropped
}

// Reset empties the queue
func (q *ByteQueue) Reset() {
	st := disableInterrupts()
	q.head, q.tail = 0, 0
	restoreInterrupts(st)
}
