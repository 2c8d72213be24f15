// Package queue provides a blocking bounded FIFO shared by many producers
// and many consumers.
//
// Producers block in Push while the queue is full; consumers block in Pop
// while it is empty. Close declares that no producer will push again: Pop
// keeps draining what is buffered and then reports exhaustion, so consumers
// exit only once all work has been taken.
//
// Example Usage:
//
//	q := queue.New[*Job](workers)
//	go func() { for _, j := range jobs { q.Push(j) }; q.Close() }()
//	for j, ok := q.Pop(); ok; j, ok = q.Pop() { handle(j) }
package queue

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Push after Close
var ErrClosed = errors.New("queue closed")

// Bounded is a fixed-capacity FIFO guarded by one mutex and two conditions
type Bounded[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond // Signalled when a slot frees up
	notEmpty *sync.Cond // Signalled when an element arrives

	buf    []T // Ring storage, len(buf) == capacity
	head   int // Index of the oldest element
	count  int // Number of buffered elements
	closed bool
}

// New creates a queue holding at most capacity elements (minimum 1)
func New[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &Bounded[T]{buf: make([]T, capacity)}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends v, blocking while the queue is full. It never drops.
func (q *Bounded[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.isFull() && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}

	q.buf[(q.head+q.count)%len(q.buf)] = v
	q.count++
	q.notEmpty.Signal()
	return nil
}

// Pop removes the oldest element, blocking while the queue is empty and
// open. It returns false once the queue is empty and closed.
func (q *Bounded[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.isEmpty() && !q.closed {
		q.notEmpty.Wait()
	}

	var zero T
	if q.isEmpty() {
		return zero, false
	}

	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.notFull.Signal()
	return v, true
}

// Close marks the producer side done and wakes every blocked caller
func (q *Bounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Len returns the number of buffered elements
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity
func (q *Bounded[T]) Cap() int {
	return len(q.buf)
}

// Closed reports whether Close has been called
func (q *Bounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Bounded[T]) isFull() bool  { return q.count == len(q.buf) }
func (q *Bounded[T]) isEmpty() bool { return q.count == 0 }
