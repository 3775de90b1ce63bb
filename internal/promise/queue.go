// Package promise implements spec.md §4.7's promise state machine and
// FIFO microtask queue, grounded on
// original_source/src/interpreter/builtins/promise.rs (fulfill_promise/
// reject_promise/promise_then/trigger_promise_reactions, translated from
// a push-a-closure-onto-microtask_queue design into the same shape
// driven against this module's heap.Heap/heap.PromiseSlot).
package promise

// Task is one deferred microtask: a reaction firing, or a thenable
// assimilation step.
type Task func()

// Queue is the single FIFO microtask queue shared by the whole runtime
// (spec.md §4.7/§5: "the queue is FIFO and is drained to empty before
// returning to the host").
type Queue struct {
	tasks []Task
}

// NewQueue builds an empty microtask queue.
func NewQueue() *Queue { return &Queue{} }

// Enqueue appends t to the back of the queue.
func (q *Queue) Enqueue(t Task) {
	q.tasks = append(q.tasks, t)
}

// Len reports the number of pending microtasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Drain runs every pending task in FIFO order, including tasks enqueued
// by tasks already running, until the queue is empty.
func (q *Queue) Drain() {
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		t()
	}
}
