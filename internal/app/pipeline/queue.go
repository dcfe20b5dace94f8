package pipeline

import (
	"fmt"

	"coachlens/internal/app/model"
)

// Task points a worker at one queued job. The record itself lives in the
// store; the channel only carries the reference, so a dropped task can be
// re-enqueued without losing state.
type Task struct {
	Kind model.JobKind
	ID   string
}

// Queue is the in-process hand-off between submission and the worker pool.
type Queue struct {
	tasks chan Task
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{tasks: make(chan Task, capacity)}
}

// Enqueue adds a task without blocking. A full queue is a capacity problem
// the caller must surface, not silently absorb.
func (q *Queue) Enqueue(t Task) error {
	select {
	case q.tasks <- t:
		return nil
	default:
		return fmt.Errorf("job queue full (capacity %d)", cap(q.tasks))
	}
}

func (q *Queue) Tasks() <-chan Task { return q.tasks }

func (q *Queue) Close() { close(q.tasks) }
