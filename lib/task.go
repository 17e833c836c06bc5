package lib

import "sync/atomic"

// Task is the result of work running off the update loop. Views poll
// IsDone once per tick.
type Task[T any] struct {
	Result T
	Err    error
	done   atomic.Bool
}

func (task *Task[T]) Finish()      { task.done.Store(true) }
func (task *Task[T]) IsDone() bool { return task.done.Load() }

func Go[T any](fn func() (T, error)) *Task[T] {
	task := &Task[T]{}
	go func() {
		defer task.Finish()
		task.Result, task.Err = fn()
	}()
	return task
}
