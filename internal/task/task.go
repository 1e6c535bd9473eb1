package task

import "context"

// Task is a unit of scheduled background work.
type Task interface {
	// Name identifies the task in logs and in the scheduler.
	Name() string

	// Run executes one pass of the task. The context is cancelled when the
	// scheduler shuts down.
	Run(ctx context.Context) error
}
