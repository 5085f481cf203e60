package mock

import (
	"context"
	"io"
	"sync"
)

// ExecutedJob records one backup job submitted to the mock executor.
type ExecutedJob struct {
	JobName string
	Args    []string
}

// Executor is a mock of the backup job executor, recording every submission.
type Executor struct {
	mu       sync.Mutex
	Executed []ExecutedJob
	Output   string
	Error    error
}

func NewExecutor() *Executor {
	return &Executor{}
}

func (e *Executor) Execute(_ context.Context, output io.Writer, jobName string, args ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Executed = append(e.Executed, ExecutedJob{
		JobName: jobName,
		Args:    args,
	})

	if output != nil && e.Output != "" {
		_, _ = output.Write([]byte(e.Output))
	}

	return e.Error
}
