package schedule

import (
	"context"
	"errors"
)

var ErrInvalidJob = errors.New("schedule: job requires a name, a spec and a run function")

// Job is a recurring task. Spec uses the standard five-field cron syntax or descriptors
// such as "@every 5m".
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

func (j Job) Validate() error {
	if j.Name == "" || j.Spec == "" || j.Run == nil {
		return ErrInvalidJob
	}
	return nil
}

type Scheduler interface {
	Register(job Job) error
	Start()
	// Stop prevents new runs and waits for running jobs until ctx is done.
	Stop(ctx context.Context) error
}
