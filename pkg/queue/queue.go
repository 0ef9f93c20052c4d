package queue

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Queue dispatches named jobs to their handlers.
type Queue interface {
	Dispatch(ctx context.Context, name string, payload any, opts ...DispatchOption) error
	Schedule(name, spec string, fn func(ctx context.Context) error) error
	Handlers() *Handlers
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ParseSchedule parses a five field cron expression or a descriptor such as
// "@hourly" or "@every 10m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errorf(ErrInvalidSchedule, spec, err)
	}
	return s, nil
}
