package queue

import "time"

type dispatch struct {
	queue     string
	at        time.Time
	tries     int
	priority  int
	uniqueFor time.Duration
	uniqueKey string
	tags      []string
}

// DispatchOption configures a dispatched job.
type DispatchOption func(*dispatch)

// OnQueue sends the job to a named queue.
func OnQueue(name string) DispatchOption {
	return func(d *dispatch) { d.queue = name }
}

// Delay holds the job back for d.
func Delay(d time.Duration) DispatchOption {
	return func(o *dispatch) { o.at = time.Now().Add(d) }
}

// At holds the job back until t.
func At(t time.Time) DispatchOption {
	return func(d *dispatch) { d.at = t }
}

// Tries limits the attempts of the job.
func Tries(n int) DispatchOption {
	return func(d *dispatch) {
		if n > 0 {
			d.tries = n
		}
	}
}

// Priority orders jobs, 1 first.
func Priority(p int) DispatchOption {
	return func(d *dispatch) { d.priority = p }
}

// Unique drops the job when another job with the same name and key was
// dispatched within period.
func Unique(key string, period time.Duration) DispatchOption {
	return func(d *dispatch) {
		d.uniqueKey = key
		d.uniqueFor = period
	}
}

// Tags labels the job.
func Tags(tags ...string) DispatchOption {
	return func(d *dispatch) { d.tags = append(d.tags, tags...) }
}

func applyDispatch(opts []DispatchOption) dispatch {
	var d dispatch
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
