// Package pipeline passes a payload through a stack of stages.
//
// Each stage receives the payload and a continuation. Calling the
// continuation hands the (possibly modified) payload to the next stage;
// returning without calling it short-circuits the rest of the pipeline,
// destination included.
//
//	res, err := pipeline.New[*request.Request, any]().
//	    Send(req).
//	    Through(authenticate, trimStrings).
//	    Then(controller.Show)
package pipeline

// Next hands the payload to the rest of the pipeline.
type Next[T, R any] func(payload T) (R, error)

// Stage is a single pipe.
type Stage[T, R any] func(payload T, next Next[T, R]) (R, error)

// Pipeline is a reusable, immutable description of the stages a payload
// goes through. Send and Through return copies.
type Pipeline[T, R any] struct {
	payload T
	stages  []Stage[T, R]
}

// New creates an empty pipeline.
func New[T, R any]() Pipeline[T, R] {
	return Pipeline[T, R]{}
}

// Send sets the payload.
func (p Pipeline[T, R]) Send(payload T) Pipeline[T, R] {
	p.payload = payload
	return p
}

// Through appends stages. Nil stages are ignored.
func (p Pipeline[T, R]) Through(stages ...Stage[T, R]) Pipeline[T, R] {
	merged := make([]Stage[T, R], 0, len(p.stages)+len(stages))
	merged = append(merged, p.stages...)
	for _, s := range stages {
		if s != nil {
			merged = append(merged, s)
		}
	}
	p.stages = merged
	return p
}

// Then runs the pipeline with destination as the final step.
func (p Pipeline[T, R]) Then(destination Next[T, R]) (R, error) {
	return Compose(destination, p.stages...)(p.payload)
}

// ThenReturn runs the pipeline and returns the payload the last stage passed on.
func (p Pipeline[T, R]) ThenReturn(convert func(T) R) (R, error) {
	return p.Then(func(payload T) (R, error) {
		return convert(payload), nil
	})
}

// Compose folds stages around destination, first stage outermost.
func Compose[T, R any](destination Next[T, R], stages ...Stage[T, R]) Next[T, R] {
	next := destination
	for i := len(stages) - 1; i >= 0; i-- {
		stage, inner := stages[i], next
		next = func(payload T) (R, error) {
			return stage(payload, inner)
		}
	}
	return next
}
