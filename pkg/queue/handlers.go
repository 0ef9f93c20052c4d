package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

type handler func(ctx context.Context, payload json.RawMessage) error

// Handlers maps job names to their handlers.
type Handlers struct {
	mu sync.RWMutex
	m  map[string]handler
}

func newHandlers() *Handlers {
	return &Handlers{m: make(map[string]handler)}
}

// Names returns the registered job names, sorted.
func (h *Handlers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.m))
}

// Has reports whether name has a handler.
func (h *Handlers) Has(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.m[name]
	return ok
}

func (h *Handlers) set(name string, fn handler) {
	h.mu.Lock()
	h.m[name] = fn
	h.mu.Unlock()
}

func (h *Handlers) run(ctx context.Context, name string, payload json.RawMessage) error {
	h.mu.RLock()
	fn, ok := h.m[name]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: [%s]", ErrUnknownJob, name)
	}
	return fn(ctx, payload)
}

// Register sets the handler of the jobs named name. The payload is decoded
// from JSON into P.
func Register[P any](q Queue, name string, fn func(ctx context.Context, payload P) error) {
	q.Handlers().set(name, func(ctx context.Context, raw json.RawMessage) error {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return fn(ctx, p)
	})
}

func encode(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return b, nil
}
