// Package hooks implements the host's named hook table.
//
// A hook is a name with an ordered list of callbacks. Filters (Apply) thread a
// value through the callbacks, each one receiving the current value followed
// by the extra arguments and returning the next value. Actions (Do) call the
// callbacks for their side effects. Callbacks run by ascending priority, then
// in registration order; a callback returning Halt stops the chain.
package hooks

import (
	"maps"
	"slices"
	"sort"
	"sync"
)

// DefaultPriority is the priority used when none is given.
const DefaultPriority = 10

// AllArgs makes a callback receive every argument passed to the hook.
const AllArgs = -1

// Callback is a hook callback. It receives at most the accepted number of
// arguments it was registered with.
type Callback func(args ...any) any

type halt struct{}

// Halt is returned by a callback to stop the remaining callbacks.
// Apply returns Halt itself so the caller can tell the chain was cut short.
var Halt any = halt{}

// IsHalt reports whether v is the Halt signal.
func IsHalt(v any) bool {
	_, ok := v.(halt)
	return ok
}

type entry struct {
	fn       Callback
	id       uint64
	priority int
	accepted int
}

// Table is a concurrency-safe hook table.
// Callbacks run outside the lock, so they may register or remove hooks.
type Table struct {
	mu    sync.RWMutex
	hooks map[string][]entry
	next  uint64
}

// New creates an empty hook table.
func New() *Table {
	return &Table{hooks: make(map[string][]entry)}
}

// Add registers fn on hook and returns an id usable with Remove.
func (t *Table) Add(hook string, fn Callback, priority, accepted int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	entries := append(t.hooks[hook], entry{fn: fn, id: t.next, priority: priority, accepted: accepted})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	t.hooks[hook] = entries
	return t.next
}

// Remove unregisters a single callback.
func (t *Table) Remove(hook string, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.hooks[hook]
	for i, e := range entries {
		if e.id == id {
			t.hooks[hook] = slices.Delete(slices.Clone(entries), i, i+1)
			if len(t.hooks[hook]) == 0 {
				delete(t.hooks, hook)
			}
			return true
		}
	}
	return false
}

// RemoveAll unregisters every callback on hook.
func (t *Table) RemoveAll(hook string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hooks, hook)
}

// Has reports whether hook has at least one callback.
func (t *Table) Has(hook string) bool {
	return t.Count(hook) > 0
}

// Count returns the number of callbacks on hook.
func (t *Table) Count(hook string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.hooks[hook])
}

// Names returns every hook with callbacks, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.hooks))
}

// Apply runs the filter chain of hook and returns the final value.
// Without callbacks the value is returned unchanged.
func (t *Table) Apply(hook string, value any, args ...any) any {
	for _, e := range t.snapshot(hook) {
		all := make([]any, 0, len(args)+1)
		all = append(all, value)
		all = append(all, args...)

		value = e.fn(truncate(all, e.accepted)...)
		if IsHalt(value) {
			return value
		}
	}
	return value
}

// Do runs the callbacks of hook for their side effects.
// It reports whether a callback halted the chain.
func (t *Table) Do(hook string, args ...any) (halted bool) {
	for _, e := range t.snapshot(hook) {
		if IsHalt(e.fn(truncate(args, e.accepted)...)) {
			return true
		}
	}
	return false
}

func (t *Table) snapshot(hook string) []entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.hooks[hook])
}

func truncate(args []any, accepted int) []any {
	if accepted < 0 || accepted >= len(args) {
		return args
	}
	return args[:accepted]
}
