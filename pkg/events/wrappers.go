package events

// Action registers and fires side-effect hooks.
type Action struct {
	events *Dispatcher
}

// NewAction wraps d.
func NewAction(d *Dispatcher) *Action {
	return &Action{events: d}
}

// Add listens on hook.
func (a *Action) Add(hook string, action any) error {
	return a.events.Listen(hook, action)
}

// Do fires hook with params.
func (a *Action) Do(hook string, params ...any) {
	a.events.Dispatch(hook, params...)
}

// Remove drops every listener of hook.
func (a *Action) Remove(hook string) {
	a.events.Forget(hook)
}

// Filter registers and applies value filters.
type Filter struct {
	events *Dispatcher
}

// NewFilter wraps d.
func NewFilter(d *Dispatcher) *Filter {
	return &Filter{events: d}
}

// Add listens on hook.
func (f *Filter) Add(hook string, filter any) error {
	return f.events.Listen(hook, filter)
}

// Apply runs hook on params and returns the filtered first param.
func (f *Filter) Apply(hook string, params ...any) any {
	return f.events.Dispatch(hook, params...)
}

// Remove drops every listener of hook.
func (f *Filter) Remove(hook string) {
	f.events.Forget(hook)
}
