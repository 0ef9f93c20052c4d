// Package events is the framework's event dispatcher.
//
// Events are names in the host hook table: Listen adds a callback, Dispatch
// runs the filter chain and returns its result. Listeners can be plain funcs
// of any signature; the dispatcher reads their arity so the hook table hands
// them the right number of arguments:
//
//	d := events.NewDispatcher(hooks.New())
//	_ = d.Listen("title", func(title string) string { return strings.ToUpper(title) })
//	d.Dispatch("title", "hello") // "HELLO"
//
// Dispatching a value instead of a name keys the event by its type:
//
//	_ = d.Listen(events.TypeName(UserRegistered{}), func(e UserRegistered) { ... })
//	d.Dispatch(UserRegistered{ID: 1})
package events
