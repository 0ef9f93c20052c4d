// Package host is the native runtime the framework plugs into.
//
// A Host owns a hook table, a registry of REST routes and an HTTP server
// exposing three surfaces:
//
//   - /{rest_prefix}/{namespace}/{route}: routes registered through
//     RegisterRESTRoute, matched case-insensitively in registration order.
//     Unknown paths answer 404 with code rest_no_route.
//   - /{ajax_path}?action=name: fires ajax_{name} for signed-in users and
//     ajax_nopriv_{name} for guests. A listener answers by writing the
//     response and halting the hook; an unanswered action gets 400 "0".
//   - /{health_path} and /{health_path}/live: readiness and liveness probes.
//
// RestInitHook fires once, with the host as its only argument, before the
// first REST request so listeners can register routes lazily:
//
//	h := host.New(host.Config{Addr: ":8080"})
//	h.Hooks().Add(host.RestInitHook, func(args ...any) any {
//	    h := args[0].(*host.Host)
//	    _ = h.RegisterRESTRoute("shop/v1", "products", routing.RESTRoute{...})
//	    return nil
//	}, hooks.DefaultPriority, 1)
//	err := h.Run(ctx)
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains connections and runs the shutdown hooks.
package host
