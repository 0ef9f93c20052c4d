// Package routing maps Laravel-style route definitions onto the host's REST
// route registry and AJAX hooks.
//
// Routes are defined on a Router (REST) or an AjaxRouter (AJAX actions) with
// verb methods, groups and fluent registrars:
//
//	router.Prefix("posts").Name("posts.").Middleware("auth").Group(func(r *routing.Router) {
//	    r.Get("/", posts.Index).Name("index")
//	    r.Get("{id}", posts.Show).Name("show")
//	})
//
// Nothing is served until Dispatch registers the collected routes with the
// host. Every request then gets a *request.Request that runs through the
// global middleware, the route middleware (resolved from names, groups and
// "alias:args" forms) and finally the action. The action result is written
// by WriteResponse; errors go to the configured ExceptionHandler.
//
// URLGenerator builds URLs for named routes once the collections' name
// lookups have been refreshed.
package routing
