// Package request is the per-request input wrapper handed to actions and
// middleware.
//
// Each inbound HTTP request becomes one *Request. Its input source is the
// query string for GET/HEAD and the decoded body otherwise; middleware can
// rewrite it (Merge, Set, Replace) before the action reads it. Route
// parameters are merged into the input source when the route matches.
//
// The user, route and validator are supplied by resolvers so that the
// routing and auth packages can install them without this package
// depending on either.
package request
