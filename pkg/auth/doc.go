// Package auth authenticates requests from a signed cookie and protects
// state-changing requests with CSRF tokens.
//
// A Guard stores the user id in an HMAC-signed cookie written by a
// CookieJar and resolves the user through a UserProvider:
//
//	jar, _ := auth.NewCookieJar(appKey)
//	guard := auth.NewGuard(jar, users, auth.WithPasswordChecker(hasher))
//	user, err := guard.Attempt(req, email, password, true)
//
// CSRF tokens are bound to the signed-in user, or to a random key kept in a
// cookie for guests:
//
//	csrf, _ := auth.NewCSRF(appKey, jar, auth.WithGuard(guard))
//	field := csrf.Field(req) // <input type="hidden" name="_token" ...>
//	err := csrf.VerifyRequest(req) // *auth.TokenMismatchError on failure
package auth
