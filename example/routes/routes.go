package routes

import (
	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/example/app/http/controllers"
	"github.com/BenRutlandWeb/atomic-framework/example/app/http/requests"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Map returns the route definitions of the blog.
func Map(app *atomic.Application) func(*atomic.Router, *atomic.AjaxRouter) error {
	return func(router *atomic.Router, ajax *atomic.AjaxRouter) error {
		posts := controllers.NewPostController(app.Events(),
			controllers.Post{ID: "hello-world", Title: "Hello world", Content: `Welcome. [button href="/about"]About us[/button]`},
		)
		contact := controllers.NewContactController(app)

		router.Get("posts/{id}", posts.Show).Name("posts.show")

		router.Middleware("auth").Group(func(r *routing.Router) {
			r.Get("me", func(req *request.Request) (any, error) {
				return req.User(), nil
			}).Name("me")
		})

		ajax.Post("contact", routing.Form(requests.ContactRequest{}, contact.Submit)).
			Middleware("throttle:5,1")
		return nil
	}
}
