// Command example is a small blog built with Atomic.
//
//	go run ./example serve
//	go run ./example route:list
//	go run ./example make:controller CommentController
package main

import (
	"fmt"
	"os"

	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/example/app/console/commands"
	"github.com/BenRutlandWeb/atomic-framework/example/app/cpts"
	"github.com/BenRutlandWeb/atomic-framework/example/app/shortcodes"
	"github.com/BenRutlandWeb/atomic-framework/example/routes"
	"github.com/BenRutlandWeb/atomic-framework/pkg/console"
	"github.com/BenRutlandWeb/atomic-framework/pkg/content"
)

func main() {
	app := atomic.New(
		atomic.WithBasePath(basePath()),
		atomic.WithProviders(&atomic.ContentServiceProvider{
			PostTypes:  []content.PostType{cpts.Book()},
			Shortcodes: []content.Shortcode{shortcodes.Button()},
		}),
	)
	if err := app.Register(&atomic.RouteServiceProvider{Map: routes.Map(app.Application)}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err := console.Execute(
		console.WithApp(app),
		console.WithVersion(atomic.Version),
		console.WithCommands(commands.Inspire()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func basePath() string {
	if dir := os.Getenv("ATOMIC_BASE_PATH"); dir != "" {
		return dir
	}
	return "example"
}
