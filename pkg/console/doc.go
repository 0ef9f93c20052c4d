// Package console is the command line of an Atomic application.
//
// The make: generators write new files from stubs into the project:
//
//	atomic make:controller Admin/PostController
//	atomic make:taxonomy Genre --hierarchical
//
// An existing file is left alone unless --force is given. A project can
// override a stub by placing {kind}.stub in its stubs directory.
//
// With an application attached the console also lists routes, serves the
// application and runs migrations:
//
//	func main() {
//	    app := atomic.New(atomic.WithBasePath("."), atomic.WithRoutes(routes.Map))
//	    if err := console.Execute(console.WithApp(app)); err != nil {
//	        fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	        os.Exit(1)
//	    }
//	}
package console
