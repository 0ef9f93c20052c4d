package console

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// App is the part of an application the console commands drive.
// *atomic.App satisfies it.
type App interface {
	container.Resolver
	Bootstrap() error
	Run(ctx context.Context) error
	Router() *routing.Router
	Ajax() *routing.AjaxRouter
	BasePath(elems ...string) string
}

type settings struct {
	name     string
	version  string
	root     string
	app      App
	commands []*cobra.Command
}

// Option configures the console.
type Option func(*settings)

// WithName sets the binary name shown in usage.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithVersion sets the version printed by --version.
func WithVersion(v string) Option {
	return func(s *settings) { s.version = v }
}

// WithRoot sets the project root the generators write into. It defaults to
// the application base path, or the working directory.
func WithRoot(dir string) Option {
	return func(s *settings) { s.root = dir }
}

// WithApp enables the commands that need a running application:
// route:list, serve and the migrate family.
func WithApp(app App) Option {
	return func(s *settings) { s.app = app }
}

// WithCommands adds application commands.
func WithCommands(cmds ...*cobra.Command) Option {
	return func(s *settings) { s.commands = append(s.commands, cmds...) }
}

// New builds the root command.
func New(opts ...Option) *cobra.Command {
	s := settings{name: "atomic"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.root == "" {
		if s.app != nil {
			s.root = s.app.BasePath()
		} else if wd, err := os.Getwd(); err == nil {
			s.root = wd
		}
	}

	root := &cobra.Command{
		Use:           s.name,
		Short:         "Atomic framework console",
		Version:       s.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)

	gen := NewGenerator(s.root)
	for _, k := range Kinds {
		root.AddCommand(makeCommand(gen, k))
	}

	if s.app != nil {
		root.AddCommand(
			routeListCommand(s.app),
			serveCommand(s.app),
		)
		root.AddCommand(migrateCommands(s.app)...)
	}
	root.AddCommand(s.commands...)
	return root
}

// Execute runs the console with os.Args, cancelling on SIGINT or SIGTERM.
func Execute(opts ...Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return New(opts...).ExecuteContext(ctx)
}

func makeCommand(gen *Generator, kind Kind) *cobra.Command {
	var (
		force        bool
		public       bool
		hierarchical bool
	)
	cmd := &cobra.Command{
		Use:   "make:" + kind.Name + " [name]",
		Short: kind.Description,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := map[string]string{
				"public":       fmt.Sprint(public),
				"hierarchical": fmt.Sprint(hierarchical),
			}
			path, err := gen.Generate(kind, args[0], force, extra)
			if err != nil {
				return err
			}
			cmd.Printf("%s created: %s\n", kind.Name, path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite the file if it exists")
	if kind.Name == "taxonomy" {
		cmd.Flags().BoolVar(&public, "public", true, "make the taxonomy public")
		cmd.Flags().BoolVar(&hierarchical, "hierarchical", false, "make the taxonomy hierarchical")
	}
	return cmd
}

func serveCommand(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context())
		},
	}
}
