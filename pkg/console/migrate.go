package console

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/db"
)

// MigratorService is the container name the migrator is bound under.
const MigratorService = "migrator"

func migrator(app App) (*db.Migrator, error) {
	if err := app.Bootstrap(); err != nil {
		return nil, err
	}
	return container.MakeNamed[*db.Migrator](app, MigratorService)
}

func migrateCommands(app App) []*cobra.Command {
	run := func(use, short string, fn func(*db.Migrator, context.Context) ([]int64, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := migrator(app)
				if err != nil {
					return err
				}
				versions, err := fn(m, cmd.Context())
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					cmd.Println("Nothing to migrate.")
					return nil
				}
				for _, v := range versions {
					cmd.Printf("%s: %d\n", use, v)
				}
				return nil
			},
		}
	}

	status := &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(app)
			if err != nil {
				return err
			}
			list, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tMIGRATION\tAPPLIED")
			for _, mg := range list {
				fmt.Fprintf(w, "%d\t%s\t%t\n", mg.Version, mg.Path, mg.Applied)
			}
			return w.Flush()
		},
	}

	return []*cobra.Command{
		run("migrate", "Run the pending migrations", (*db.Migrator).Up),
		run("migrate:rollback", "Roll back the last migration", (*db.Migrator).Down),
		run("migrate:reset", "Roll back every migration", (*db.Migrator).Reset),
		status,
	}
}
