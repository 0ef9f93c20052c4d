package console

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// RouteRow is one line of route:list.
type RouteRow struct {
	Type       string
	Methods    []string
	URI        string
	Name       string
	Middleware []string
}

// Routes bootstraps app and lists its REST routes followed by its AJAX
// actions, in definition order.
func Routes(app App) ([]RouteRow, error) {
	if err := app.Bootstrap(); err != nil {
		return nil, err
	}

	var rows []RouteRow
	rest := app.Router()
	for route := range rest.Routes().Each() {
		rows = append(rows, RouteRow{
			Type:       "rest",
			Methods:    route.Methods(),
			URI:        rest.RouteNamespace(route) + "/" + strings.Trim(route.URI(), "/"),
			Name:       route.GetName(),
			Middleware: route.GatherMiddleware(),
		})
	}
	for route := range app.Ajax().Routes().Each() {
		rows = append(rows, ajaxRow(route))
	}
	return rows, nil
}

func ajaxRow(route *routing.Route) RouteRow {
	return RouteRow{
		Type:       "ajax",
		Methods:    route.Methods(),
		URI:        route.URI(),
		Name:       route.GetName(),
		Middleware: route.GatherMiddleware(),
	}
}

func routeListCommand(app App) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "route:list",
		Short: "List the registered routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := Routes(app)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tMETHOD\tURI\tNAME\tMIDDLEWARE")
			for _, row := range rows {
				if only != "" && row.Type != only {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					row.Type,
					strings.Join(row.Methods, "|"),
					row.URI,
					row.Name,
					strings.Join(row.Middleware, ","),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&only, "type", "", "only list rest or ajax routes")
	return cmd
}
