package commands

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
)

var quotes = []string{
	"Simplicity is prerequisite for reliability.",
	"Make it work, make it right, make it fast.",
	"Clear is better than clever.",
}

// Inspire returns the inspire command.
func Inspire() *cobra.Command {
	return &cobra.Command{
		Use:   "inspire",
		Short: "Display an inspiring quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(quotes[rand.IntN(len(quotes))])
			return nil
		},
	}
}
