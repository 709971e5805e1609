package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ysh4me/bibliotheque-interactif/internal/entrypoint"
)

type ResetCommand struct {
	All bool
}

func newResetCommand(rt *runtime) *cobra.Command {
	cmd := &ResetCommand{}
	c := &cobra.Command{
		Use:   "reset",
		Short: "Empty the four collections",
		Long:  "Empty the four collections. With --all the stored library and the saved settings are wiped as well.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			app, err := rt.open()
			if err != nil {
				return err
			}
			defer app.Close()
			return cmd.Run(app, c.OutOrStdout())
		},
	}
	c.Flags().BoolVar(&cmd.All, "all", false, "also wipe stored data and settings")
	return c
}

func (cmd *ResetCommand) Run(app *entrypoint.App, out io.Writer) error {
	if !cmd.All {
		if err := app.Store.ResetToDefault(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Library reset")
		return nil
	}

	if err := app.Store.ClearAll(); err != nil {
		return err
	}
	if err := app.Settings.ClearAll(); err != nil {
		return err
	}
	app.Journal.LogSettings("clear_all", "Library and settings wiped from the command line")
	fmt.Fprintln(out, "Library and settings cleared")
	return nil
}
