package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ysh4me/bibliotheque-interactif/internal/entrypoint"
)

type ImportCommand struct {
	Input string
}

func newImportCommand(rt *runtime) *cobra.Command {
	cmd := &ImportCommand{}
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the library with an export document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cmd.Input = args[0]
			app, err := rt.open()
			if err != nil {
				return err
			}
			defer app.Close()
			return cmd.Run(app, c.OutOrStdout())
		},
	}
}

func (cmd *ImportCommand) Run(app *entrypoint.App, out io.Writer) error {
	raw, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Input, err)
	}

	result, err := app.Data.Import(raw)
	if err != nil {
		app.Journal.LogImport("Import rejected: "+cmd.Input, 0, 0, "", err)
		return err
	}
	app.Journal.LogImport(
		fmt.Sprintf("Imported %d books from %s", result.TotalBooks, cmd.Input),
		result.TotalBooks, result.Report.EntriesDropped, result.ArchivePath, nil)

	fmt.Fprintf(out, "Imported %d books", result.TotalBooks)
	if result.Report.EntriesDropped > 0 {
		fmt.Fprintf(out, ", %d invalid entries dropped", result.Report.EntriesDropped)
	}
	if result.SettingsApplied {
		fmt.Fprint(out, ", settings restored")
	}
	fmt.Fprintln(out)
	return nil
}
