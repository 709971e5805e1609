package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ysh4me/bibliotheque-interactif/internal/entrypoint"
	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
)

type ExportCommand struct {
	Output string
	Format string
}

func newExportCommand(rt *runtime) *cobra.Command {
	cmd := &ExportCommand{}
	c := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the library and settings as an export document",
		Long:  "Write the library and settings as an export document. Without a file the document goes to stdout.",
		Example: `  bibliotheque export backup.json
  bibliotheque export --format markdown lectures.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmd.Output = args[0]
			}
			app, err := rt.open()
			if err != nil {
				return err
			}
			defer app.Close()
			return cmd.Run(app, c.OutOrStdout(), c.ErrOrStderr())
		},
	}
	c.Flags().StringVarP(&cmd.Format, "format", "f", exporters.FormatJSON, "export format: json or markdown")
	return c
}

// Run writes the document to Output, or to out when Output is empty.
// The summary goes to status.
func (cmd *ExportCommand) Run(app *entrypoint.App, out, status io.Writer) error {
	w := out
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
		}
		defer f.Close()
		w = f
	}

	result, err := app.Data.Export(w, cmd.Format)
	app.Journal.LogExport(cmd.Format, result.BooksExported, err)
	if err != nil {
		if cmd.Output != "" {
			os.Remove(cmd.Output)
		}
		return err
	}

	if cmd.Output != "" {
		fmt.Fprintf(status, "Exported %d books to %s (%d bytes)\n", result.BooksExported, cmd.Output, result.BytesWritten)
	}
	return nil
}
