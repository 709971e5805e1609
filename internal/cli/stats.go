package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/entrypoint"
)

const topAuthors = 5

type StatsCommand struct{}

func newStatsCommand(rt *runtime) *cobra.Command {
	cmd := &StatsCommand{}
	return &cobra.Command{
		Use:   "stats",
		Short: "Print library statistics",
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
}

func (cmd *StatsCommand) Run(app *entrypoint.App, out io.Writer) error {
	stats := app.Store.GetStats()

	fmt.Fprintf(out, "Total: %d books\n", stats.TotalBooks)
	for _, column := range entities.Columns {
		s := stats.Columns[column]
		fmt.Fprintf(out, "  %-12s %d\n", s.Title, s.Count)
	}

	fmt.Fprintln(out, "Ratings:")
	for rating := entities.MaxRating; rating >= 1; rating-- {
		fmt.Fprintf(out, "  %d/%d  %d\n", rating, entities.MaxRating, stats.Ratings[rating])
	}

	if len(stats.Authors) > 0 {
		fmt.Fprintln(out, "Authors:")
		for _, name := range rankByCount(stats.Authors, topAuthors) {
			fmt.Fprintf(out, "  %s (%d)\n", name, stats.Authors[name])
		}
	}

	if stats.Dates.OldestBook != nil && stats.Dates.NewestBook != nil {
		fmt.Fprintf(out, "Added between %s and %s\n",
			stats.Dates.OldestBook.Format("2006-01-02"),
			stats.Dates.NewestBook.Format("2006-01-02"))
	}
	return nil
}

// rankByCount returns up to n keys ordered by descending count, then name.
func rankByCount(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
