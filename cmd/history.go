package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/projection"
)

var historyFlagSearch string

// historyCmd browses all maintenance records.
var historyCmd = &cobra.Command{
	Use:     "history [TERM]",
	Aliases: []string{"hist", "records"},
	Short:   "Browse all maintenance records, newest first",
	Long: `Browse every maintenance record, newest first. A search term matches the
event id, the AC unit's name, or any text field of the event.

Examples:
  aircare history
  aircare history lobby
  aircare history --search "coolant"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFlagSearch, "search", "s", "", "Search term")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := refreshStore(commandContext(cmd)); err != nil {
		return err
	}

	term := historyFlagSearch
	if len(args) > 0 {
		term = args[0]
	}

	units := ctx.Store.Units()
	events := projection.Search(ctx.Store.Events(), units, term)
	projection.SortNewestFirst(events)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewEventsResponse(events, units))
	}
	ctx.CLIFormatter().PrintEvents(events, units)
	return nil
}
