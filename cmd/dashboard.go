package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/projection"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d"},
	Short:   "Show your assigned maintenance",
	Long: `Show the signed-in employee's assigned maintenance: every assigned event,
the ones still open up to today, the completed ones, and a breakdown of
completed work by task type.

Examples:
  aircare dashboard
  aircare dash --format json`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	userID := ctx.Session.UserID()
	if userID == "" && user != nil {
		userID = user.ID
	}
	if userID == "" {
		return errors.NewUserError("the session has no user id", "Sign in again with 'aircare login'.")
	}

	if err := refreshStore(c); err != nil {
		return err
	}
	buckets := projection.Assigned(ctx.Store.Events(), userID, ctx.Now())

	var mine *model.EmployeeStats
	stats, err := ctx.Gateway.EmployeeStatistics(c)
	if err != nil {
		logging.WarnContext(c, "could not load task statistics", logging.KeyError, err)
	}
	for i := range stats {
		if stats[i].EmployeeID == userID {
			mine = &stats[i]
			break
		}
	}

	units := ctx.Store.Units()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewDashboardResponse(user, buckets, units, mine))
	}
	ctx.CLIFormatter().PrintDashboard(user, buckets, units, mine)
	return nil
}
