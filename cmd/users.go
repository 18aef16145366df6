package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/validate"
)

var (
	userFlagUsername  string
	userFlagFirstName string
	userFlagLastName  string
	userFlagEmail     string
	userFlagAge       int
	userFlagBirthdate string
	userFlagAddress   string
	userFlagRole      string

	usersDeleteFlagForce bool
)

// usersCmd is the admin panel for employee accounts.
var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user", "employees"},
	Short:   "Manage employee accounts (admin)",
	Long: `Manage employee accounts. Every subcommand needs an admin account.

Examples:
  aircare users list
  aircare users show 65f1c0a2e4b0c1a2b3c4d5e6
  aircare users edit 65f1c0a2e4b0c1a2b3c4d5e6 --email ana@example.com
  aircare users delete 65f1c0a2e4b0c1a2b3c4d5e6`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if ctx == nil {
			return nil
		}
		return requireAdmin()
	},
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List employee accounts",
	Args:    cobra.NoArgs,
	RunE:    runUsersList,
}

var usersShowCmd = &cobra.Command{
	Use:               "show ID",
	Short:             "Show an employee account",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUserArgs,
	RunE:              runUsersShow,
}

var usersEditCmd = &cobra.Command{
	Use:               "edit ID",
	Short:             "Change an employee account",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUserArgs,
	RunE:              runUsersEdit,
}

var usersDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete an employee account",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUserArgs,
	RunE:              runUsersDelete,
}

// statsCmd prints task statistics for every employee.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completed tasks per employee (admin)",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	f := usersEditCmd.Flags()
	f.StringVar(&userFlagUsername, "username", "", "Username")
	f.StringVar(&userFlagFirstName, "first", "", "First name")
	f.StringVar(&userFlagLastName, "last", "", "Last name")
	f.StringVar(&userFlagEmail, "email", "", "Email address")
	f.IntVar(&userFlagAge, "age", 0, "Age in years")
	f.StringVar(&userFlagBirthdate, "birthdate", "", "Birth date (YYYY-MM-DD)")
	f.StringVar(&userFlagAddress, "address", "", "Postal address")
	f.StringVar(&userFlagRole, "role", "", "Role (admin or empty)")

	usersDeleteCmd.Flags().BoolVarP(&usersDeleteFlagForce, "force", "y", false, "Skip confirmation")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersEditCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(statsCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	users, err := ctx.Gateway.ListUsers(commandContext(cmd))
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"users": output.NewUserOutputs(users),
			"count": len(users),
		})
	}
	ctx.CLIFormatter().PrintUsers(users)
	return nil
}

func runUsersShow(cmd *cobra.Command, args []string) error {
	if err := validate.StorageID("id", args[0]); err != nil {
		return err
	}
	user, err := ctx.Gateway.GetUser(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUserOutput(*user))
	}
	ctx.CLIFormatter().PrintUser(user)
	return nil
}

func runUsersEdit(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := validate.StorageID("id", args[0]); err != nil {
		return err
	}

	user, err := ctx.Gateway.GetUser(c, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
			changed = true
		}
	}
	set("username", &user.Username, strings.TrimSpace(userFlagUsername))
	set("first", &user.FirstName, validate.SanitizeName(userFlagFirstName))
	set("last", &user.LastName, validate.SanitizeName(userFlagLastName))
	set("email", &user.Email, strings.TrimSpace(userFlagEmail))
	set("birthdate", &user.Birthdate, strings.TrimSpace(userFlagBirthdate))
	set("address", &user.Address, validate.SanitizeText(userFlagAddress))
	set("role", &user.Role, strings.TrimSpace(userFlagRole))
	if flags.Changed("age") {
		user.Age = userFlagAge
		changed = true
	}
	if !changed {
		return errors.NewUserError("nothing to change", "Pass at least one field flag, e.g. --email.")
	}

	if err := validateEmployee(*user, flags.Changed("age")); err != nil {
		return err
	}

	updated, err := ctx.Gateway.UpdateUser(c, *user)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUserOutput(*updated))
	}
	ctx.CLIFormatter().Success("Updated " + updated.Username)
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	id := args[0]
	if err := validate.StorageID("id", id); err != nil {
		return err
	}
	if id == ctx.Session.UserID() {
		return errors.NewUserError("you cannot delete your own account", "Ask another admin to remove it.")
	}

	user, err := ctx.Gateway.GetUser(c, id)
	if err != nil {
		return err
	}

	if !usersDeleteFlagForce && !ctx.IsJSON() {
		if !confirm(fmt.Sprintf("Delete %s (%s)? [y/N] ", user.FullName(), user.Username)) {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Gateway.DeleteUser(c, id); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: "deleted", ID: id})
	}
	ctx.CLIFormatter().Success("Deleted " + user.Username)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	stats, err := ctx.Gateway.EmployeeStatistics(commandContext(cmd))
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewStatsResponse(stats))
	}
	ctx.CLIFormatter().PrintStats(stats)
	return nil
}
