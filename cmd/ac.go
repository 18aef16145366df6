package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/validate"
)

var (
	acListFlagSearch string

	acFlagName     string
	acFlagLocation string
	acFlagWatts    int

	acDeleteFlagForce bool
)

// acCmd represents the ac command.
var acCmd = &cobra.Command{
	Use:     "ac",
	Aliases: []string{"units", "unit"},
	Short:   "Browse and manage the AC unit inventory",
	Long: `Browse and manage the AC unit inventory. Adding, editing and deleting
units needs an admin account.

Examples:
  aircare ac list --search lobby
  aircare ac add AC-101 --name Lobby --location "Ground floor" --watts 2500
  aircare ac edit AC-101 --location "Floor 1"
  aircare ac history AC-101`,
}

var acListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List AC units",
	Args:    cobra.NoArgs,
	RunE:    runACList,
}

var acAddCmd = &cobra.Command{
	Use:   "add CODE",
	Short: "Add an AC unit (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runACAdd,
}

var acEditCmd = &cobra.Command{
	Use:               "edit CODE",
	Short:             "Change an AC unit (admin)",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUnitArgs,
	RunE:              runACEdit,
}

var acDeleteCmd = &cobra.Command{
	Use:               "delete CODE",
	Aliases:           []string{"rm"},
	Short:             "Delete an AC unit (admin)",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUnitArgs,
	RunE:              runACDelete,
}

var acHistoryCmd = &cobra.Command{
	Use:               "history CODE",
	Short:             "Show every maintenance event for a unit, newest first",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUnitArgs,
	RunE:              runACHistory,
}

func init() {
	acListCmd.Flags().StringVarP(&acListFlagSearch, "search", "s", "", "Filter by name (case-insensitive)")

	for _, c := range []*cobra.Command{acAddCmd, acEditCmd} {
		c.Flags().StringVar(&acFlagName, "name", "", "Unit name")
		c.Flags().StringVar(&acFlagLocation, "location", "", "Where the unit is installed")
		c.Flags().IntVar(&acFlagWatts, "watts", 0, "Rated power in watts")
	}
	acAddCmd.MarkFlagRequired("name")

	acDeleteCmd.Flags().BoolVarP(&acDeleteFlagForce, "force", "y", false, "Skip confirmation")

	acCmd.AddCommand(acListCmd)
	acCmd.AddCommand(acAddCmd)
	acCmd.AddCommand(acEditCmd)
	acCmd.AddCommand(acDeleteCmd)
	acCmd.AddCommand(acHistoryCmd)
	rootCmd.AddCommand(acCmd)
}

func runACList(cmd *cobra.Command, args []string) error {
	if err := refreshStore(commandContext(cmd)); err != nil {
		return err
	}

	units := ctx.Store.Units()
	if term := strings.TrimSpace(acListFlagSearch); term != "" {
		filtered := []model.ACUnit{}
		for _, u := range units {
			if u.NameContains(term) {
				filtered = append(filtered, u)
			}
		}
		units = filtered
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"units": output.NewUnitOutputs(units),
			"count": len(units),
		})
	}
	ctx.CLIFormatter().PrintUnits(units)
	return nil
}

func validateWatts(watts int) error {
	if watts < 0 {
		return errors.NewUserErrorWithField("watts", fmt.Sprint(watts), "watts cannot be negative", "")
	}
	return nil
}

func runACAdd(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	unit := model.ACUnit{
		Code:     strings.TrimSpace(args[0]),
		Name:     validate.SanitizeName(acFlagName),
		Location: validate.SanitizeText(acFlagLocation),
		Watts:    acFlagWatts,
	}
	if err := validate.ACCode(unit.Code); err != nil {
		return err
	}
	if err := validate.Name("name", unit.Name); err != nil {
		return err
	}
	if err := validateWatts(unit.Watts); err != nil {
		return err
	}

	created, err := ctx.Store.AddUnit(commandContext(cmd), unit)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUnitOutput(*created))
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Added %s (%s)", created.DisplayName(), created.Code))
	return nil
}

// lookupUnit loads the inventory and resolves a code or storage id.
func lookupUnit(cmd *cobra.Command, ref string) (model.ACUnit, error) {
	if err := refreshStore(commandContext(cmd)); err != nil {
		return model.ACUnit{}, err
	}
	unit, ok := ctx.Store.Unit(ref)
	if !ok {
		return model.ACUnit{}, errors.NewNotFoundError("AC unit", ref)
	}
	return unit, nil
}

func runACEdit(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	unit, err := lookupUnit(cmd, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("location") && !flags.Changed("watts") {
		return errors.NewUserError("nothing to change", "Pass --name, --location or --watts.")
	}
	if flags.Changed("name") {
		unit.Name = validate.SanitizeName(acFlagName)
		if err := validate.Name("name", unit.Name); err != nil {
			return err
		}
	}
	if flags.Changed("location") {
		unit.Location = validate.SanitizeText(acFlagLocation)
	}
	if flags.Changed("watts") {
		if err := validateWatts(acFlagWatts); err != nil {
			return err
		}
		unit.Watts = acFlagWatts
	}

	updated, err := ctx.Store.EditUnit(commandContext(cmd), unit)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUnitOutput(*updated))
	}
	ctx.CLIFormatter().Success("Updated " + updated.DisplayName())
	return nil
}

func runACDelete(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	unit, err := lookupUnit(cmd, args[0])
	if err != nil {
		return err
	}

	if !acDeleteFlagForce && !ctx.IsJSON() {
		if !confirm(fmt.Sprintf("Delete AC unit %s (%s)? Its events keep the raw reference. [y/N] ", unit.DisplayName(), unit.Code)) {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Store.DeleteUnit(commandContext(cmd), unit.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: "deleted", ID: unit.ID})
	}
	ctx.CLIFormatter().Success("Deleted " + unit.DisplayName())
	return nil
}

func runACHistory(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := refreshStore(c); err != nil {
		return err
	}

	unit, events, err := ctx.Store.UnitHistory(c, args[0])
	if err != nil {
		return err
	}

	units := ctx.Store.Units()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.UnitHistoryResponse{
			Unit:   output.NewUnitOutput(unit),
			Events: output.NewEventOutputs(events, units),
		})
	}

	cli := ctx.CLIFormatter()
	cli.Title(fmt.Sprintf("%s (%s)", unit.DisplayName(), unit.Code))
	cli.PrintEvents(events, units)
	return nil
}
