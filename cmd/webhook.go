package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/validate"
)

// Webhook command flags.
var (
	webhookAddFlagType     string
	webhookRemoveFlagForce bool
	webhookTestFlagAll     bool
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"wh", "hook"},
	Short:   "Configure notification webhooks",
	Long: `Configure webhooks for Discord, Slack, Teams, or custom endpoints.

Every enabled webhook receives the "Upcoming Maintenance" notification that
'aircare watch' raises when a visit is due.

Examples:
  aircare webhook add ops https://discord.com/api/webhooks/...
  aircare webhook add facilities https://hooks.slack.com/services/...
  aircare webhook list
  aircare webhook test ops
  aircare webhook disable facilities
  aircare webhook remove ops`,
	RunE: runWebhookList,
}

// webhookAddCmd adds a new webhook.
var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a new webhook",
	Long: `Add a webhook for maintenance notifications.

The webhook type is auto-detected from the URL:
  - Discord: discord.com/api/webhooks/...
  - Slack:   hooks.slack.com/services/...
  - Teams:   outlook.office.com/webhook/...
  - Generic: Any other URL`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

// webhookListCmd lists all webhooks.
var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all webhooks",
	RunE:  runWebhookList,
}

// webhookTestCmd tests a webhook.
var webhookTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Send a test notification",
	RunE:  runWebhookTest,
}

// webhookRemoveCmd removes a webhook.
var webhookRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE:    runWebhookRemove,
}

// webhookEnableCmd enables a webhook.
var webhookEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWebhookEnabled(args[0], true)
	},
}

// webhookDisableCmd disables a webhook.
var webhookDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWebhookEnabled(args[0], false)
	},
}

func init() {
	webhookAddCmd.Flags().StringVarP(&webhookAddFlagType, "type", "t", "",
		"Webhook type: discord, slack, teams, generic (auto-detected from URL if not specified)")
	webhookRemoveCmd.Flags().BoolVarP(&webhookRemoveFlagForce, "force", "y", false,
		"Skip confirmation")
	webhookTestCmd.Flags().BoolVarP(&webhookTestFlagAll, "all", "a", false,
		"Test all enabled webhooks")

	webhookTestCmd.ValidArgsFunction = completeWebhookArgs
	webhookRemoveCmd.ValidArgsFunction = completeWebhookArgs
	webhookEnableCmd.ValidArgsFunction = completeWebhookArgs
	webhookDisableCmd.ValidArgsFunction = completeWebhookArgs

	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)

	rootCmd.AddCommand(webhookCmd)
}

// completeWebhookArgs provides completion for webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 || ctx == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, wh := range webhooks {
		if strings.HasPrefix(wh.Name, toComplete) {
			names = append(names, wh.Name+"\t"+wh.Type)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	name, webhookURL := args[0], strings.TrimSpace(args[1])

	if !model.IsValidWebhookName(name) {
		return errors.NewUserErrorWithField("name", name,
			"invalid webhook name", "Use letters, digits, dash or underscore, at most 50 characters.")
	}
	if err := validate.URL(webhookURL); err != nil {
		return err
	}

	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewUserErrorWithField("name", name,
			fmt.Sprintf("webhook %q already exists", name), "Remove it first, or pick another name.")
	}

	webhookType := webhookAddFlagType
	if webhookType == "" {
		webhookType = model.DetectWebhookType(webhookURL)
	}
	if !model.IsValidWebhookType(webhookType) {
		return errors.NewUserErrorWithField("type", webhookType,
			"invalid webhook type", "Use discord, slack, teams or generic.")
	}

	webhook := model.NewWebhook(name, webhookType, webhookURL)
	if err := ctx.WebhookRepo.Create(webhook); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewWebhookOutput(webhook))
	}

	cli := ctx.CLIFormatter()
	cli.Success("Added webhook: " + name)
	cli.PrintKeyValues([][2]string{
		{"Type", webhook.Type},
		{"URL", webhook.MaskedURL()},
		{"Status", "enabled"},
	})
	ctx.Formatter.Println()
	cli.Muted("Test with: aircare webhook test " + name)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		out := make([]*output.WebhookOutput, len(webhooks))
		for i, wh := range webhooks {
			out[i] = output.NewWebhookOutput(wh)
		}
		return ctx.Formatter.JSON(map[string]any{
			"webhooks": out,
			"count":    len(webhooks),
		})
	}

	cli := ctx.CLIFormatter()
	if len(webhooks) == 0 {
		cli.Muted("No webhooks configured.")
		cli.Muted("Add one with: aircare webhook add NAME URL")
		return nil
	}

	now := ctx.Now()
	rows := make([]output.TableRow, 0, len(webhooks))
	for _, wh := range webhooks {
		status := "enabled"
		if !wh.Enabled {
			status = "disabled"
		}
		lastUsed := "never"
		if !wh.LastUsed.IsZero() {
			lastUsed = output.FormatRelative(wh.LastUsed, now)
		}
		if wh.Failing() {
			lastUsed += " (failed)"
		}
		lastEvent := wh.LastEventID
		if lastEvent == "" {
			lastEvent = "-"
		}
		sent := fmt.Sprintf("%d/%d", wh.Delivered, wh.Delivered+wh.Failed)
		rows = append(rows, output.TableRow{Columns: []string{wh.Name, wh.Type, status, lastUsed, lastEvent, sent}})
	}
	cli.PrintTable([]string{"NAME", "TYPE", "STATUS", "LAST USED", "LAST EVENT", "SENT"}, rows)
	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	c, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
	defer cancel()

	var names []string
	switch {
	case webhookTestFlagAll:
		webhooks, err := ctx.WebhookRepo.ListEnabled()
		if err != nil {
			return err
		}
		if len(webhooks) == 0 {
			return errors.NewUserError("no enabled webhooks to test", "Add one with: aircare webhook add NAME URL")
		}
		for _, wh := range webhooks {
			names = append(names, wh.Name)
		}
	case len(args) > 0:
		names = []string{args[0]}
	default:
		return errors.NewUserError("webhook name required", "Pass a name, or use --all.")
	}

	results := make([]notify.DispatchResult, 0, len(names))
	for _, name := range names {
		results = append(results, ctx.Dispatcher.TestWebhook(c, name))
	}

	if ctx.IsJSON() {
		out := make([]map[string]any, len(results))
		for i, r := range results {
			out[i] = map[string]any{
				"webhook":     r.WebhookName,
				"success":     r.Success,
				"status_code": r.StatusCode,
				"duration_ms": r.Duration.Milliseconds(),
				"error":       errorString(r.Error),
			}
		}
		return ctx.Formatter.JSON(map[string]any{"results": out})
	}

	cli := ctx.CLIFormatter()
	for _, r := range results {
		if r.Success {
			cli.Success(fmt.Sprintf("%s: delivered in %dms", r.WebhookName, r.Duration.Milliseconds()))
		} else {
			cli.Error(fmt.Sprintf("%s: %s", r.WebhookName, errorString(r.Error)))
		}
	}
	return nil
}

func runWebhookRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", errors.ErrWebhookNotFound, name)
	}

	if !webhookRemoveFlagForce && !ctx.IsJSON() {
		if !confirm(fmt.Sprintf("Remove webhook %q? [y/N] ", name)) {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.WebhookRepo.Delete(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: "removed", ID: name})
	}
	ctx.CLIFormatter().Success("Removed webhook: " + name)
	return nil
}

func setWebhookEnabled(name string, enabled bool) error {
	if err := ctx.WebhookRepo.SetEnabled(name, enabled); err != nil {
		return err
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: status, ID: name})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Webhook %s %s", name, status))
	return nil
}

// errorString returns the error message or empty string if nil.
func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
