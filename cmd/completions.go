package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/parser"
)

// completeEventArgs completes event ids with their date and title.
func completeEventArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, ev := range loadedEvents(commandContext(cmd)) {
		if strings.HasPrefix(ev.ID, toComplete) {
			completions = append(completions, ev.ID+"\t"+parser.FormatDate(ev.ScheduledAt)+" "+ev.Title)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeUnitRefs completes AC unit codes.
func completeUnitRefs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return unitCompletions(commandContext(cmd), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeUnitArgs completes the first argument with AC unit codes.
func completeUnitArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeUnitRefs(cmd, args, toComplete)
}

func unitCompletions(c context.Context, toComplete string) []string {
	if ctx == nil || ctx.Store == nil {
		return nil
	}
	if len(ctx.Store.Units()) == 0 {
		ctx.Store.Refresh(c)
	}

	var completions []string
	for _, u := range ctx.Store.Units() {
		if strings.HasPrefix(u.Code, toComplete) {
			completions = append(completions, u.Code+"\t"+u.DisplayName())
		}
	}
	return completions
}

// completeTasks completes the standard task types.
func completeTasks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, t := range model.TaskTypes {
		if strings.HasPrefix(strings.ToLower(t), strings.ToLower(toComplete)) {
			completions = append(completions, t)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeUserArgs completes employee ids with their names. Only admins can
// list users, so others get nothing.
func completeUserArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || ctx == nil || ctx.Gateway == nil || !ctx.Roles.HasRole(model.RoleAdmin) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	users, err := ctx.Gateway.ListUsers(commandContext(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, u := range users {
		if strings.HasPrefix(u.ID, toComplete) {
			completions = append(completions, u.ID+"\t"+u.FullName())
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
