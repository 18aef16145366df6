package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/export"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/parser"
	"github.com/manav03panchal/aircare/internal/projection"
	"github.com/manav03panchal/aircare/internal/storage"
	"github.com/manav03panchal/aircare/internal/store"
	"github.com/manav03panchal/aircare/internal/validate"
)

// Flags shared by events create and events update.
var (
	eventFlagTitle     string
	eventFlagAC        string
	eventFlagDate      string
	eventFlagStart     string
	eventFlagEnd       string
	eventFlagTasks     []string
	eventFlagEmployees []string
	eventFlagLocation  string
	eventFlagSummary   string
	eventFlagStatus    string
	eventFlagRepeat    string

	eventsListFlagUpcoming bool
	eventsDeleteFlagForce  bool
	completeFlagSummary    string
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"event", "ev"},
	Short:   "List and manage maintenance events",
	Long: `List and manage scheduled maintenance.

Examples:
  aircare events list --upcoming
  aircare events show 65f1c0a2e4b0c1a2b3c4d5e6
  aircare events create --ac AC-101 --date 2026-03-14 --start 09:00 --task "Fan Check"
  aircare events create --ac AC-101 --date 2026-03-02 --start 08:00 --repeat "FREQ=MONTHLY;COUNT=6"
  aircare events complete 65f1c0a2e4b0c1a2b3c4d5e6 --summary "belt replaced"
  aircare events export maintenance.ics`,
}

var eventsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List maintenance events",
	Args:    cobra.NoArgs,
	RunE:    runEventsList,
}

var eventsShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show an event with its unit's recent history",
	Long: `Show an event with its unit's recent completed maintenance.

Without an ID, shows the event of the last acknowledged notification.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeEventArgs,
	RunE:              runEventsShow,
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule maintenance (admin)",
	Long: `Schedule maintenance for an AC unit.

--date accepts 2026-03-14, 2026-03-14T09:00 or a phrase such as "next friday".
--repeat takes an RRULE and creates one event per occurrence.`,
	Args: cobra.NoArgs,
	RunE: runEventsCreate,
}

var eventsUpdateCmd = &cobra.Command{
	Use:               "update ID",
	Aliases:           []string{"edit"},
	Short:             "Change an event (admin)",
	Long:              `Change an event. Only the flags given are changed.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEventArgs,
	RunE:              runEventsUpdate,
}

var eventsCompleteCmd = &cobra.Command{
	Use:               "complete ID",
	Aliases:           []string{"done"},
	Short:             "Mark an event completed",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEventArgs,
	RunE:              runEventsComplete,
}

var eventsDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete an event (admin)",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEventArgs,
	RunE:              runEventsDelete,
}

var eventsExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write upcoming maintenance to an iCalendar file",
	Long: `Write upcoming maintenance to an iCalendar (.ics) file. Use - for stdout.
Without FILE, writes aircare-YYYY-MM-DD.ics in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEventsExport,
}

func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&eventFlagTitle, "title", "", "Event title")
	cmd.Flags().StringVar(&eventFlagAC, "ac", "", "AC unit code or id")
	cmd.Flags().StringVar(&eventFlagDate, "date", "", "Scheduled date")
	cmd.Flags().StringVar(&eventFlagStart, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&eventFlagEnd, "end", "", "End time (HH:MM)")
	cmd.Flags().StringSliceVar(&eventFlagTasks, "task", nil, "Task, repeatable or comma-separated")
	cmd.Flags().StringSliceVar(&eventFlagEmployees, "employee", nil, "Assigned employee id, repeatable or comma-separated")
	cmd.Flags().StringVar(&eventFlagLocation, "location", "", "Location (defaults to the unit's)")
	cmd.Flags().StringVar(&eventFlagSummary, "summary", "", "Summary")
	cmd.RegisterFlagCompletionFunc("ac", completeUnitRefs)
	cmd.RegisterFlagCompletionFunc("task", completeTasks)
}

func init() {
	eventsListCmd.Flags().BoolVarP(&eventsListFlagUpcoming, "upcoming", "u", false, "Only today and later")

	addEventFlags(eventsCreateCmd)
	eventsCreateCmd.Flags().StringVar(&eventFlagRepeat, "repeat", "", "RRULE for a recurring series")
	eventsCreateCmd.MarkFlagRequired("ac")
	eventsCreateCmd.MarkFlagRequired("date")
	eventsCreateCmd.MarkFlagRequired("start")

	addEventFlags(eventsUpdateCmd)
	eventsUpdateCmd.Flags().StringVar(&eventFlagStatus, "status", "", "pending or completed")

	eventsCompleteCmd.Flags().StringVarP(&completeFlagSummary, "summary", "s", "", "What was done")

	eventsDeleteCmd.Flags().BoolVarP(&eventsDeleteFlagForce, "force", "y", false, "Skip confirmation")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	eventsCmd.AddCommand(eventsCreateCmd)
	eventsCmd.AddCommand(eventsUpdateCmd)
	eventsCmd.AddCommand(eventsCompleteCmd)
	eventsCmd.AddCommand(eventsDeleteCmd)
	eventsCmd.AddCommand(eventsExportCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsList(cmd *cobra.Command, args []string) error {
	if eventsListFlagUpcoming {
		return runUpcoming(cmd, args)
	}

	if err := refreshStore(commandContext(cmd)); err != nil {
		return err
	}

	events := ctx.Store.Events()
	units := ctx.Store.Units()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewEventsResponse(events, units))
	}
	ctx.CLIFormatter().PrintEvents(events, units)
	return nil
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)

	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		pending, ok, err := ctx.HandoffRepo.Take()
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrNoEventSelected
		}
		id = pending
	}
	if err := validate.NonEmpty("id", id); err != nil {
		return err
	}

	if err := refreshStore(c); err != nil {
		return err
	}
	detail, err := ctx.Store.GetDetailWithHistory(c, id)
	if err != nil {
		return err
	}

	units := ctx.Store.Units()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewEventDetailResponse(detail, units))
	}
	ctx.CLIFormatter().PrintEventDetail(detail, units)
	return nil
}

// scheduleDate parses --date and applies --start when the date has no time.
func scheduleDate(input, start string) (at time.Time, err error) {
	if start != "" {
		if err := store.ValidateClock("timeStart", start); err != nil {
			return at, err
		}
	}
	at, err = parser.ParseScheduleDate(input, ctx.Now())
	if err != nil {
		return at, err
	}
	return parser.CombineDateAndStart(at, start)
}

func runEventsCreate(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := requireAdmin(); err != nil {
		return err
	}
	if err := validate.Summary(eventFlagSummary); err != nil {
		return err
	}

	at, err := scheduleDate(eventFlagDate, eventFlagStart)
	if err != nil {
		return err
	}

	if err := refreshStore(c); err != nil {
		return err
	}

	draft := store.Draft{
		Title:             validate.SanitizeText(eventFlagTitle),
		ACRef:             eventFlagAC,
		Date:              at,
		Window:            model.TimeWindow{Start: eventFlagStart, End: eventFlagEnd},
		Tasks:             cleanList(eventFlagTasks),
		AssignedEmployees: cleanList(eventFlagEmployees),
		Location:          validate.SanitizeText(eventFlagLocation),
		Summary:           validate.SanitizeText(eventFlagSummary),
	}
	warnUnknownTasks(draft.Tasks)

	if eventFlagRepeat != "" {
		created, err := ctx.Store.CreateSeries(c, draft, eventFlagRepeat)
		if len(created) > 0 {
			printCreated(created)
		}
		return err
	}

	ev, err := ctx.Store.Create(c, draft)
	if err != nil {
		return err
	}
	printCreated([]model.MaintenanceEvent{*ev})
	return nil
}

func printCreated(events []model.MaintenanceEvent) {
	units := ctx.Store.Units()
	if ctx.IsJSON() {
		ctx.Formatter.JSON(output.NewEventsResponse(events, units))
		return
	}
	cli := ctx.CLIFormatter()
	for _, ev := range events {
		cli.Success(fmt.Sprintf("Scheduled %s for %s on %s", ev.ID,
			cli.UnitName(projection.DisplayUnit(ev.ACRef, units)), parser.FormatDate(ev.ScheduledAt)))
	}
}

func runEventsUpdate(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := requireAdmin(); err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch store.Patch
	if flags.Changed("title") {
		title := validate.SanitizeText(eventFlagTitle)
		patch.Title = &title
	}
	if flags.Changed("ac") {
		patch.ACRef = &eventFlagAC
	}
	if flags.Changed("date") {
		at, err := scheduleDate(eventFlagDate, eventFlagStart)
		if err != nil {
			return err
		}
		patch.Date = &at
	}
	if flags.Changed("start") {
		patch.Start = &eventFlagStart
	}
	if flags.Changed("end") {
		patch.End = &eventFlagEnd
	}
	if flags.Changed("task") {
		tasks := cleanList(eventFlagTasks)
		warnUnknownTasks(tasks)
		patch.Tasks = &tasks
	}
	if flags.Changed("employee") {
		employees := cleanList(eventFlagEmployees)
		patch.AssignedEmployees = &employees
	}
	if flags.Changed("location") {
		location := validate.SanitizeText(eventFlagLocation)
		patch.Location = &location
	}
	if flags.Changed("summary") {
		if err := validate.Summary(eventFlagSummary); err != nil {
			return err
		}
		summary := validate.SanitizeText(eventFlagSummary)
		patch.Summary = &summary
	}
	if flags.Changed("status") {
		done, err := parseStatus(eventFlagStatus)
		if err != nil {
			return err
		}
		patch.Status = &done
	}
	if patch.IsEmpty() {
		return errors.NewUserError("nothing to update", "Pass at least one flag, e.g. --summary or --status completed.")
	}

	if patch.ACRef != nil {
		if err := refreshStore(c); err != nil {
			return err
		}
	}

	ev, err := ctx.Store.Update(c, args[0], patch)
	if err != nil {
		return err
	}
	return printMutation("updated", ev)
}

func parseStatus(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "done", "true":
		return true, nil
	case "pending", "open", "false":
		return false, nil
	}
	return false, errors.NewUserErrorWithField("status", s, "unknown status", "Use 'pending' or 'completed'.")
}

func runEventsComplete(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := ctx.Session.RequireLogin(); err != nil {
		return err
	}
	if err := validate.Summary(completeFlagSummary); err != nil {
		return err
	}

	ev, err := ctx.Store.Complete(c, args[0], validate.SanitizeText(completeFlagSummary))
	if err != nil {
		return err
	}
	return printMutation("completed", ev)
}

func printMutation(status string, ev *model.MaintenanceEvent) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: status, ID: ev.ID})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Event %s %s (%s)", ev.ID, status, ev.StatusLabel()))
	return nil
}

func runEventsDelete(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := requireAdmin(); err != nil {
		return err
	}

	id := args[0]
	detail, err := ctx.Store.Detail(c, id)
	if err != nil {
		return err
	}

	if !eventsDeleteFlagForce && !ctx.IsJSON() {
		unit := detail.Event.ACRef
		if detail.AC != nil {
			unit = detail.AC.DisplayName()
		}
		if !confirm(fmt.Sprintf("Delete %s for %s on %s? [y/N] ",
			detail.Event.Title, unit, parser.FormatDate(detail.Event.ScheduledAt))) {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Remove(c, id); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: "deleted", ID: id})
	}
	ctx.CLIFormatter().Success("Deleted event " + id)
	return nil
}

func runEventsExport(cmd *cobra.Command, args []string) error {
	if err := refreshStore(commandContext(cmd)); err != nil {
		return err
	}

	now := ctx.Now()
	entries := ctx.Store.ListUpcoming()
	units := ctx.Store.Units()

	path := validate.SafeFilename("aircare-"+output.FormatDay(now)) + ".ics"
	if len(args) > 0 {
		path = args[0]
	}

	if path == "-" {
		return export.WriteICS(ctx.Formatter.Writer, entries, units, now)
	}

	dir, name := filepath.Split(path)
	path = filepath.Join(dir, validate.SafeFilename(name))
	err := storage.WriteAtomic(path, 0644, func(w io.Writer) error {
		return export.WriteICS(w, entries, units, now)
	})
	var renderErr *storage.RenderError
	switch {
	case errors.As(err, &renderErr):
		return errors.NewSystemErrorWithOp("export", "could not render calendar", renderErr.Err)
	case err != nil:
		return errors.NewSystemErrorWithOp("export", "could not write "+path, err)
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"file": path, "count": len(entries)})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Exported %d events to %s", len(entries), path))
	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	ctx.Formatter.Print(prompt)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func cleanList(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = validate.SanitizeName(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func warnUnknownTasks(tasks []string) {
	if ctx.IsJSON() {
		return
	}
	for _, t := range tasks {
		if !model.IsKnownTask(t) {
			ctx.CLIFormatter().Warning(fmt.Sprintf("%q is not a standard task type", t))
		}
	}
}

// loadedEvents refreshes quietly for completions.
func loadedEvents(c context.Context) []model.MaintenanceEvent {
	if ctx == nil || ctx.Store == nil {
		return nil
	}
	if len(ctx.Store.Events()) == 0 {
		ctx.Store.Refresh(c)
	}
	return ctx.Store.Events()
}
