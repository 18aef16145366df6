package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/aircare/internal/config"
	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/runtime"
	"github.com/manav03panchal/aircare/internal/scheduler"
	"github.com/manav03panchal/aircare/internal/tui"
)

var watchFlagHeadless bool

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w", "tui"},
	Short:   "Watch the calendar and raise notifications when maintenance is due",
	Long: `Watch upcoming maintenance. When an event's scheduled minute arrives, an
"Upcoming Maintenance" notification is raised once, in the view and on every
enabled webhook.

In a terminal this opens the interactive view:
  up/down, j/k  move
  enter         open the event, or the notification shown
  x             dismiss the notification
  esc           back to the list
  r             reload
  q             quit

With --headless, or when stdout is not a terminal, notifications are printed
instead. Pressing enter acknowledges the last one and prints its detail.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchFlagHeadless, "headless", false, "Print notifications instead of opening the interactive view")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)

	if err := refreshStore(c); err != nil {
		// The periodic refresh keeps trying.
		logging.WarnContext(c, "initial load failed", logging.KeyError, err)
	}

	tty := !watchFlagHeadless && !ctx.IsJSON() && output.IsTerminal(ctx.Formatter.Writer)
	if tty {
		if !flagDebug {
			logging.Init(logging.QuietConfig(io.Discard))
		}
		return tui.Run(c, tui.WatchConfig{
			Store:           ctx.Store,
			NewNotifier:     ctx.NewNotifier,
			CheckInterval:   config.Global.Scheduler.CheckInterval,
			RefreshInterval: config.Global.Scheduler.RefreshInterval,
			Now:             ctx.Now,
		})
	}
	return watchHeadless(c, cmd.InOrStdin())
}

// lastRaised remembers the most recent notification's event.
type lastRaised struct {
	mu      sync.Mutex
	eventID string
}

func (l *lastRaised) Notify(_ context.Context, n *model.Notification) error {
	l.mu.Lock()
	l.eventID = n.EventID
	l.mu.Unlock()
	return nil
}

func (l *lastRaised) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.eventID
}

func watchHeadless(c context.Context, in io.Reader) error {
	var sink notify.Notifier = notify.NewTerminal(ctx.Formatter.Writer, ctx.Formatter.IsColorEnabled())
	if ctx.IsJSON() {
		enc := json.NewEncoder(ctx.Formatter.Writer)
		var mu sync.Mutex
		sink = notify.NotifierFunc(func(_ context.Context, n *model.Notification) error {
			mu.Lock()
			defer mu.Unlock()
			return enc.Encode(n)
		})
	}

	last := &lastRaised{}
	notifier := ctx.NewNotifier(notify.Multi{sink, last})

	sched, err := scheduler.StartWatch(c, scheduler.WatchOptions{
		Notifier: notifier,
		Refresh:  ctx.Store.Refresh,
	})
	if err != nil {
		return err
	}

	if !ctx.IsJSON() {
		rt := ctx
		notifier.OnAcknowledge(func(id string) {
			showAcknowledged(c, rt, id)
		})
		rt.CLIFormatter().Muted("Watching for due maintenance. Ctrl+C to stop.")
		if readsLines(in) {
			go acknowledgeOnEnter(c, in, notifier, last)
		}
	}

	<-c.Done()
	sched.Stop()
	notifier.Wait()

	snap := ctx.Metrics.Snapshot()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(snap)
	}
	ctx.CLIFormatter().Muted(fmt.Sprintf("Stopped after %d checks: %d raised, %d sink failures, %d fetch failures.",
		snap.ChecksTotal, snap.RaisedTotal, snap.SinkFailuresTotal, snap.FetchFailuresTotal))
	return nil
}

// readsLines reports whether in can deliver enter presses. Files are read
// only when they are a terminal.
func readsLines(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

// acknowledgeOnEnter acknowledges the last notification each time a line is
// read from in.
func acknowledgeOnEnter(c context.Context, in io.Reader, notifier *scheduler.EventNotifier, last *lastRaised) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if c.Err() != nil {
			return
		}
		id := last.get()
		if id == "" {
			continue
		}
		if err := notifier.Acknowledge(id); err != nil {
			logging.Warn("could not acknowledge notification", logging.KeyEventID, id, logging.KeyError, err)
		}
	}
}

// showAcknowledged prints the acknowledged event with its recent history.
// The database stays locked while watch runs, so the detail is rendered
// here rather than left to another command.
func showAcknowledged(c context.Context, rt *runtime.Context, id string) {
	if c.Err() != nil {
		return
	}
	detail, err := rt.Store.GetDetailWithHistory(c, id)
	if err != nil {
		logging.WarnContext(c, "could not load acknowledged event", logging.KeyEventID, id, logging.KeyError, err)
		return
	}
	cli := rt.CLIFormatter()
	cli.Println()
	cli.PrintEventDetail(detail, rt.Store.Units())
}
