// Package cmd provides the CLI commands for aircare.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/logging"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aircare",
	Short: "Schedule and track air-conditioning maintenance",
	Long: `aircare keeps the maintenance calendar for a building's AC units. It lists
upcoming visits, raises a notification when a visit is due, and lets admins
schedule, edit and close maintenance events.

Examples:
  aircare login ana
  aircare events list
  aircare events create --ac AC-101 --date "next friday" --start 09:00 --task "Fan Check"
  aircare watch
  aircare ac history AC-101`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion, help and version (but allow __complete for dynamic completions)
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		if flagDebug {
			logging.Init(logging.DebugConfig())
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}

		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		ctx.Formatter.Writer = cmd.OutOrStdout()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			err := ctx.Close()
			ctx = nil
			return err
		}
		return nil
	},
	RunE: runUpcoming,
}

// runUpcoming shows today's and later maintenance.
func runUpcoming(cmd *cobra.Command, args []string) error {
	c := commandContext(cmd)
	if err := refreshStore(c); err != nil {
		return err
	}

	entries := ctx.Store.ListUpcoming()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUpcomingResponse(entries))
	}
	ctx.CLIFormatter().PrintUpcoming(entries, ctx.Now())
	return nil
}

// refreshStore loads events and units. A partial load is reported but not
// fatal; a load that produced nothing is.
func refreshStore(c context.Context) error {
	if err := ctx.Store.Refresh(c); err != nil {
		if len(ctx.Store.Events()) == 0 && len(ctx.Store.Units()) == 0 {
			return err
		}
		ctx.Debugf("partial refresh: %v", err)
	}
	return nil
}

// commandContext returns the command's context tagged with a request id.
func commandContext(cmd *cobra.Command) context.Context {
	c := cmd.Context()
	if c == nil {
		c = context.Background()
	}
	return logging.EnsureRequestID(c)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// It returns the process exit code.
func Execute() int {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(c)
	if err == nil {
		return runtime.ExitOK
	}
	printError(err)
	if ctx != nil {
		ctx.Close()
	}
	return runtime.ExitCode(err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("aircare %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

func printError(err error) {
	if ctx != nil && ctx.IsJSON() {
		ctx.Formatter.JSON(runtime.NewErrorResponse(err))
		return
	}
	os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
}
