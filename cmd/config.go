package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/aircare/internal/config"
	"github.com/manav03panchal/aircare/internal/errors"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Show the effective configuration",
	Long: `Show the effective configuration: defaults, overlaid by the YAML file,
overlaid by AIRCARE_* environment variables.

Environment:
  AIRCARE_CONFIG            config file location
  AIRCARE_BASE_URL          maintenance service root
  AIRCARE_HTTP_TIMEOUT      per-request timeout (e.g. 10s)
  AIRCARE_HTTP_MAX_RETRIES  attempts for idempotent requests
  AIRCARE_CHECK_INTERVAL    notification check interval
  AIRCARE_REFRESH_INTERVAL  background reload interval for watch
  AIRCARE_HISTORY_LIMIT     completed visits shown with an event
  AIRCARE_DATABASE          local database directory, or :memory:

Examples:
  aircare config
  aircare config path`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file and database locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(config.Global)
	}

	data, err := config.Global.Marshal()
	if err != nil {
		return errors.NewSystemErrorWithOp("config", "could not render configuration", err)
	}
	ctx.Formatter.Print(string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	paths := map[string]string{
		"config":   config.FilePath(),
		"database": ctx.DB.Path(),
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(paths)
	}
	ctx.CLIFormatter().PrintKeyValues([][2]string{
		{"Config", paths["config"]},
		{"Database", paths["database"]},
	})
	return nil
}
