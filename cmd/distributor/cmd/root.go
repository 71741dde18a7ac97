package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"statement-distributor/cmd/distributor/config"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// v carries configuration for the current invocation; flags bind into it.
	v = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "distributor",
	Short: "Account group statement distributor",
	Long: `Distributor extracts card transactions or bills for a date range, splits them
into per account group statements by GL account range and emails each group
its CSV statement. Runs are dry runs unless --send-emails is given.

Examples:
  distributor distribute --config config.json
  distributor distribute --from-month 2024-01 --to-month 2024-03 --account-groups "Infrastructure,Brand"
  distributor distribute --source bill --from-date 2024-01-01 --to-date 2024-01-31 --send-emails
  distributor groups --config config.json
  distributor db init --source ramp --database ./ramp.db`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	return NewCLIErrorHandler(rootCmd.ErrOrStderr(), verbose).HandleError(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "path to configuration JSON file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration file named by --config
func loadConfig() (*config.Config, error) {
	return config.Load(v, cfgFile)
}

// bindFlag binds a command flag to a configuration key
func bindFlag(vp *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := vp.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(ver, c, d string) {
	version = ver
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
