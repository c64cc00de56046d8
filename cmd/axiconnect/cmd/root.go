// Package cmd provides the command-line interface of axiconnect.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "axiconnect",
	Short: "axiconnect simulates a bus interconnect cycle by cycle.",
	Long: `axiconnect simulates a bus interconnect cycle by cycle. It ` +
		`builds initiators, crossbars, credit throttles and memory targets ` +
		`from a dotenv configuration and reports per-port statistics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
}
