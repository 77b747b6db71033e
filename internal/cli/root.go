// Package cli contains all the command-line interface logic for the
// application, powered by the cobra library. It defines the root command,
// subcommands, and their respective flags.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootVerbose holds the value of the root command's persistent verbosity
// flag. Package level so every subcommand sees it.
var rootVerbose bool

// logger is the process-wide logger, configured once before any command
// runs.
var logger = logrus.New()

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point and parent for all other commands.
var rootCmd = &cobra.Command{
	Use:   "ctcspike",
	Short: "Analyze the emission latency of a streaming CTC speech model.",
	Long: `Analyze the emission latency of a streaming CTC speech model.
Token timestamps from a greedy-decoded hypothesis dump are compared against
a forced alignment, and representative utterances are reported at fixed
percentile ranks of each delay metric.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if rootVerbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute is the primary entry point for the CLI application, called by
// main.go.
//
// It sets up a single, root cancellable context and wires it up to respond
// to OS interruption signals (like Ctrl+C or SIGTERM). This context is then
// passed down to all cobra commands, so a long analysis run can be aborted
// between utterances.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Listen for interruption signals.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	// Cancel the context upon receiving a signal.
	go func() {
		<-signals
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false,
		"Enable debug logging, including per-skip diagnostics.")
}
