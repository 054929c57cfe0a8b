// Command framecast is the companion tool for framecastd: it receives frames
// from a running daemon and analyses the timestamps of saved frames.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("framecast")

func newRootCommand() *cobra.Command {
	var loglevel string

	cmd := &cobra.Command{
		Use:           "framecast",
		Short:         "Receive and inspect frames produced by framecastd",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(loglevel)
		},
	}
	cmd.PersistentFlags().StringVar(&loglevel, "loglevel", "", "Log level directives, e.g. 'low' or 'client=trace'")

	cmd.AddCommand(newReceiveCommand())
	cmd.AddCommand(newTimestampsCommand())
	cmd.AddCommand(newHistogramCommand())
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
