package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanikai/framecast/internal/transport"
)

type receiveOptions struct {
	Dir           string
	MaxPayload    int
	RetryInterval time.Duration
	Count         int
}

func newReceiveCommand() *cobra.Command {
	opts := &receiveOptions{}

	cmd := &cobra.Command{
		Use:   "receive ADDR",
		Short: "Connect to a framecastd server and store every frame it sends",
		Long: `Connect to the frame server at ADDR (host:port) and write each received
frame into the output directory under its own file name. The connection is
retried until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", ".", "Output directory")
	cmd.Flags().IntVar(&opts.MaxPayload, "max-payload", transport.DefaultMaxPayload, "Largest frame accepted, in bytes")
	cmd.Flags().DurationVar(&opts.RetryInterval, "retry", transport.DefaultRetryInterval, "Delay between connection attempts")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "Exit after this many frames, 0 for no limit")
	return cmd
}

func runReceive(parent context.Context, addr string, opts *receiveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	received := 0
	client, err := transport.NewClient(transport.ClientConfig{
		Addr:          addr,
		Dir:           opts.Dir,
		MaxPayload:    opts.MaxPayload,
		RetryInterval: opts.RetryInterval,
		OnFile: func(path string, size int) {
			received++
			log.Medium("%s (%d bytes)", path, size)
			if opts.Count > 0 && received >= opts.Count {
				cancel()
			}
		},
	})
	if err != nil {
		return err
	}
	err = client.Run(ctx)
	log.High("Received %d frames", received)
	return err
}
