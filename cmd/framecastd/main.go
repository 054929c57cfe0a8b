package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/lanikai/framecast"
	"github.com/lanikai/framecast/internal/config"
	"github.com/lanikai/framecast/internal/logging"
)

// Populated via -ldflags="-X ...". See Makefile.
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("framecastd")

var (
	flagConfig  string
	flagHelp    bool
	flagVersion bool
	flagNoColor bool
)

func main() {
	v := config.New()
	if err := config.BindFlags(v, flag.CommandLine); err != nil {
		log.Fatal("%v", err)
	}
	flag.StringVarP(&flagConfig, "config", "c", "", "Configuration file")
	flag.BoolVar(&flagNoColor, "no-color", false, "Disable colored log output")
	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
	flag.Parse()

	// Check for help flag
	if flagHelp {
		help()
		os.Exit(0)
	}

	// Check for version flag
	if flagVersion {
		version()
		os.Exit(0)
	}

	if flagNoColor {
		logging.SetColor(false)
	}

	cfg, err := config.Load(v, flagConfig)
	if err != nil {
		log.Fatal("%v", err)
	}

	p, err := framecast.New(cfg, nil)
	if err != nil {
		log.Fatal("Setup failed: %v", err)
	}

	// SIGINT and SIGTERM end the run like a completed frame budget.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Start(ctx); err != nil {
		log.Fatal("Start failed: %v", err)
	}
	if err := p.Wait(); err != nil {
		log.Fatal("%v", err)
	}
}
