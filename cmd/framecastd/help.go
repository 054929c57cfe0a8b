package main

import (
	"fmt"

	"github.com/fatih/color"
)

const helpString = `Periodic frame capture and streaming daemon

Usage: framecastd [OPTION]...

Capture:
  -s, --source=SPEC      Frame source: v4l2:<device>, pattern:, ppm:<dir>
                         (default: v4l2:/dev/video0)
  -W, --width=NUM        Frame width (default: 640)
  -H, --height=NUM       Frame height (default: 480)
  -p, --period=DUR       Capture period (default: 100ms)
  -n, --frames=NUM       Frames to capture, 0 runs until interrupted
                         (default: 100)

Output:
  -f, --format=FMT       jpeg or ppm (default: jpeg)
  -d, --dir=DIR          Output directory (default: capture_<format>)
  -m, --max-frames=NUM   Files kept besides the newest (default: 100)
      --gamma            Apply the NetPBM transfer function to PPM output

Network:
  -l, --listen=ADDR      Frame server address (default: :12345)
      --monitor=ADDR     Serve /metrics, /healthz and /preview on ADDR

Miscellaneous:
  -c, --config=FILE      Read settings from FILE (YAML, TOML or JSON)
      --realtime         Run stages under SCHED_FIFO (needs CAP_SYS_NICE)
      --loglevel=SPEC    Log levels, e.g. 'low' or 'server=trace'
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Every setting may also be given as FRAMECAST_<KEY>, e.g.
FRAMECAST_CAPTURE_PERIOD=50ms.

Please report bugs to: aloha@lanikailabs.com`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//   __                                              _
	//  / _| _ __  __ _  _ __ ___    ___  ___  __ _  ___| |_
	// | |_ | '__|/ _` || '_ ` _ \  / _ \/ __|/ _` |/ __| __|
	// |  _|| |  | (_| || | | | | ||  __/ (__| (_| |\__ \ |_
	// |_|  |_|   \__,_||_| |_| |_| \___|\___|\__,_||___/\__|

	// Line 1
	r.Printf("  __ ")
	y.Printf("     ")
	b.Printf("       ")
	r.Printf("          ")
	y.Printf("      ")
	b.Printf("     ")
	r.Printf("     ")
	y.Println("    _   ")

	// Line 2
	r.Printf(" / _|")
	y.Printf(" _ __")
	b.Printf("  __ _ ")
	r.Printf(" _ __ ___  ")
	y.Printf("  ___ ")
	b.Printf(" ___ ")
	r.Printf(" __ _")
	y.Println("  ___| |_ ")

	// Line 3
	r.Printf("| |_ ")
	y.Printf("| '__|")
	b.Printf("/ _` |")
	r.Printf("| '_ ` _ \\ ")
	y.Printf(" / _ \\")
	b.Printf("/ __|")
	r.Printf("/ _` |")
	y.Println("/ __| __|")

	// Line 4
	r.Printf("|  _|")
	y.Printf("| |  ")
	b.Printf("| (_| |")
	r.Printf("| | | | | |")
	y.Printf("|  __/")
	b.Printf(" (__")
	r.Printf("| (_| |")
	y.Println("\\__ \\ |_ ")

	// Line 5
	r.Printf("|_|  ")
	y.Printf("|_|  ")
	b.Printf(" \\__,_|")
	r.Printf("|_| |_| |_|")
	y.Printf(" \\___|")
	b.Printf("\\___|")
	r.Printf("\\__,_|")
	y.Println("|___/\\__|")

	fmt.Println(helpString)
}

// version displays information and exits successfully (GNU convention)
func version() {
	fmt.Println("framecastd", GitRevisionId)
	fmt.Println("Copyright 2019 Lanikai Labs LLC. All rights reserved.")
}
