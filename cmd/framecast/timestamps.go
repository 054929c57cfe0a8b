package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lanikai/framecast/internal/encode"
)

type stamp struct {
	Path string
	Raw  string
	Time float64
}

// scanTimestamps reads every regular file in dir, in name order, and returns
// the embedded capture timestamps. Files without one are skipped.
func scanTimestamps(dir string) ([]stamp, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var stamps []stamp
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw, ok := encode.TimestampText(data)
		if !ok {
			continue
		}
		ts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ts = math.NaN()
		}
		stamps = append(stamps, stamp{path, raw, ts})
	}
	return stamps, nil
}

func newTimestampsCommand() *cobra.Command {
	var intervals bool

	cmd := &cobra.Command{
		Use:   "timestamps DIR",
		Short: "List the capture timestamp embedded in each saved frame as CSV",
		Long: `Print one "file,timestamp," line per frame in DIR, in file name order.
With --intervals, print "file,seconds since previous frame," instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stamps, err := scanTimestamps(args[0])
			if err != nil {
				return err
			}
			if intervals {
				return writeIntervals(cmd.OutOrStdout(), stamps)
			}
			return writeTimestamps(cmd.OutOrStdout(), stamps)
		},
	}
	cmd.Flags().BoolVarP(&intervals, "intervals", "i", false, "Print the time between consecutive frames")
	return cmd
}

func writeTimestamps(w io.Writer, stamps []stamp) error {
	for _, s := range stamps {
		if _, err := fmt.Fprintf(w, "%s,%s,\n", s.Path, s.Raw); err != nil {
			return err
		}
	}
	return nil
}

func writeIntervals(w io.Writer, stamps []stamp) error {
	for i := 1; i < len(stamps); i++ {
		d := stamps[i].Time - stamps[i-1].Time
		if _, err := fmt.Fprintf(w, "%s,%.6f,\n", stamps[i].Path, d); err != nil {
			return err
		}
	}
	return nil
}

// intervals returns the gaps between consecutive valid timestamps.
func intervals(stamps []stamp) []float64 {
	var out []float64
	for i := 1; i < len(stamps); i++ {
		a, b := stamps[i-1].Time, stamps[i].Time
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		out = append(out, b-a)
	}
	return out
}

type bucket struct {
	Low   float64
	Count int
}

// histogram spreads values over n equal-width classes between their minimum
// and maximum. The maximum lands in the last class.
func histogram(values []float64, n int) ([]bucket, error) {
	if n <= 0 {
		return nil, errors.Errorf("class count must be positive, got %d", n)
	}
	if len(values) == 0 {
		return nil, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	step := (hi - lo) / float64(n)

	buckets := make([]bucket, n)
	for i := range buckets {
		buckets[i].Low = lo + float64(i)*step
	}
	for _, v := range values {
		i := n - 1
		if step > 0 {
			i = int((v - lo) / step)
			if i >= n {
				i = n - 1
			}
		}
		buckets[i].Count++
	}
	return buckets, nil
}

func newHistogramCommand() *cobra.Command {
	var classes int

	cmd := &cobra.Command{
		Use:   "histogram DIR",
		Short: "Summarize capture jitter as a histogram of frame intervals",
		Long: `Compute the interval between consecutive frames in DIR and print
"class lower bound,count," for each of --classes equal-width classes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stamps, err := scanTimestamps(args[0])
			if err != nil {
				return err
			}
			buckets, err := histogram(intervals(stamps), classes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range buckets {
				fmt.Fprintf(out, "%.6f,%d,\n", b.Low, b.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&classes, "classes", 20, "Number of histogram classes")
	return cmd
}
