package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	replayConfig string
	replayCheck  bool
	replayFile   string
	replayLimit  int
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().StringVar(&replayConfig, "config", "default", "Size-class configuration (default, compact, wide)")
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every op")
	cmd.Flags().StringVar(&replayFile, "file", "", "Back the heap with a mapped file at this path")
	cmd.Flags().IntVar(&replayLimit, "limit", 0, "Arena size limit in bytes (0 = 20 MiB)")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay allocator traces",
		Long: `The replay command runs each trace against a fresh heap and reports
op counts, peak live payload, final arena size and utilization. Every payload
is filled with an id-derived pattern that must survive until the block is
released or resized.

Example:
  heapctl replay short1.rep short2.rep
  heapctl replay random.rep --config compact --check
  heapctl replay random.rep --file heap.bin --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// replayReport is one trace's outcome, as printed with --json.
type replayReport struct {
	Trace       string  `json:"trace"`
	Config      string  `json:"config"`
	Ops         int     `json:"ops"`
	Allocs      int     `json:"allocs"`
	Reallocs    int     `json:"reallocs"`
	Frees       int     `json:"frees"`
	PeakLive    uint64  `json:"peak_live"`
	ArenaSize   int     `json:"arena_size"`
	Utilization float64 `json:"utilization"`
	GrowCalls   int     `json:"grow_calls"`
	Error       string  `json:"error,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if replayFile != "" && len(args) > 1 {
		return fmt.Errorf("--file takes a single trace, got %d", len(args))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	setup := heapSetup{config: replayConfig, file: replayFile, limit: replayLimit}
	reports := make([]replayReport, 0, len(args))
	var errs []error
	for _, path := range args {
		rep, err := replayOne(ctx, setup, path, replayCheck)
		if err != nil {
			rep.Error = err.Error()
			errs = append(errs, err)
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		if err := printJSON(reports); err != nil {
			return err
		}
		return errors.Join(errs...)
	}

	printInfo("%-12s %-8s %8s %12s %12s %7s\n", "TRACE", "CONFIG", "OPS", "PEAK", "ARENA", "UTIL")
	for _, r := range reports {
		if r.Error != "" {
			printInfo("%-12s %-8s %8d  FAILED: %s\n", r.Trace, r.Config, r.Ops, r.Error)
			continue
		}
		printInfo("%-12s %-8s %8d %12d %12d %6.1f%%\n",
			r.Trace, r.Config, r.Ops, r.PeakLive, r.ArenaSize, 100*r.Utilization)
	}
	return errors.Join(errs...)
}

// replayOne parses path and replays it against a fresh heap built from setup.
func replayOne(ctx context.Context, setup heapSetup, path string, check bool) (replayReport, error) {
	rep := replayReport{Trace: path, Config: setup.config}

	printVerbose("Parsing trace: %s\n", path)
	tr, err := trace.ParseFile(path)
	if err != nil {
		return rep, err
	}
	rep.Trace = tr.Name

	a, closeHeap, err := setup.openHeap()
	if err != nil {
		return rep, err
	}

	res, err := trace.Replay(ctx, tr, a, trace.Options{Check: check})
	rep.Ops = res.Ops
	rep.Allocs = res.Allocs
	rep.Reallocs = res.Reallocs
	rep.Frees = res.Frees
	rep.PeakLive = res.PeakLive
	rep.ArenaSize = res.ArenaSize
	rep.Utilization = res.Utilization
	rep.GrowCalls = res.Stats.GrowCalls
	if err != nil {
		err = fmt.Errorf("%s: %w", tr.Name, err)
	}

	if verbose && !quiet && !jsonOut {
		a.PrintStats(os.Stdout)
	}
	if closeErr := closeHeap(ctx); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("%s: %w", tr.Name, closeErr))
	}
	return rep, err
}
