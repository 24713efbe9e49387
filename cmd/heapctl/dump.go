package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	dumpConfig    string
	dumpFormat    string
	dumpOps       int
	dumpPayload   int
	dumpFreeLists bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVar(&dumpConfig, "config", "default", "Size-class configuration (default, compact, wide)")
	cmd.Flags().StringVar(&dumpFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().IntVar(&dumpOps, "ops", 0, "Replay only the first n ops (0 = all)")
	cmd.Flags().IntVar(&dumpPayload, "payload", 0, "Preview up to n payload bytes of allocated blocks")
	cmd.Flags().BoolVar(&dumpFreeLists, "free-lists", true, "Print the per-class free lists")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Replay a trace and print the heap",
		Long: `The dump command replays the first n ops of a trace and prints the
resulting block map (pointer, size, state, prev-allocated bit) followed by
the members of every non-empty free list.

Example:
  heapctl dump short2.rep --ops 6
  heapctl dump realloc.rep --format json
  heapctl dump short1.rep --payload 16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args)
		},
	}
	return cmd
}

func runDump(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format := printer.Format(dumpFormat)
	if jsonOut {
		format = printer.FormatJSON
	}
	if format != printer.FormatText && format != printer.FormatJSON {
		return fmt.Errorf("unknown format: %s (must be text or json)", dumpFormat)
	}

	printVerbose("Parsing trace: %s\n", args[0])
	tr, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}

	a, closeHeap, err := heapSetup{config: dumpConfig}.openHeap()
	if err != nil {
		return err
	}
	defer closeHeap(ctx)

	res, err := trace.Replay(ctx, tr, a, trace.Options{MaxOps: dumpOps})
	if err != nil {
		return fmt.Errorf("%s: %w", tr.Name, err)
	}
	printVerbose("Replayed %d of %d ops\n", res.Ops, len(tr.Ops))

	opts := printer.DefaultOptions()
	opts.Format = format
	opts.ShowFreeLists = dumpFreeLists
	opts.MaxPayloadBytes = dumpPayload
	return printer.Print(os.Stdout, a.Bytes(), a.Layout(), a.Table(), opts)
}
