package main

import (
	"context"

	"github.com/spf13/cobra"
)

var checkConfig string

func init() {
	cmd := newCheckCmd()
	cmd.Flags().StringVar(&checkConfig, "config", "default", "Size-class configuration (default, compact, wide)")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace with the heap checker after every op",
		Long: `The check command replays a trace and runs the consistency checker
after every operation: sentinels, boundary tags, coalescing, free-list
membership, links and address order.

Example:
  heapctl check short2.rep
  heapctl check random.rep --config wide --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args)
		},
	}
	return cmd
}

func runCheck(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracePath := args[0]

	printVerbose("Checking trace: %s\n", tracePath)

	rep, err := replayOne(ctx, heapSetup{config: checkConfig}, tracePath, true)

	// Prepare result
	result := map[string]any{
		"trace":  rep.Trace,
		"config": checkConfig,
		"ops":    rep.Ops,
		"valid":  err == nil,
	}
	if err != nil {
		result["error"] = err.Error()
	}

	// Output as JSON if requested
	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	printInfo("\nChecking %s (%s)...\n\n", rep.Trace, checkConfig)
	printInfo("  Ops replayed: %d\n", rep.Ops)
	printInfo("  Arena size:   %s\n", formatBytes(int64(rep.ArenaSize)))

	if err != nil {
		printInfo("  ✗ Check failed: %v\n", err)
		printInfo("\nResult: ✗ INCONSISTENT\n")
		return err
	}

	printInfo("  ✓ Heap consistent after every op\n")
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
