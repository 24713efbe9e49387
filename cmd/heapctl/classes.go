package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/sizeclass"
)

var classesConfig string

func init() {
	cmd := newClassesCmd()
	cmd.Flags().StringVar(&classesConfig, "config", "default", "Size-class configuration (default, compact, wide)")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the size-class directory",
		Long: `The classes command prints the block-size range owned by every
free-list head of a size-class configuration.

Example:
  heapctl classes
  heapctl classes --config wide --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
	return cmd
}

type classRange struct {
	Class int    `json:"class"`
	Min   uint32 `json:"min"`
	Max   uint32 `json:"max"`
}

type classesReport struct {
	Config     string       `json:"config"`
	NumClasses int          `json:"num_classes"`
	ChunkSize  uint32       `json:"chunk_size"`
	Classes    []classRange `json:"classes"`
}

func runClasses() error {
	cfg, err := resolveConfig(classesConfig)
	if err != nil {
		return err
	}
	table, err := sizeclass.NewTable(cfg)
	if err != nil {
		return err
	}

	report := classesReport{
		Config:     cfg.Name,
		NumClasses: table.NumClasses(),
		ChunkSize:  table.ChunkSize(),
	}
	for i := range table.NumClasses() {
		lo, hi := table.Bounds(i)
		report.Classes = append(report.Classes, classRange{Class: i, Min: lo, Max: hi})
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("Size classes (%s): %d lists, %d-byte growth chunk\n\n",
		report.Config, report.NumClasses, report.ChunkSize)
	last := len(report.Classes) - 1
	for i, c := range report.Classes {
		if i == last {
			printInfo("  class %2d: %d and up\n", c.Class, c.Min)
			continue
		}
		printInfo("  class %2d: %d .. %d\n", c.Class, c.Min, c.Max)
	}
	return nil
}
