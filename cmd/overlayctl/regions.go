package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var regionsCoverage bool

func init() {
	cmd := newRegionsCmd()
	cmd.Flags().BoolVar(&regionsCoverage, "coverage", false, "Show coalesced address coverage instead of individual regions")
	rootCmd.AddCommand(cmd)
}

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions <dir>",
		Short: "List the regions a dump directory loads",
		Long: `The regions command loads a dump directory and lists every region in
ascending address order. With --coverage, overlapping and adjacent regions
are merged into the address ranges they cover.

Example:
  overlayctl regions ./dump
  overlayctl regions ./dump --coverage --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd, args)
		},
	}
	return cmd
}

type rangeJSON struct {
	Start string `json:"start"`
	Last  string `json:"last"`
	Size  uint64 `json:"size"`
}

func runRegions(cmd *cobra.Command, args []string) error {
	s, _, err := loadDir(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	var ranges []rangeJSON
	if regionsCoverage {
		for _, r := range s.Coverage() {
			ranges = append(ranges, rangeJSON{Start: hexAddr(r.Start), Last: hexAddr(r.Last), Size: r.Size()})
		}
	} else {
		for r := range s.All() {
			last, _ := r.Last()
			ranges = append(ranges, rangeJSON{Start: hexAddr(r.Base), Last: hexAddr(last), Size: uint64(r.Len())})
		}
	}

	if jsonOut {
		if ranges == nil {
			ranges = []rangeJSON{}
		}
		return printJSON(ranges)
	}

	for _, r := range ranges {
		printInfo("%18s - %-18s %10s\n", r.Start, r.Last, humanize.IBytes(r.Size))
	}
	printInfo("\n%d range(s), %s covered\n", len(ranges), humanize.IBytes(s.CoveredBytes()))
	return nil
}
