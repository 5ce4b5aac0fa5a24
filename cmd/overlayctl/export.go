package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/overlaykit/overlay/manifest"
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <src> <dst>",
		Short: "Re-export the loadable regions of a dump directory",
		Long: `The export command loads a dump directory and writes every region that
loaded into a new directory: one zlib payload per region and a manifest with
hexadecimal start addresses. Segments that failed to load are left out, so
the result always loads cleanly.

Example:
  overlayctl export ./dump ./dump-clean`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args)
		},
	}
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	ctx := commandContext(cmd)

	s, res, err := loadDir(ctx, src)
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("no segments loaded from %s", src)
	}

	opts, err := manifestOptions()
	if err != nil {
		return err
	}
	printVerbose("Writing dump: %s\n", dst)
	n, err := manifest.Save(ctx, dst, s, opts)
	if err != nil {
		return fmt.Errorf("failed to export to %s: %w", dst, err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"src":      src,
			"dst":      dst,
			"segments": n,
			"skipped":  len(res.Skipped),
			"bytes":    s.CoveredBytes(),
		})
	}
	printInfo("Exported %d segment(s) to %s (%s)\n", n, dst, humanize.IBytes(s.CoveredBytes()))
	if len(res.Skipped) > 0 {
		printInfo("  %d segment(s) skipped during load\n", len(res.Skipped))
	}
	return nil
}
