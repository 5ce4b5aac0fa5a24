package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshuapare/overlaykit/internal/buf"
	"github.com/joshuapare/overlaykit/overlay/manifest"
	"github.com/joshuapare/overlaykit/overlay/source"
	"github.com/joshuapare/overlaykit/overlay/view"
	"github.com/joshuapare/overlaykit/pkg/types"
)

const (
	maxReadLength = 16 << 20
	bytesPerLine  = 16
)

var faint = color.New(color.Faint)

var (
	readImage     string
	readImageBase string
	readAs        string
)

func init() {
	cmd := newReadCmd()
	cmd.Flags().StringVar(&readImage, "image", "", "Flat binary file to use as the primary memory source")
	cmd.Flags().StringVar(&readImageBase, "image-base", "0", "Address of the first byte of --image")
	cmd.Flags().StringVar(&readAs, "as", "", "Also decode the window start as a little-endian u16, u32 or u64")
	rootCmd.AddCommand(cmd)
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <dir> <address> <length>",
		Short: "Read a composed memory window",
		Long: `The read command loads a dump directory and composes its regions over a
window of the primary memory source, printing the result as a hexdump.
Bytes nobody knows are printed as ??. Without --image the primary source is
empty, so only dumped bytes are known.

Addresses and lengths accept 0x, 0o and 0b prefixes.

Example:
  overlayctl read ./dump 0x7ffd0000 64
  overlayctl read ./dump 0x401000 0x100 --image text.bin --image-base 0x400000
  overlayctl read ./dump 0x7ffd0010 8 --as u64`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(commandContext(cmd), args)
		},
	}
	return cmd
}

type readJSON struct {
	Address string  `json:"address"`
	Length  int     `json:"length"`
	Valid   int     `json:"valid"`
	Hex     string  `json:"hex"`
	Value   *string `json:"value,omitempty"`
}

func runRead(ctx context.Context, args []string) error {
	dir := args[0]

	address, err := manifest.ParseAddress(args[1])
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	n, err := manifest.ParseAddress(args[2])
	if err != nil {
		return fmt.Errorf("invalid length: %w", err)
	}
	if n == 0 || n > maxReadLength {
		return fmt.Errorf("invalid length: must be between 1 and %d", maxReadLength)
	}
	length := int(n)

	width, err := parseWidth(readAs)
	if err != nil {
		return err
	}

	var src source.Source = source.Null{}
	if readImage != "" {
		base, err := manifest.ParseAddress(readImageBase)
		if err != nil {
			return fmt.Errorf("invalid --image-base: %w", err)
		}
		img, err := source.OpenImage(readImage, base)
		if err != nil {
			return err
		}
		defer img.Close()
		src = img
		printVerbose("Image %s mapped at %s (%d bytes)\n", readImage, hexAddr(base), img.Size())
	}

	opts, err := manifestOptions()
	if err != nil {
		return err
	}
	c := view.New(src, nil, view.WithManifestOptions(*opts))
	c.SetWindow(address, length)

	res, err := c.LoadDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", dir, err)
	}
	printVerbose("Loaded %d/%d segments\n", res.Successful, res.Total)

	m := c.Model()
	if res.Successful == 0 {
		// Nothing loaded, so LoadDirectory did not compose the window.
		if m, err = c.Refresh(ctx); err != nil {
			return err
		}
	}

	var value *string
	if width > 0 {
		v := decodeValue(m, width)
		value = &v
	}

	if jsonOut {
		return printJSON(readJSON{
			Address: hexAddr(address),
			Length:  len(m.Data),
			Valid:   (&types.Snapshot{Mask: m.Mask}).ValidCount(),
			Hex:     hexString(m),
			Value:   value,
		})
	}

	if !quiet {
		hexdump(os.Stdout, m)
	}
	if value != nil {
		printInfo("\n%s at %s: %s\n", readAs, hexAddr(address), *value)
	}
	return nil
}

func parseWidth(s string) (int, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "u16":
		return buf.Width16, nil
	case "u32":
		return buf.Width32, nil
	case "u64":
		return buf.Width64, nil
	default:
		return 0, fmt.Errorf("invalid --as %q: want u16, u32 or u64", s)
	}
}

// decodeValue renders the little-endian value at the window start, or
// "unknown" when any of its bytes is not valid.
func decodeValue(m view.Model, width int) string {
	v, ok := buf.LE(m.Data, 0, width)
	if !ok {
		return "out of range"
	}
	if !buf.AllEqual(m.Mask, 0, width, types.MaskValid) {
		return "unknown"
	}
	return fmt.Sprintf("%#x (%d)", v, v)
}

func hexString(m view.Model) string {
	var sb strings.Builder
	for i, b := range m.Data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i < len(m.Mask) && m.Mask[i] == types.MaskValid {
			fmt.Fprintf(&sb, "%02x", b)
		} else {
			sb.WriteString("??")
		}
	}
	return sb.String()
}

// hexdump writes m sixteen bytes per line with an ASCII column. Unknown
// bytes print as ?? and as a space in the ASCII column.
func hexdump(w io.Writer, m view.Model) {
	addr := m.Window.Address
	for off := 0; off < len(m.Data); off += bytesPerLine {
		end := min(off+bytesPerLine, len(m.Data))

		var hex, ascii strings.Builder
		for i := off; i < off+bytesPerLine; i++ {
			if i == off+bytesPerLine/2 {
				hex.WriteByte(' ')
			}
			switch {
			case i >= end:
				hex.WriteString("   ")
			case i >= len(m.Mask) || m.Mask[i] != types.MaskValid:
				hex.WriteString(faint.Sprint("??") + " ")
				ascii.WriteByte(' ')
			default:
				b := m.Data[i]
				fmt.Fprintf(&hex, "%02x ", b)
				if b >= 0x20 && b < 0x7f {
					ascii.WriteByte(b)
				} else {
					ascii.WriteByte('.')
				}
			}
		}
		fmt.Fprintf(w, "%016x  %s |%s|\n", addr+uint64(off), hex.String(), ascii.String())
	}
}
