package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quentinrf/darkwatt/internal/adapters/htmldoc"
	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

func newClassifyCmd() *cobra.Command {
	var (
		width, height int
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "classify <file|->",
		Short: "Classify an HTML document as dark or light",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			doc, err := htmldoc.Parse(in, htmldoc.Options{Width: width, Height: height})
			if err != nil {
				return err
			}
			verdict := colorscheme.Detect(doc)
			resp := messaging.ThemeResponse{
				Mode:        verdict.Mode,
				Signal:      verdict.Signal,
				DefinedDark: colorscheme.HasDefinedDarkTheme(doc),
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Fprintln(out, renderTheme(resp))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", htmldoc.DefaultWidth, "viewport width in CSS pixels")
	cmd.Flags().IntVar(&height, "height", htmldoc.DefaultHeight, "viewport height in CSS pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the verdict as JSON")
	return cmd
}
