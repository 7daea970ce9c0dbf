package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cbgm/cbgm-go/diagram"
)

func newFlowCmd(flags *globalFlags) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "flow <input.json> <unit-selector>",
		Short: "Emit the complete textual-flow diagram for one variation unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			u, err := e.Unit(args[1])
			if err != nil {
				return err
			}

			g, err := e.TextualFlow(args[1])
			if err != nil {
				return err
			}

			dot := diagram.TextualFlowDOT(g, u.Label(), u.Connectivity())
			return writeDiagram(cmd, dot, format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (stdout if omitted)")
	return cmd
}

func writeDiagram(cmd *cobra.Command, dot, format, output string) error {
	var data []byte
	var err error

	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = diagram.RenderSVG(dot)
	case "png":
		data, err = diagram.RenderPNG(dot)
	default:
		return fmt.Errorf("cbgm: unknown format %q (want dot, svg, png)", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
