package main

import (
	"github.com/spf13/cobra"

	"github.com/open-cbgm/cbgm-go/diagram"
)

func newStemmaCmd(flags *globalFlags) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "stemma <input.json>",
		Short: "Emit the assembled global stemma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			g, err := e.GlobalStemma()
			if err != nil {
				return err
			}

			dot := diagram.GlobalStemmaDOT(g)
			return writeDiagram(cmd, dot, format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (stdout if omitted)")
	return cmd
}
