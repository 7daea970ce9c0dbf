package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cbgm/cbgm-go/cbgm"
)

func newCompareCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <input.json> <primary-witness> <unit-selector>",
		Short: "Print the tabular comparison report for one witness at one variation unit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			rows, err := e.ComparisonReport(args[1], args[2])
			if err != nil {
				return err
			}
			printComparisonReport(cmd, args[1], rows)
			return nil
		},
	}
	return cmd
}

func printComparisonReport(cmd *cobra.Command, primary string, rows []cbgm.ComparisonRow) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "W2\tDIR\tRANK\tATTESTS\tPASS\tPERC\tEQ\tPRIOR\tPOST\tNOREL\n")
	for _, r := range rows {
		rank := "-"
		if r.Rank >= 0 {
			rank = fmt.Sprint(r.Rank + 1)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%.1f\t%d\t%d\t%d\t%d\n",
			r.WID, r.Direction, rank, strings.Join(r.Attested, "/"),
			r.Pass, r.Perc, r.Eq, r.Prior, r.Posterior, r.Norel)
	}
}
