// Command cbgm is the CLI boundary around package cbgm's computational
// core: it decodes an already-parsed collation document, runs the full
// analysis, and renders the tabular comparison report or one of the DOT/SVG/
// PNG diagrams package diagram knows how to produce. It does not parse the
// XML collation tradition itself; that remains the caller's job.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/open-cbgm/cbgm-go/cbgm"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// exitCode maps a boundary failure to a process exit status (spec.md §6/§7):
// 0 is reserved for success and is never reached here since run only returns
// non-nil on failure.
func exitCode(err error) int {
	var cerr *cbgm.Error
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case cbgm.InputMalformed:
			return 2
		case cbgm.UnknownSelector:
			return 3
		case cbgm.ThresholdExcludesSubject:
			return 4
		case cbgm.InternalInvariant:
			return 5
		}
	}
	return 1
}
