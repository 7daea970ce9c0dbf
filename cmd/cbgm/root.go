package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/open-cbgm/cbgm-go/cbgm"
	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
)

// globalFlags are the flags every subcommand inherits from the root.
type globalFlags struct {
	verbose    bool
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "cbgm",
		Short:        "Coherence-Based Genealogical Method analysis",
		Long:         `cbgm runs witness-relation, substemma, textual-flow, and global-stemma analysis over an already-parsed collation document.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if flags.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (config.LoadFile); defaults resolve as if no file were given")

	root.AddCommand(newCompareCmd(flags))
	root.AddCommand(newFlowCmd(flags))
	root.AddCommand(newStemmaCmd(flags))

	return root
}

// loadConfig resolves flags.configPath into a *config.Config, falling back
// to deterministic defaults when no file is given.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath == "" {
		return config.New(), nil
	}
	cfg, err := config.LoadFile(flags.configPath)
	if err != nil {
		return nil, &cbgm.Error{Kind: cbgm.InputMalformed, Err: err}
	}
	return cfg, nil
}

// loadInput decodes an ApparatusInput JSON document from path. The document
// shape matches package collation's exported fields; parsing the original
// XML collation tradition is explicitly out of scope.
func loadInput(path string) (collation.ApparatusInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return collation.ApparatusInput{}, fmt.Errorf("cbgm: read %s: %w", path, err)
	}
	var in collation.ApparatusInput
	if err := json.Unmarshal(data, &in); err != nil {
		return collation.ApparatusInput{}, fmt.Errorf("cbgm: decode %s: %w", path, err)
	}
	return in, nil
}

// buildEngine loads the input and config named by path/flags and runs
// cbgm.Build, logging progress through cmd's context logger.
func buildEngine(ctx context.Context, path string, flags *globalFlags) (*cbgm.Engine, []cbgm.Warning, error) {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	in, err := loadInput(path)
	if err != nil {
		return nil, nil, err
	}

	e, warnings, err := cbgm.Build(ctx, in, cfg, cbgm.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		logger.Warnf("%s", w.String())
	}
	return e, warnings, nil
}
