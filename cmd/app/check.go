package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arumata/vaultkeep/internal/usecase"
)

// checkFlags builds HealthCheckOptions from command flags. --full wins over
// the individual switches.
type checkFlags struct {
	readData    bool
	checkUnused bool
	full        bool
}

func (f checkFlags) options() usecase.HealthCheckOptions {
	if f.full {
		return usecase.FullHealthCheck()
	}
	return usecase.HealthCheckOptions{ReadData: f.readData, CheckUnused: f.checkUnused}
}

func (f *checkFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.readData, "read-data", false, "verify every data object by reading it")
	cmd.Flags().BoolVar(&f.checkUnused, "check-unused", false, "look for data objects no snapshot references")
	cmd.Flags().BoolVar(&f.full, "full", false, "shorthand for --read-data --check-unused")
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Health-check one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			st, err := rt.svc.CheckHealth(ctx, args[0], flags.options())
			if err != nil {
				return err
			}
			printStats(cmd, args[0], st)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCheckAllCmd(opts *rootOptions) *cobra.Command {
	var flags checkFlags
	var force bool
	cmd := &cobra.Command{
		Use:   "check-all",
		Short: "Health-check every registered repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			if err := rt.svc.CheckHealthAll(ctx, flags.options(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d repositories\n", rt.svc.Len())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}
