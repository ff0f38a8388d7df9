package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMaintainCmd(opts *rootOptions) *cobra.Command {
	var rebuildIndex bool
	cmd := &cobra.Command{
		Use:   "maintain <id>",
		Short: "Prune one repository and optionally rebuild its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			if err := rt.svc.Maintain(ctx, args[0], rebuildIndex); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "maintained %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuildIndex, "rebuild-index", true, "rebuild the on-disk index after pruning")
	return cmd
}

func newMaintainAllCmd(opts *rootOptions) *cobra.Command {
	var force, rebuildIndex, noNotify bool
	cmd := &cobra.Command{
		Use:   "maintain-all",
		Short: "Run fleet-wide maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			if !cmd.Flags().Changed("force") {
				force = rt.cfg.Maintenance.Force
			}
			if !cmd.Flags().Changed("rebuild-index") {
				rebuildIndex = rt.cfg.Maintenance.RebuildIndex
			}

			runErr := rt.svc.MaintainAll(ctx, rebuildIndex, force)

			if rt.cfg.Maintenance.Notify && !noNotify {
				msg := fmt.Sprintf("maintenance finished for %d repositories", rt.svc.Len())
				if runErr != nil {
					msg = "maintenance finished with failures: " + runErr.Error()
				}
				_ = rt.deps.Notification.Send(ctx, "vaultkeep", msg, "")
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "maintained %d repositories\n", rt.svc.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	cmd.Flags().BoolVar(&rebuildIndex, "rebuild-index", true, "rebuild the on-disk index after pruning")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "skip the desktop notification")
	return cmd
}

func newRepairCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <id>",
		Short: "Restore the standard structure of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			repaired, err := rt.svc.RepairRepository(ctx, args[0])
			if err != nil {
				return err
			}
			if repaired {
				fmt.Fprintf(cmd.OutOrStdout(), "repaired %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s needed no repair\n", args[0])
			}
			return nil
		},
	}
}

func newCompactCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <id>",
		Short: "Remove unreferenced data objects from one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			if err := rt.svc.Compact(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compacted %s\n", args[0])
			return nil
		},
	}
}

func newCompactAllCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "compact-all",
		Short: "Remove unreferenced data objects from every repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()
			return rt.svc.CompactAll(ctx, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}

func newOptimizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <id>",
		Short: "Rebuild the on-disk index of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			if err := rt.svc.Optimize(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "optimized %s\n", args[0])
			return nil
		},
	}
}

func newOptimizeAllCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "optimize-all",
		Short: "Rebuild the on-disk index of every repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()
			return rt.svc.OptimizeAll(ctx, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}
