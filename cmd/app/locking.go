package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <id>",
		Short: "Take exclusive access to one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			repo, err := rt.svc.Get(args[0])
			if err != nil {
				return err
			}
			if err := repo.Lock(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "locked %s\n", args[0])
			return nil
		},
	}
}

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <id>",
		Short: "Release exclusive access to one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			repo, err := rt.svc.Get(args[0])
			if err != nil {
				return err
			}
			if err := repo.Unlock(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", args[0])
			return nil
		},
	}
}

func newLockAllCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "lock-all",
		Short: "Lock every registered repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()
			return rt.svc.LockAll(ctx, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}

func newUnlockAllCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "unlock-all",
		Short: "Unlock every registered repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()
			return rt.svc.UnlockAll(ctx, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}
