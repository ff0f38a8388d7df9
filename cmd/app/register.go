package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arumata/vaultkeep/internal/usecase"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "register <id> <path>",
		Short: "Register a backup repository, initializing it when needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			id := args[0]
			location, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve path %s: %v: %w", args[1], err, usecase.ErrUsage)
			}

			if create {
				if err := rt.deps.FileSystem.CreateDir(ctx, location, 0o755); err != nil {
					return fmt.Errorf("create %s: %v: %w", location, err, usecase.ErrOperationFailed)
				}
			}

			state := usecase.InferState(ctx, rt.deps, location)
			repo := usecase.NewFilesystemRepository(id, location, state, rt.deps, rt.logger)
			if err := rt.svc.Register(ctx, repo); err != nil {
				return err
			}

			rt.cfg.AddRepository(usecase.RepositoryEntry{ID: id, Path: location})
			if err := rt.saveConfig(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered %s at %s (%s)\n", id, location, repo.State())
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", true, "create the directory when it does not exist")
	return cmd
}

func newUnregisterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <id>",
		Short: "Remove a repository from the registry, leaving its data on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			id := args[0]
			_, svcErr := rt.svc.Unregister(ctx, id)
			removed := rt.cfg.RemoveRepository(id)
			if svcErr != nil && !removed {
				return svcErr
			}
			// A configured entry whose directory is broken is not in the
			// in-memory registry; removing its persisted entry is enough.
			if svcErr != nil && !errors.Is(svcErr, usecase.ErrNotFound) {
				return svcErr
			}
			if err := rt.saveConfig(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "unregistered %s\n", id)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			repos := rt.svc.List()
			if len(repos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no repositories registered")
				return nil
			}
			for _, r := range repos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-14s %s\n", r.ID(), r.State(), r.Location())
			}
			return nil
		},
	}
}
