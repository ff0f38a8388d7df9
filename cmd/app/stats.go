package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arumata/vaultkeep/internal/usecase"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Refresh and print statistics for one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			st, err := rt.svc.GetStats(ctx, args[0])
			if err != nil {
				return err
			}
			printStats(cmd, args[0], st)
			return nil
		},
	}
}

func newStatsAllCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "stats-all",
		Short: "Refresh and print statistics for every repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			results, runErr := rt.svc.GetAllStats(ctx, force)

			ids := make([]string, 0, len(results))
			for id := range results {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				printStats(cmd, id, results[id])
			}
			// Partial results were already printed; the aggregate error
			// still decides the exit code.
			return runErr
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "continue past failures and report them all")
	return cmd
}

func printStats(cmd *cobra.Command, id string, st usecase.RepositoryStatistics) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", id)
	fmt.Fprintf(out, "  size on disk:  %s\n", humanize.IBytes(uint64(st.TotalSize)))
	fmt.Fprintf(out, "  logical size:  %s\n", humanize.IBytes(uint64(st.LogicalSize)))
	if ratio := st.CompressionRatio(); ratio > 0 {
		fmt.Fprintf(out, "  compression:   %.2fx\n", ratio)
	}
	fmt.Fprintf(out, "  snapshots:     %d\n", st.SnapshotCount)
	fmt.Fprintf(out, "  files:         %d\n", st.TotalFiles)
	if st.UnusedObjects > 0 {
		fmt.Fprintf(out, "  unused:        %d objects\n", st.UnusedObjects)
	}
	if !st.LastCheck.IsZero() {
		fmt.Fprintf(out, "  checked:       %s\n", humanize.Time(st.LastCheck))
	}
}
