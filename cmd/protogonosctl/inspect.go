package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	protoapi "protogonos/pkg/protogonos"
)

func newInspectCmd() *cobra.Command {
	var (
		storeKind  string
		sqlitePath string
		generation int
		lineage    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <run-id>",
		Short: "Print a stored run's generation diagnostics or lineage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			client, err := protoapi.New(protoapi.Options{StoreKind: storeKind, SQLitePath: sqlitePath})
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			if lineage {
				records, ok, err := client.Lineage(ctx, runID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no lineage stored for run id: %s", runID)
				}
				for _, rec := range records {
					fmt.Fprintf(cmd.OutOrStdout(), "gen %d  network %s  parent %s  score %.4f  mutations [%s]\n",
						rec.Generation, rec.NetworkID, rec.ParentNetworkID, rec.Score, rec.MutationApplied)
				}
				return nil
			}

			if cmd.Flags().Changed("generation") {
				scored, ok, err := client.Generation(ctx, runID, generation)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no generation %d stored for run id: %s", generation, runID)
				}
				for _, net := range scored {
					fmt.Fprintf(cmd.OutOrStdout(), "network %s  score %.4f  nodes %s\n",
						net.NetworkID, net.Score, humanize.Comma(int64(len(net.Records))))
				}
				return nil
			}

			diagnostics, err := client.Diagnostics(ctx, runID)
			if err != nil {
				return err
			}
			for _, d := range diagnostics {
				fmt.Fprintf(cmd.OutOrStdout(), "gen %3d  pop %3d  best %.4f  mean %.4f  worst %.4f\n",
					d.Generation, d.PopulationN, d.BestScore, d.MeanScore, d.WorstScore)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storeKind, "store", "memory", "persistence backend: memory|sqlite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "protogonos.db", "sqlite database path (when --store=sqlite)")
	cmd.Flags().IntVar(&generation, "generation", 0, "print this generation's scored networks instead of the full diagnostics history")
	cmd.Flags().BoolVar(&lineage, "lineage", false, "print the run's full lineage instead of diagnostics")
	return cmd
}
