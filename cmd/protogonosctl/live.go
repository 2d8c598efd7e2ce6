package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"protogonos/internal/model"
	protoapi "protogonos/pkg/protogonos"
)

func newLiveCmd() *cobra.Command {
	var (
		runID          string
		scenarioName   string
		storeKind      string
		sqlitePath     string
		population     int
		generations    int
		maxThinkCycles int
		thinkTimeoutMS int
		weightRange    float64
		seed           int64
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Step the sequential live evolution variant for a fixed number of generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID == "" {
				runID = fmt.Sprintf("%s-live-%d", scenarioName, time.Now().Unix())
			}
			scenario, err := protoapi.ScenarioByName(scenarioName)
			if err != nil {
				return err
			}
			client, err := protoapi.New(protoapi.Options{StoreKind: storeKind, SQLitePath: sqlitePath})
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			evolver, err := client.NewLiveEvolver(ctx, protoapi.LiveRequest{
				Scenario:           scenario,
				PopulationSize:     population,
				MaxThinkCycles:     maxThinkCycles,
				ThinkTimeout:       time.Duration(thinkTimeoutMS) * time.Millisecond,
				InitialWeightRange: weightRange,
				Seed:               seed,
				OnGeneration: func(d model.GenerationDiagnostics, _ model.ScoredNodeRecords) {
					fmt.Fprintf(cmd.OutOrStdout(), "gen %d: pop=%d best=%.4f mean=%.4f worst=%.4f\n",
						d.Generation, d.PopulationN, d.BestScore, d.MeanScore, d.WorstScore)
				},
			})
			if err != nil {
				return err
			}

			for evolver.Generation() < generations {
				if err := evolver.SynchronizeActiveCortex(ctx); err != nil {
					return fmt.Errorf("synchronize active cortex: %w", err)
				}
			}

			scored, lineage, err := evolver.EndEvolution(ctx)
			if err != nil {
				return fmt.Errorf("end evolution: %w", err)
			}
			if err := client.SaveLiveResult(ctx, runID, evolver.Generation(), scored, lineage); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "live run %s complete: %d generations, %d lineage records\n",
				runID, evolver.Generation(), len(lineage))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default: <scenario>-live-<unix time>)")
	cmd.Flags().StringVar(&scenarioName, "scenario", "xor", "benchmark scenario name")
	cmd.Flags().StringVar(&storeKind, "store", "memory", "persistence backend: memory|sqlite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "protogonos.db", "sqlite database path (when --store=sqlite)")
	cmd.Flags().IntVar(&population, "pop", 50, "population size")
	cmd.Flags().IntVar(&generations, "gens", 10, "number of generations to advance before stopping")
	cmd.Flags().IntVar(&maxThinkCycles, "max-think-cycles", 20, "think cycles per candidate")
	cmd.Flags().IntVar(&thinkTimeoutMS, "think-timeout-ms", 2000, "timeout per think cycle, in milliseconds")
	cmd.Flags().Float64Var(&weightRange, "weight-range", 1.0, "+/- bound for uniform random weight init")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the current time)")
	return cmd
}
