package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"protogonos/internal/model"
	"protogonos/internal/platform"
	protoapi "protogonos/pkg/protogonos"
)

func newRunCmd() *cobra.Command {
	var (
		configPath       string
		runID            string
		scenarioName     string
		storeKind        string
		sqlitePath       string
		population       int
		generations      int
		maxThinkCycles   int
		selectionDivisor int
		thinkTimeoutMS   int
		asyncScoring     bool
		weightRange      float64
		seed             int64
		watch            bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the generation scheduler to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			props := platform.EvolutionProperties{}
			if configPath != "" {
				loaded, err := platform.LoadEvolutionProperties(configPath)
				if err != nil {
					return err
				}
				props = loaded
			}
			flags := cmd.Flags()
			if flags.Changed("run-id") || props.RunID == "" {
				if runID != "" {
					props.RunID = runID
				}
			}
			if flags.Changed("scenario") || props.Scenario == "" {
				props.Scenario = scenarioName
			}
			if flags.Changed("store") || props.StoreKind == "" {
				props.StoreKind = storeKind
			}
			if flags.Changed("sqlite-path") || props.SQLitePath == "" {
				props.SQLitePath = sqlitePath
			}
			if flags.Changed("pop") {
				props.PopulationSize = population
			}
			if flags.Changed("gens") {
				props.Generations = generations
			}
			if flags.Changed("max-think-cycles") {
				props.MaxThinkCycles = maxThinkCycles
			}
			if flags.Changed("selection-divisor") {
				props.SelectionDivisor = selectionDivisor
			}
			if flags.Changed("think-timeout-ms") {
				props.ThinkTimeoutMS = thinkTimeoutMS
			}
			if flags.Changed("async") {
				props.AsyncScoring = asyncScoring
			}
			if flags.Changed("weight-range") {
				props.InitialWeightRange = weightRange
			}
			if flags.Changed("seed") {
				props.Seed = seed
			}
			if props.RunID == "" {
				props.RunID = fmt.Sprintf("%s-%d", props.ScenarioOrDefault(), time.Now().Unix())
			}

			scenario, err := protoapi.ScenarioByName(props.ScenarioOrDefault())
			if err != nil {
				return err
			}
			client, err := protoapi.New(protoapi.Options{StoreKind: props.StoreKind, SQLitePath: props.SQLitePath})
			if err != nil {
				return err
			}
			defer client.Close()

			req := protoapi.RunRequest{
				RunID:              props.RunID,
				Scenario:           scenario,
				PopulationSize:     props.PopulationSizeOrDefault(),
				Generations:        props.GenerationsOrDefault(),
				MaxThinkCycles:     props.MaxThinkCyclesOrDefault(),
				SelectionDivisor:   props.SelectionDivisorOrDefault(),
				ThinkTimeout:       props.ThinkTimeoutOrDefault(),
				AsyncScoring:       props.AsyncScoring,
				InitialWeightRange: props.InitialWeightRangeOrDefault(),
				Seed:               props.Seed,
			}

			if !watch || !isatty.IsTerminal(os.Stdout.Fd()) {
				return runPlain(cmd, req, client)
			}
			return runWithDashboard(cmd, req, client)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML EvolutionProperties file")
	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default: <scenario>-<unix time>)")
	cmd.Flags().StringVar(&scenarioName, "scenario", "xor", "benchmark scenario name")
	cmd.Flags().StringVar(&storeKind, "store", "memory", "persistence backend: memory|sqlite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "protogonos.db", "sqlite database path (when --store=sqlite)")
	cmd.Flags().IntVar(&population, "pop", 50, "population size")
	cmd.Flags().IntVar(&generations, "gens", 100, "number of generations")
	cmd.Flags().IntVar(&maxThinkCycles, "max-think-cycles", 20, "think cycles per candidate per generation")
	cmd.Flags().IntVar(&selectionDivisor, "selection-divisor", 2, "survivor chunk divisor")
	cmd.Flags().IntVar(&thinkTimeoutMS, "think-timeout-ms", 2000, "timeout per think cycle, in milliseconds")
	cmd.Flags().BoolVar(&asyncScoring, "async", false, "evaluate a generation's candidates concurrently")
	cmd.Flags().Float64Var(&weightRange, "weight-range", 1.0, "+/- bound for uniform random weight init")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the current time)")
	cmd.Flags().BoolVar(&watch, "watch", false, "attach a live terminal dashboard")
	return cmd
}

func runPlain(cmd *cobra.Command, req protoapi.RunRequest, client *protoapi.Client) error {
	req.Progress = func(d model.GenerationDiagnostics, _ model.ScoredNodeRecords) {
		fmt.Fprintf(cmd.OutOrStdout(), "gen %d: pop=%d best=%.4f mean=%.4f worst=%.4f\n",
			d.Generation, d.PopulationN, d.BestScore, d.MeanScore, d.WorstScore)
	}
	summary, err := client.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s complete: %d generations, final population %d\n",
		summary.RunID, len(summary.Diagnostics), len(summary.Final))
	return nil
}

// runWithDashboard supervises the run goroutine so that quitting the
// dashboard early (ctrl+c / q) cancels the scheduler instead of leaving it
// running detached in the background.
func runWithDashboard(cmd *cobra.Command, req protoapi.RunRequest, client *protoapi.Client) error {
	program := tea.NewProgram(newWatchModel(req.Scenario.Name()))

	req.Progress = func(d model.GenerationDiagnostics, scored model.ScoredNodeRecords) {
		program.Send(watchUpdateMsg{diagnostics: d, population: len(scored)})
	}

	supervisor := platform.NewSupervisor(platform.SupervisorPolicy{MaxRestarts: 0})
	runErrCh := make(chan error, 1)
	if err := supervisor.Start("scheduler", func(ctx context.Context) error {
		_, err := client.Run(ctx, req)
		program.Send(watchDoneMsg{err: err})
		runErrCh <- err
		return nil
	}); err != nil {
		return err
	}

	_, runErr := program.Run()
	supervisor.Stop("scheduler")
	if runErr != nil {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	select {
	case err := <-runErrCh:
		return err
	default:
		return nil
	}
}
