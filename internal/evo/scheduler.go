package evo

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"protogonos/internal/agent"
	"protogonos/internal/genotype"
	"protogonos/internal/idgen"
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
	"protogonos/internal/scape"
	"protogonos/internal/scorekeeper"
)

// Options configures EvolveForXGenerations (spec.md §4.5): the evolution
// properties the caller supplies (population size, generation count,
// think-cycle cap, selection divisor, timing, and the benchmark scenario
// that binds sync functions and scores networks).
type Options struct {
	Scenario           scape.Scenario
	PopulationSize     int
	Generations        int
	MaxThinkCycles     int
	SelectionDivisor   int
	ThinkTimeout       time.Duration
	AsyncScoring       bool
	Activations        *protoio.ActivationFunctions
	InitialWeightRange float64
	RNG                *rand.Rand

	// OnGeneration, if set, receives each generation's scored population
	// and diagnostics before selection runs (spec.md §4.5 step 6's
	// optional end-of-generation hook).
	OnGeneration func(model.GenerationDiagnostics, model.ScoredNodeRecords)
}

// Result is what EvolveForXGenerations returns once the run completes:
// the final generation's scored population and the accumulated lineage
// across every generation (spec.md §12 supplements the bare scored-records
// return with ancestry bookkeeping).
type Result struct {
	Final   model.ScoredNodeRecords
	Lineage []model.LineageRecord
}

type candidate struct {
	id      model.NetworkID
	records model.NodeRecords
	parent  model.NetworkID
	kinds   []string
}

// EvolveForXGenerations runs spec.md §4.5's generation loop end to end:
// evolve a fresh population from the survivors, materialise one cortex and
// score keeper per candidate, drive think cycles until the cycle cap is
// reached or until a cycle in which any network's fitness returns
// model.DirectiveEnd (which stops every network's cycles for that
// generation), tear down, select survivors, and repeat.
func EvolveForXGenerations(ctx context.Context, opts Options) (Result, error) {
	if opts.Scenario == nil {
		return Result{}, fmt.Errorf("evolve: scenario is required")
	}
	if opts.PopulationSize < 1 {
		return Result{}, fmt.Errorf("evolve: population size must be at least 1")
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	activations := opts.Activations
	if activations == nil {
		activations = protoio.BuiltinActivationFunctions()
	}
	catalog := NewCatalog(syncFunctionIDs(opts.Scenario), outputHookIDs(opts.Scenario))

	opts.Activations = activations
	population, err := seedPopulation(opts, rng)
	if err != nil {
		return Result{}, fmt.Errorf("evolve: seed generation 0: %w", err)
	}

	var lineage []model.LineageRecord
	var scored model.ScoredNodeRecords

	for generation := 0; generation < opts.Generations; generation++ {
		scored, err = evaluateGeneration(ctx, opts, activations, population)
		if err != nil {
			return Result{}, fmt.Errorf("evolve: generation %d: %w", generation, err)
		}

		for i, c := range population {
			lineage = append(lineage, model.LineageRecord{
				Generation:      generation,
				NetworkID:       c.id,
				ParentNetworkID: c.parent,
				Score:           scored[i].Score,
				MutationApplied: strings.Join(c.kinds, ","),
			})
		}

		diagnostics := model.SummarizeGeneration(generation, scored)
		if opts.OnGeneration != nil {
			opts.OnGeneration(diagnostics, scored)
		}

		if generation == opts.Generations-1 {
			break
		}

		survivors := SelectSurvivors(scored, opts.SelectionDivisor)
		if len(survivors) == 0 {
			return Result{}, fmt.Errorf("evolve: generation %d produced no survivors", generation)
		}

		population, err = evolvePopulation(survivors, opts.PopulationSize, catalog, rng)
		if err != nil {
			return Result{}, fmt.Errorf("evolve: generation %d: evolve population: %w", generation, err)
		}
	}

	return Result{Final: scored, Lineage: lineage}, nil
}

// seedPopulation builds generation 0: PopulationSize independent seed
// networks (spec.md §4.5 step 2 needs something to materialise before any
// survivor exists), each with its own dense node-id namespace starting at
// 1, from a generator seeded at 0 (spec.md §9's per-network id-density note, kept even though node ids
// are process-wide: a fresh generator per candidate reproduces it).
func seedPopulation(opts Options, rng *rand.Rand) ([]candidate, error) {
	sensors := opts.Scenario.SensorSpecs()
	actuators := opts.Scenario.ActuatorSpecs()
	activationIDs := opts.Activations.IDs()

	population := make([]candidate, opts.PopulationSize)
	for i := range population {
		gen := idgen.NewNodeIDGenerator(0)
		records, err := genotype.ConstructSeedNN(gen, genotype.SeedOptions{
			Sensors:               sensors,
			Actuators:              actuators,
			ActivationFunctionIDs:  activationIDs,
			InitialWeightRange:    opts.InitialWeightRange,
			RNG:                   rng,
		})
		if err != nil {
			return nil, err
		}
		population[i] = candidate{id: idgen.NewNetworkID(), records: records}
	}
	return population, nil
}

// evolvePopulation implements spec.md §4.5 step 1: build a fresh
// generation of size populationSize by rotating the survivor list and
// mutating each new candidate once.
func evolvePopulation(survivors model.ScoredNodeRecords, populationSize int, catalog map[string]Mutation, rng *rand.Rand) ([]candidate, error) {
	population := make([]candidate, populationSize)
	for i := range population {
		parent := survivors[i%len(survivors)]
		gen := idgen.NewNodeIDGenerator(parent.Records.MaxNodeID())

		records, kinds, err := ApplyMutationsNamed(gen, model.CloneRecords(parent.Records), catalog, rng)
		if err != nil {
			return nil, err
		}
		population[i] = candidate{
			id:      idgen.NewNetworkID(),
			records: records,
			parent:  parent.NetworkID,
			kinds:   kinds,
		}
	}
	return population, nil
}

// evaluateGeneration implements spec.md §4.5 steps 2-5: materialise one
// cortex and score keeper per candidate, drive think cycles, tear down,
// and pair each network's id with its accumulated score and final record
// form.
func evaluateGeneration(ctx context.Context, opts Options, activations *protoio.ActivationFunctions, population []candidate) (model.ScoredNodeRecords, error) {
	type live struct {
		candidate candidate
		cortex    *agent.Cortex
		keeper    *scorekeeper.Keeper
		score     float64
		done      bool
	}

	networks := make([]*live, len(population))
	for i, c := range population {
		keeper := scorekeeper.Start(opts.Scenario.FitnessFunction())

		hookFns := make(map[string]protoio.OutputHookFunction, len(opts.Scenario.ActuatorSpecs()))
		for _, actuatorSpec := range opts.Scenario.ActuatorSpecs() {
			hookID := actuatorSpec.OutputHookID
			hookFns[hookID] = func(_ model.NetworkID, value float64) {
				keeper.Gather(hookID, value)
			}
		}

		syncFns := opts.Scenario.BindSyncFunctions(c.id)

		cortex, err := agent.Construct(ctx, c.id, c.records, activations, syncFns, hookFns)
		if err != nil {
			return nil, fmt.Errorf("construct network %s: %w", c.id, err)
		}
		networks[i] = &live{candidate: c, cortex: cortex, keeper: keeper}
	}

	for cycle := 0; cycle < opts.MaxThinkCycles; cycle++ {
		stopEarly := false

		drive := func(n *live) error {
			if n.done {
				return nil
			}
			if _, err := n.cortex.ThinkAndAct(ctx, opts.ThinkTimeout); err != nil {
				return err
			}
			score, directive, err := n.keeper.GetScore(ctx)
			if err != nil {
				return err
			}
			n.score += score
			if directive == model.DirectiveEnd {
				n.done = true
			}
			return nil
		}

		if opts.AsyncScoring {
			var wg sync.WaitGroup
			errs := make([]error, len(networks))
			for i, n := range networks {
				wg.Add(1)
				go func(i int, n *live) {
					defer wg.Done()
					errs[i] = drive(n)
				}(i, n)
			}
			wg.Wait()
			for _, err := range errs {
				if err != nil {
					return nil, err
				}
			}
		} else {
			for _, n := range networks {
				if err := drive(n); err != nil {
					return nil, err
				}
			}
		}

		for _, n := range networks {
			if n.done {
				stopEarly = true
				break
			}
		}
		if stopEarly {
			break
		}
	}

	scored := make(model.ScoredNodeRecords, len(networks))
	for i, n := range networks {
		finalRecords, err := n.cortex.KillCortex(ctx)
		if err != nil {
			return nil, fmt.Errorf("tear down network %s: %w", n.candidate.id, err)
		}
		if err := n.keeper.KillScoreKeeper(ctx); err != nil {
			return nil, fmt.Errorf("tear down score keeper %s: %w", n.candidate.id, err)
		}
		scored[i] = model.ScoredNetwork{NetworkID: n.candidate.id, Score: n.score, Records: finalRecords}
	}
	return scored, nil
}

func syncFunctionIDs(scenario scape.Scenario) []string {
	ids := make([]string, 0, len(scenario.SensorSpecs()))
	for _, spec := range scenario.SensorSpecs() {
		ids = append(ids, spec.SyncFunctionID)
	}
	return ids
}

func outputHookIDs(scenario scape.Scenario) []string {
	ids := make([]string, 0, len(scenario.ActuatorSpecs()))
	for _, spec := range scenario.ActuatorSpecs() {
		ids = append(ids, spec.OutputHookID)
	}
	return ids
}
