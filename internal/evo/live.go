package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"protogonos/internal/agent"
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
	"protogonos/internal/scape"
	"protogonos/internal/scorekeeper"
)

// ErrLiveEvolverStopped is returned by any LiveEvolver method once
// EndEvolution has run.
var ErrLiveEvolverStopped = errors.New("live evolver is stopped")

// Selector picks the next generation's survivors from a scored population,
// the caller-supplied fit-population selector spec.md §4.6 names.
type Selector func(model.ScoredNodeRecords) model.ScoredNodeRecords

// LiveOptions configures a LiveEvolver: the same evolution properties as
// Options, minus Generations (the live variant runs until EndEvolution),
// plus the selector spec.md §4.6's generation-fill step invokes.
type LiveOptions struct {
	Scenario           scape.Scenario
	PopulationSize     int
	MaxThinkCycles     int
	ThinkTimeout       time.Duration
	Activations        *protoio.ActivationFunctions
	InitialWeightRange float64
	RNG                *rand.Rand
	Selector           Selector

	OnGeneration func(model.GenerationDiagnostics, model.ScoredNodeRecords)
}

// LiveEvolver drives spec.md §4.6's online variant: exactly one cortex
// alive at a time, one SynchronizeActiveCortex call per think cycle,
// evolving in place once a generation's scored buffer fills.
type LiveEvolver struct {
	opts    LiveOptions
	catalog map[string]Mutation
	rng     *rand.Rand

	activations *protoio.ActivationFunctions

	generation int
	population []candidate
	next       int

	active       *activeCortex
	scoredBuffer model.ScoredNodeRecords
	lineage      []model.LineageRecord

	stopped bool
}

type activeCortex struct {
	candidate  candidate
	cortex     *agent.Cortex
	keeper     *scorekeeper.Keeper
	score      float64
	cycleCount int
}

// NewLiveEvolver builds a LiveEvolver and starts the first candidate's
// cortex so the caller can immediately pump SynchronizeActiveCortex.
func NewLiveEvolver(ctx context.Context, opts LiveOptions) (*LiveEvolver, error) {
	if opts.Scenario == nil {
		return nil, fmt.Errorf("live evolver: scenario is required")
	}
	if opts.PopulationSize < 1 {
		return nil, fmt.Errorf("live evolver: population size must be at least 1")
	}
	if opts.Selector == nil {
		opts.Selector = func(scored model.ScoredNodeRecords) model.ScoredNodeRecords {
			return SelectSurvivors(scored, 2)
		}
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	activations := opts.Activations
	if activations == nil {
		activations = protoio.BuiltinActivationFunctions()
	}

	e := &LiveEvolver{
		opts:        opts,
		catalog:     NewCatalog(syncFunctionIDs(opts.Scenario), outputHookIDs(opts.Scenario)),
		rng:         rng,
		activations: activations,
	}

	population, err := seedPopulation(Options{
		Scenario:           opts.Scenario,
		PopulationSize:     opts.PopulationSize,
		Activations:        activations,
		InitialWeightRange: opts.InitialWeightRange,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("live evolver: seed generation 0: %w", err)
	}
	e.population = population

	if err := e.startNext(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *LiveEvolver) startNext(ctx context.Context) error {
	c := e.population[e.next]
	e.next++

	keeper := scorekeeper.Start(e.opts.Scenario.FitnessFunction())
	hookFns := make(map[string]protoio.OutputHookFunction, len(e.opts.Scenario.ActuatorSpecs()))
	for _, actuatorSpec := range e.opts.Scenario.ActuatorSpecs() {
		hookID := actuatorSpec.OutputHookID
		hookFns[hookID] = func(_ model.NetworkID, value float64) {
			keeper.Gather(hookID, value)
		}
	}
	syncFns := e.opts.Scenario.BindSyncFunctions(c.id)

	cortex, err := agent.Construct(ctx, c.id, c.records, e.activations, syncFns, hookFns)
	if err != nil {
		return fmt.Errorf("live evolver: construct network %s: %w", c.id, err)
	}
	e.active = &activeCortex{candidate: c, cortex: cortex, keeper: keeper}
	return nil
}

// SynchronizeActiveCortex drives one ThinkAndAct wave on the current
// cortex, accumulates its score, and advances the live-evolution state
// machine: finishing the candidate and starting the next one once the
// fitness directive says end, or once the cycle cap is reached.
func (e *LiveEvolver) SynchronizeActiveCortex(ctx context.Context) error {
	if e.stopped {
		return ErrLiveEvolverStopped
	}

	active := e.active
	if _, err := active.cortex.ThinkAndAct(ctx, e.opts.ThinkTimeout); err != nil {
		return err
	}
	score, directive, err := active.keeper.GetScore(ctx)
	if err != nil {
		return err
	}
	active.score += score
	active.cycleCount++

	atCap := e.opts.MaxThinkCycles > 0 && active.cycleCount >= e.opts.MaxThinkCycles
	if directive != model.DirectiveEnd && !atCap {
		return nil
	}

	if err := e.finishActive(ctx); err != nil {
		return err
	}

	if e.next < len(e.population) {
		return e.startNext(ctx)
	}

	return e.advanceGeneration(ctx)
}

func (e *LiveEvolver) finishActive(ctx context.Context) error {
	active := e.active
	finalRecords, err := active.cortex.KillCortex(ctx)
	if err != nil {
		return fmt.Errorf("live evolver: tear down network %s: %w", active.candidate.id, err)
	}
	if err := active.keeper.KillScoreKeeper(ctx); err != nil {
		return fmt.Errorf("live evolver: tear down score keeper %s: %w", active.candidate.id, err)
	}

	e.scoredBuffer = append(e.scoredBuffer, model.ScoredNetwork{
		NetworkID: active.candidate.id,
		Score:     active.score,
		Records:   finalRecords,
	})
	e.lineage = append(e.lineage, model.LineageRecord{
		Generation:      e.generation,
		NetworkID:       active.candidate.id,
		ParentNetworkID: active.candidate.parent,
		Score:           active.score,
		MutationApplied: strings.Join(active.candidate.kinds, ","),
	})
	e.active = nil
	return nil
}

// advanceGeneration implements spec.md §4.6's fill-the-buffer step: once
// every candidate in the current generation has been scored, select
// survivors and evolve a fresh population of the same size.
func (e *LiveEvolver) advanceGeneration(ctx context.Context) error {
	diagnostics := model.SummarizeGeneration(e.generation, e.scoredBuffer)
	if e.opts.OnGeneration != nil {
		e.opts.OnGeneration(diagnostics, e.scoredBuffer)
	}

	survivors := e.opts.Selector(e.scoredBuffer)
	if len(survivors) == 0 {
		return fmt.Errorf("live evolver: generation %d produced no survivors", e.generation)
	}

	population, err := evolvePopulation(survivors, e.opts.PopulationSize, e.catalog, e.rng)
	if err != nil {
		return fmt.Errorf("live evolver: generation %d: evolve population: %w", e.generation, err)
	}

	e.generation++
	e.population = population
	e.next = 0
	e.scoredBuffer = nil

	return e.startNext(ctx)
}

// EndEvolution kills the currently active cortex and returns every scored
// candidate from the in-progress generation, then stops the evolver.
func (e *LiveEvolver) EndEvolution(ctx context.Context) (model.ScoredNodeRecords, []model.LineageRecord, error) {
	if e.stopped {
		return nil, nil, ErrLiveEvolverStopped
	}
	if e.active != nil {
		if err := e.finishActive(ctx); err != nil {
			return nil, nil, err
		}
	}
	e.stopped = true
	return e.scoredBuffer, e.lineage, nil
}

// Generation reports the zero-based index of the generation currently in
// progress.
func (e *LiveEvolver) Generation() int { return e.generation }
