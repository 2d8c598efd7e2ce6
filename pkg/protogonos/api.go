// Package protogonos is the public facade over the evolution engine: a
// Client that owns a persistence backend and drives generation-scheduler
// or live-evolver runs against a caller-supplied scape.Scenario, recording
// every generation's scored population and lineage as it goes.
package protogonos

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"protogonos/internal/evo"
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
	"protogonos/internal/scape"
	"protogonos/internal/storage"
)

const defaultSQLitePath = "protogonos.db"

// Options configures a Client's persistence backend.
type Options struct {
	StoreKind  string // "memory" (default) or "sqlite"
	SQLitePath string
}

// Client is the entry point a caller embeds to run evolution and query
// what it persisted.
type Client struct {
	store storage.Store
}

// New opens (or creates) the configured store and returns a ready Client.
func New(opts Options) (*Client, error) {
	sqlitePath := opts.SQLitePath
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}
	store, err := storage.NewStore(opts.StoreKind, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &Client{store: store}, nil
}

// Close releases the underlying store, if it supports closing.
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest configures one evolveForXGenerations call (spec.md §4.5).
type RunRequest struct {
	RunID              string
	Scenario           scape.Scenario
	PopulationSize     int
	Generations        int
	MaxThinkCycles     int
	SelectionDivisor   int
	ThinkTimeout       time.Duration
	AsyncScoring       bool
	InitialWeightRange float64
	Seed               int64

	// Progress, when set, is called once per completed generation in
	// addition to the persistence Run already performs — the CLI's
	// --watch dashboard hangs off this.
	Progress func(model.GenerationDiagnostics, model.ScoredNodeRecords)
}

// RunSummary is what the caller gets back after a Run completes: the final
// scored population plus the per-generation diagnostics gathered along
// the way (already persisted under RunID).
type RunSummary struct {
	RunID       string
	Final       model.ScoredNodeRecords
	Diagnostics []model.GenerationDiagnostics
}

// Run drives one full generation-scheduler run to completion, persisting
// every generation's scored population and lineage as it's produced.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scenario == nil {
		return RunSummary{}, errors.New("run request requires a scenario")
	}
	runID := req.RunID
	if runID == "" {
		return RunSummary{}, errors.New("run request requires a run id")
	}

	rng := rand.New(rand.NewSource(seedOrNow(req.Seed)))
	var diagnostics []model.GenerationDiagnostics
	var saveErr error

	opts := evo.Options{
		Scenario:           req.Scenario,
		PopulationSize:     req.PopulationSize,
		Generations:        req.Generations,
		MaxThinkCycles:     req.MaxThinkCycles,
		SelectionDivisor:   req.SelectionDivisor,
		ThinkTimeout:       req.ThinkTimeout,
		AsyncScoring:       req.AsyncScoring,
		Activations:        protoio.BuiltinActivationFunctions(),
		InitialWeightRange: req.InitialWeightRange,
		RNG:                rng,
		OnGeneration: func(d model.GenerationDiagnostics, scored model.ScoredNodeRecords) {
			diagnostics = append(diagnostics, d)
			if err := c.store.SaveGeneration(ctx, runID, d.Generation, scored); err != nil && saveErr == nil {
				saveErr = err
			}
			if req.Progress != nil {
				req.Progress(d, scored)
			}
		},
	}

	result, err := evo.EvolveForXGenerations(ctx, opts)
	if err != nil {
		return RunSummary{}, err
	}
	if saveErr != nil {
		return RunSummary{}, fmt.Errorf("save generation checkpoint: %w", saveErr)
	}
	if err := c.store.SaveLineage(ctx, runID, result.Lineage); err != nil {
		return RunSummary{}, fmt.Errorf("save lineage: %w", err)
	}

	return RunSummary{RunID: runID, Final: result.Final, Diagnostics: diagnostics}, nil
}

// LiveRequest configures one live (online) evolution run (spec.md §4.6).
type LiveRequest struct {
	Scenario           scape.Scenario
	PopulationSize     int
	MaxThinkCycles     int
	ThinkTimeout       time.Duration
	InitialWeightRange float64
	Seed               int64
	Selector           evo.Selector
	OnGeneration       func(model.GenerationDiagnostics, model.ScoredNodeRecords)
}

// NewLiveEvolver constructs a LiveEvolver ready for a caller to step
// synchronously via SynchronizeActiveCortex. The caller owns its lifecycle
// and is responsible for calling EndEvolution and persisting the result.
func (c *Client) NewLiveEvolver(ctx context.Context, req LiveRequest) (*evo.LiveEvolver, error) {
	if req.Scenario == nil {
		return nil, errors.New("live request requires a scenario")
	}
	return evo.NewLiveEvolver(ctx, evo.LiveOptions{
		Scenario:           req.Scenario,
		PopulationSize:     req.PopulationSize,
		MaxThinkCycles:     req.MaxThinkCycles,
		ThinkTimeout:       req.ThinkTimeout,
		Activations:        protoio.BuiltinActivationFunctions(),
		InitialWeightRange: req.InitialWeightRange,
		RNG:                rand.New(rand.NewSource(seedOrNow(req.Seed))),
		Selector:           req.Selector,
		OnGeneration:       req.OnGeneration,
	})
}

// SaveLiveResult persists a completed live run's final scored population
// and lineage the way Run does for the scheduled variant.
func (c *Client) SaveLiveResult(ctx context.Context, runID string, generation int, scored model.ScoredNodeRecords, lineage []model.LineageRecord) error {
	if runID == "" {
		return errors.New("run id is required")
	}
	if err := c.store.SaveGeneration(ctx, runID, generation, scored); err != nil {
		return fmt.Errorf("save generation checkpoint: %w", err)
	}
	return c.store.SaveLineage(ctx, runID, lineage)
}

// Generation returns one stored generation's scored population.
func (c *Client) Generation(ctx context.Context, runID string, generation int) (model.ScoredNodeRecords, bool, error) {
	return c.store.GetGeneration(ctx, runID, generation)
}

// Lineage returns a run's full recorded ancestry.
func (c *Client) Lineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error) {
	return c.store.GetLineage(ctx, runID)
}

// Diagnostics re-derives GenerationDiagnostics for every generation a run
// has persisted, from generation 0 up to the first missing index.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	var out []model.GenerationDiagnostics
	for gen := 0; ; gen++ {
		scored, ok, err := c.store.GetGeneration(ctx, runID, gen)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, model.SummarizeGeneration(gen, scored))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no generations stored for run id: %s", runID)
	}
	return out, nil
}

// ScenarioByName resolves one of the engine's built-in benchmark scenarios
// by name, for callers (chiefly the CLI) that select a scenario from a
// flag rather than constructing one in code.
func ScenarioByName(name string) (scape.Scenario, error) {
	switch name {
	case "", "xor":
		return scape.XOR{}, nil
	default:
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
