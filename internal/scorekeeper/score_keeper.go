// Package scorekeeper implements the per-network score accumulator
// (spec.md §4.4): a small mailbox actor that gathers one value per output
// hook firing and reduces them to a single fitness score on demand.
package scorekeeper

import (
	"context"
	"errors"
	"fmt"

	"protogonos/internal/model"
)

var ErrKeeperStopped = errors.New("score keeper stopped")

// FitnessFunction reduces one think cycle's gathered output-hook values
// into a score and a continuation directive. Buffered values are keyed by
// output_hook_id so a fitness function can weigh different actuators
// differently.
type FitnessFunction func(gathered map[string][]float64) (score float64, directive model.FitnessDirective)

type gatherMsg struct {
	OutputHookID string
	Value        float64
}

type getScoreMsg struct {
	Reply chan getScoreReply
}

type getScoreReply struct {
	Score     float64
	Directive model.FitnessDirective
}

type killMsg struct {
	Reply chan struct{}
}

// Keeper is a live score-keeper actor for one network.
type Keeper struct {
	mailbox chan any
}

// Start launches a score keeper bound to fitnessFn. One Keeper serves
// exactly one network for exactly one generation's evaluation.
func Start(fitnessFn FitnessFunction) *Keeper {
	k := &Keeper{mailbox: make(chan any, 256)}
	go k.run(fitnessFn)
	return k
}

func (k *Keeper) run(fitnessFn FitnessFunction) {
	gathered := make(map[string][]float64)
	for msg := range k.mailbox {
		switch m := msg.(type) {
		case gatherMsg:
			gathered[m.OutputHookID] = append(gathered[m.OutputHookID], m.Value)
		case getScoreMsg:
			score, directive := fitnessFn(gathered)
			m.Reply <- getScoreReply{Score: score, Directive: directive}
			gathered = make(map[string][]float64)
		case killMsg:
			close(m.Reply)
			return
		}
	}
}

// Gather records one output hook's value for the current think cycle. It
// is meant to be bound as an io.OutputHookFunction closure: the scheduler
// wraps a network's real output hooks so every actuator firing also
// reports here.
func (k *Keeper) Gather(outputHookID string, value float64) {
	k.mailbox <- gatherMsg{OutputHookID: outputHookID, Value: value}
}

// GetScore invokes the fitness function over everything gathered since the
// last GetScore (or since Start), returns the resulting score and
// directive, and clears the buffer for the next cycle.
func (k *Keeper) GetScore(ctx context.Context) (float64, model.FitnessDirective, error) {
	reply := make(chan getScoreReply, 1)
	k.mailbox <- getScoreMsg{Reply: reply}
	select {
	case r := <-reply:
		return r.Score, r.Directive, nil
	case <-ctx.Done():
		return 0, "", fmt.Errorf("get score: %w", ctx.Err())
	}
}

// KillScoreKeeper stops the actor. Further calls to Gather or GetScore
// after Kill has returned will block forever; callers must not use a
// Keeper past Kill.
func (k *Keeper) KillScoreKeeper(ctx context.Context) error {
	reply := make(chan struct{})
	k.mailbox <- killMsg{Reply: reply}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("kill score keeper: %w", ctx.Err())
	}
}
