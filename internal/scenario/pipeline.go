package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorekeep/scenarist/internal/provider"
)

// Pipeline sequences the step catalog over one model handle. A single run is
// strictly sequential: no step starts before its predecessors' outputs are
// fully materialized. Concurrency exists only across independent runs, each
// with its own context.
type Pipeline struct {
	model provider.Model
}

// NewPipeline creates a pipeline over the given model handle.
func NewPipeline(model provider.Model) *Pipeline {
	return &Pipeline{model: model}
}

// Event is one progress notification from an auto-mode run. Streamed steps
// emit a sequence of Fragment events followed by one Done event carrying the
// full cleaned text and the context keys it updated. An Err event is always
// terminal; the channel closes after it.
type Event struct {
	Step     StepName
	Item     string
	Fragment string
	Done     bool
	Text     string
	Keys     []Key
	Err      error
}

// RunOptions controls the optional parts of an auto run.
type RunOptions struct {
	// Revise runs the coherence-driven scene rewrite after the report.
	// Single pass; the pipeline never loops check-and-revise.
	Revise bool
}

// Result is the final state of a completed auto run.
type Result struct {
	Context  Context
	Title    string
	Document string
}

// RunStep executes one named step against a context snapshot and returns its
// cleaned output. It validates the step's required keys first and fails with
// a PreconditionError naming the missing key. The caller merges the output
// (see Merge) and owns persistence of the context between calls; re-invoking
// the same step after a failure is always safe.
func (p *Pipeline) RunStep(ctx context.Context, step StepName, in Inputs, gctx Context, item string) (string, error) {
	s, ok := Lookup(step)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	return s.run(ctx, p.model, in, gctx, item)
}

// Run executes the whole fixed step sequence and streams progress events.
// The returned channel is closed when the run completes, fails, or the
// context is cancelled. A caller that stops consuming events (after
// cancelling ctx) ends the run early; no cancel signal is guaranteed to
// reach the backend.
func (p *Pipeline) Run(ctx context.Context, in Inputs, opts RunOptions) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		gctx := make(Context)

		emit := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		run := func(step StepName, item string) bool {
			out, err := p.execute(ctx, step, in, gctx, item, emit)
			if err != nil {
				emit(Event{Step: step, Item: item, Err: err})
				return false
			}
			keys := Merge(gctx, step, out)
			return emit(Event{Step: step, Item: item, Done: true, Text: out, Keys: keys})
		}

		for _, step := range []StepName{StepHooks, StepAntagonist, StepWorldContext, StepSynopsis, StepListItems} {
			if !run(step, "") {
				return
			}
		}

		for _, npc := range gctx.List(KeyNPCsRaw) {
			if !run(StepDetailNPC, npc) {
				return
			}
		}

		for _, loc := range gctx.List(KeyLocationsRaw) {
			if !run(StepDetailLocation, loc) {
				return
			}
		}

		if !run(StepOutlineScenes, "") {
			return
		}

		for _, scene := range gctx.List(KeyScenesRaw) {
			if !run(StepDetailScene, scene) {
				return
			}
		}

		if !run(StepCoherenceReport, "") {
			return
		}

		if opts.Revise {
			if !run(StepReviseScenes, "") {
				return
			}
		}

		for _, step := range []StepName{StepTitle, StepCompile} {
			if !run(step, "") {
				return
			}
		}
	}()

	return events
}

// Collect drains an auto run's event stream, discarding fragments, and
// returns the final result. Useful for callers that do not display progress.
func Collect(events <-chan Event) (Result, error) {
	gctx := make(Context)
	for e := range events {
		if e.Err != nil {
			return Result{}, e.Err
		}
		if e.Done {
			Merge(gctx, e.Step, e.Text)
		}
	}
	return Result{
		Context:  gctx,
		Title:    gctx.Text(KeyTitle),
		Document: gctx.Text(KeyDocument),
	}, nil
}

// execute runs one step invocation, relaying stream fragments through emit
// for prose steps, and returns the cleaned full output.
func (p *Pipeline) execute(ctx context.Context, step StepName, in Inputs, gctx Context, item string, emit func(Event) bool) (string, error) {
	s, ok := Lookup(step)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	if s.OneShot {
		return s.run(ctx, p.model, in, gctx, item)
	}

	text, err := s.Prompt(in, gctx, item)
	if err != nil {
		return "", err
	}

	stream, err := p.model.Stream(ctx, []provider.Turn{{Role: provider.RoleUser, Content: text}})
	if err != nil {
		return "", &GenerationError{Step: step, Err: err}
	}

	// Later steps need the fully materialized text, so the stream is always
	// drained to completion here even as fragments are relayed.
	var b strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			return "", &GenerationError{Step: step, Err: chunk.Err}
		}
		b.WriteString(chunk.Text)
		if !emit(Event{Step: step, Item: item, Fragment: chunk.Text}) {
			return "", ctx.Err()
		}
	}

	return CleanOutput(b.String()), nil
}
