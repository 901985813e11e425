package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStep is returned for step names outside the fixed catalog.
	ErrUnknownStep = errors.New("unknown step")

	// ErrMissingItem is returned when a per-item step is invoked without an
	// item name.
	ErrMissingItem = errors.New("step requires an item name")
)

// PreconditionError reports a step invoked before a required context key was
// present. The caller must supply the missing step's output first; the core
// never retries.
type PreconditionError struct {
	Step    StepName
	Missing Key
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("step %s: required context key %q is missing", e.Step, e.Missing)
}

// GenerationError reports a failed backend call for one step. Steps are pure
// functions of their context, so the caller may safely re-invoke the same
// step after the underlying problem is fixed.
type GenerationError struct {
	Step StepName
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("step %s: generation failed: %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
