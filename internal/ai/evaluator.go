package ai

import (
	"context"
	"fmt"

	"jobscout/internal/job"
)

// Evaluation is the validated structured output of one AI call.
type Evaluation struct {
	FitScore       int
	FitNotes       string
	CompanySummary string
	JobSummary     string
	// Repaired is true when the raw response only parsed after the single
	// fence-stripping repair pass.
	Repaired bool
	Raw      string
}

// Evaluator produces a fit evaluation for a single posting. Implementations
// make exactly one outbound call per invocation and must not mutate the
// record.
type Evaluator interface {
	Evaluate(ctx context.Context, record *job.Record, profile *Profile) (*Evaluation, error)
}

// EvaluationError is returned when the provider response stays unparsable or
// invalid after the repair attempt. Raw keeps the original response for
// diagnostics.
type EvaluationError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai evaluation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ai evaluation: %s", e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
