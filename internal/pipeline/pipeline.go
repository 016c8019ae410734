package pipeline

import (
	"context"
	"errors"
	"fmt"

	"jobscout/internal/adzuna"
	"jobscout/internal/ai"
	"jobscout/internal/contacts"
	"jobscout/internal/job"

	"go.uber.org/zap"
)

// ErrDeclined is returned when the operator answers no to the pre-persist
// confirmation. Nothing has been evaluated or persisted at that point.
var ErrDeclined = errors.New("persistence declined")

// Reason classifies why a posting was skipped.
type Reason string

const (
	ReasonNormalization       Reason = "normalization"
	ReasonEvaluation          Reason = "evaluation"
	ReasonPersistenceConflict Reason = "persistence_conflict"
)

// Skip records one posting dropped from the batch.
type Skip struct {
	ID      string
	Company string
	Reason  Reason
	Err     error
}

// Step describes the outcome of one pipeline stage.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Store is the persistence collaborator. Append is called at most once per
// unique record id per run and must report job.ErrDuplicateID on conflict.
type Store interface {
	Append(record *job.Record) error
}

// Deps aggregates the pipeline collaborators.
type Deps struct {
	Store     Store
	Evaluator ai.Evaluator
	Directory *contacts.Directory
	Delay     DelayPolicy
	Logger    *zap.Logger
	// Confirm, when set, is asked once after dedup and before any AI spend
	// whether the run should proceed. Only consulted when persisting.
	Confirm func(count int) (bool, error)
}

// Options carries per-run settings.
type Options struct {
	// Threshold is the minimum contact match score in [0,100].
	Threshold int
	// DryRun enriches records but never touches the store.
	DryRun bool
	// Profile is the applicant profile handed to the evaluator.
	Profile *ai.Profile
}

// Result is the outcome of a run. Records holds every fully enriched record;
// when DryRun was false each of them was also appended to the store.
type Result struct {
	Records   job.Records
	Skips     []Skip
	Persisted int
}

// SkipsByReason breaks the skip list down for the end-of-run summary.
func (r *Result) SkipsByReason() map[Reason]int {
	counts := make(map[Reason]int)
	for _, skip := range r.Skips {
		counts[skip.Reason]++
	}
	return counts
}

// Run drives one batch through normalize, dedup, evaluate, contact match and
// persist. Per-record failures land in the skip list; only run-level
// failures (store unreachable, context cancelled) abort.
func Run(ctx context.Context, postings []*adzuna.Posting, knownIDs map[string]struct{}, deps Deps, opts Options) (*Result, error) {
	if err := validate(deps, opts); err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	delay := deps.Delay
	if delay == nil {
		delay = NewFixedDelay(0)
	}

	result := &Result{}

	records := make(job.Records, 0, len(postings))
	for _, posting := range postings {
		record, err := job.Normalize(posting)
		if err != nil {
			result.Skips = append(result.Skips, Skip{
				ID:      posting.ID,
				Company: posting.Company.DisplayName,
				Reason:  ReasonNormalization,
				Err:     err,
			})
			log.Warn("dropping unnormalizable posting", zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	logStep(log, "normalize", Step{
		Initial: len(postings),
		Dropped: len(postings) - records.Len(),
		Left:    records.Len(),
	})

	fresh := job.FilterNew(records, knownIDs)
	logStep(log, "dedup", Step{
		Initial: records.Len(),
		Dropped: records.Len() - fresh.Len(),
		Left:    fresh.Len(),
	})

	if fresh.Len() == 0 {
		return result, nil
	}

	if !opts.DryRun && deps.Confirm != nil {
		proceed, err := deps.Confirm(fresh.Len())
		if err != nil {
			return nil, fmt.Errorf("confirmation: %w", err)
		}
		if !proceed {
			return result, ErrDeclined
		}
	}

	for i, record := range fresh {
		if i > 0 {
			if err := delay.Wait(ctx); err != nil {
				return result, err
			}
		}

		evaluation, err := deps.Evaluator.Evaluate(ctx, record, opts.Profile)
		if err != nil {
			result.Skips = append(result.Skips, Skip{
				ID:      record.ID,
				Company: record.Company,
				Reason:  ReasonEvaluation,
				Err:     err,
			})
			log.Warn("AI evaluation failed",
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
			continue
		}

		enriched := record.Clone()
		applyEvaluation(enriched, evaluation)

		if match := deps.Directory.Match(enriched.Company, opts.Threshold); match != nil {
			enriched.MatchedContact = match
			log.Info("matched contact",
				zap.String("record_id", enriched.ID),
				zap.String("company", enriched.Company),
				zap.String("contact", match.Name),
				zap.Int("score", match.Score),
			)
		}

		if !opts.DryRun {
			if err := deps.Store.Append(enriched); err != nil {
				if errors.Is(err, job.ErrDuplicateID) {
					result.Skips = append(result.Skips, Skip{
						ID:      enriched.ID,
						Company: enriched.Company,
						Reason:  ReasonPersistenceConflict,
						Err:     err,
					})
					log.Warn("record already persisted", zap.String("record_id", enriched.ID))
					continue
				}
				return result, fmt.Errorf("append record %s: %w", enriched.ID, err)
			}
			result.Persisted++
		}

		log.Info("record enriched",
			zap.String("record_id", enriched.ID),
			zap.Int("fit_score", evaluation.FitScore),
			zap.Bool("repaired", evaluation.Repaired),
		)

		result.Records = append(result.Records, enriched)
	}

	logStep(log, "enrich", Step{
		Initial: fresh.Len(),
		Dropped: fresh.Len() - result.Records.Len(),
		Left:    result.Records.Len(),
	})

	return result, nil
}

func validate(deps Deps, opts Options) error {
	if deps.Evaluator == nil {
		return fmt.Errorf("evaluator is required")
	}
	if deps.Directory == nil || deps.Directory.Len() == 0 {
		return contacts.ErrEmptyDirectory
	}
	if deps.Store == nil && !opts.DryRun {
		return fmt.Errorf("store is required unless running dry")
	}
	if opts.Profile == nil {
		return fmt.Errorf("applicant profile is required")
	}
	if opts.Threshold < 0 || opts.Threshold > 100 {
		return fmt.Errorf("match threshold must be in [0,100], got %d", opts.Threshold)
	}
	return nil
}

func applyEvaluation(record *job.Record, evaluation *ai.Evaluation) {
	score := evaluation.FitScore
	record.FitScore = &score
	record.FitNotes = evaluation.FitNotes
	record.CompanySummary = evaluation.CompanySummary
	record.JobSummary = evaluation.JobSummary
}

func logStep(log *zap.Logger, name string, step Step) {
	log.Info("pipeline step",
		zap.String("name", name),
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)
}
