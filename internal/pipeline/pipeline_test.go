package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobscout/internal/adzuna"
	"jobscout/internal/ai"
	"jobscout/internal/contacts"
	"jobscout/internal/job"

	"go.uber.org/zap"
)

type stubEvaluator struct {
	calls []string
	fail  map[string]error
}

func (s *stubEvaluator) Evaluate(_ context.Context, record *job.Record, _ *ai.Profile) (*ai.Evaluation, error) {
	s.calls = append(s.calls, record.ID)
	if err, ok := s.fail[record.ID]; ok {
		return nil, err
	}
	return &ai.Evaluation{
		FitScore:       8,
		FitNotes:       "Solid overlap",
		CompanySummary: "Mid-size SaaS",
		JobSummary:     "Owns ingestion",
	}, nil
}

type stubStore struct {
	appended []*job.Record
	failWith map[string]error
}

func (s *stubStore) Append(record *job.Record) error {
	if err, ok := s.failWith[record.ID]; ok {
		return err
	}
	s.appended = append(s.appended, record)
	return nil
}

func posting(id, company string) *adzuna.Posting {
	p := &adzuna.Posting{ID: id, Title: "Data Engineer"}
	p.Company.DisplayName = company
	return p
}

func testDeps(t *testing.T, store Store, evaluator ai.Evaluator, names ...string) Deps {
	t.Helper()
	if len(names) == 0 {
		names = []string{"Acme"}
	}
	directory, err := contacts.NewDirectory(names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return Deps{
		Store:     store,
		Evaluator: evaluator,
		Directory: directory,
		Logger:    zap.NewNop(),
	}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	profile, err := ai.NewProfile(map[string]any{"skills": []string{"Go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return Options{Threshold: 70, Profile: profile}
}

func TestRunScenario(t *testing.T) {
	// A1 is already persisted; only B2 should be evaluated and appended.
	postings := []*adzuna.Posting{
		posting("A1", "Initech"),
		posting("B2", "Acme Inc"),
	}
	known := map[string]struct{}{"A1": {}}

	store := &stubStore{}
	evaluator := &stubEvaluator{}
	deps := testDeps(t, store, evaluator)

	result, err := Run(context.Background(), postings, known, deps, testOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(evaluator.calls) != 1 || evaluator.calls[0] != "B2" {
		t.Fatalf("expected only B2 evaluated, got %v", evaluator.calls)
	}

	if len(store.appended) != 1 || store.appended[0].ID != "B2" {
		t.Fatalf("expected only B2 appended, got %d records", len(store.appended))
	}

	if result.Persisted != 1 {
		t.Fatalf("expected 1 persisted, got %d", result.Persisted)
	}

	record := store.appended[0]
	if record.MatchedContact == nil {
		t.Fatal("expected a matched contact")
	}
	if record.MatchedContact.Name != "Acme" || record.MatchedContact.Score < 70 {
		t.Fatalf("unexpected match: %+v", record.MatchedContact)
	}

	if record.FitScore == nil || *record.FitScore != 8 {
		t.Fatalf("expected fit score on persisted record, got %+v", record.FitScore)
	}
}

func TestRunDryRunNeverAppends(t *testing.T) {
	store := &stubStore{}
	evaluator := &stubEvaluator{}
	deps := testDeps(t, store, evaluator)

	opts := testOptions(t)
	opts.DryRun = true

	result, err := Run(context.Background(), []*adzuna.Posting{posting("B2", "Acme")}, nil, deps, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.appended) != 0 {
		t.Fatalf("dry run touched the store: %d appends", len(store.appended))
	}

	if result.Records.Len() != 1 {
		t.Fatalf("expected enriched record in dry run, got %d", result.Records.Len())
	}

	if result.Records[0].FitScore == nil {
		t.Fatal("expected enrichment in dry run")
	}
}

func TestRunDryRunMatchesNormalRun(t *testing.T) {
	postings := []*adzuna.Posting{posting("B2", "Acme")}

	dryStore := &stubStore{}
	dryDeps := testDeps(t, dryStore, &stubEvaluator{})
	dryOpts := testOptions(t)
	dryOpts.DryRun = true

	dry, err := Run(context.Background(), postings, nil, dryDeps, dryOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wetStore := &stubStore{}
	wetDeps := testDeps(t, wetStore, &stubEvaluator{})

	wet, err := Run(context.Background(), postings, nil, wetDeps, testOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dry.Records.Len() != wet.Records.Len() {
		t.Fatalf("dry and normal run disagree: %d vs %d", dry.Records.Len(), wet.Records.Len())
	}

	if *dry.Records[0].FitScore != *wet.Records[0].FitScore {
		t.Fatal("dry and normal run produced different enrichment")
	}
}

func TestRunSkipsFailedEvaluation(t *testing.T) {
	store := &stubStore{}
	evaluator := &stubEvaluator{fail: map[string]error{
		"B2": &ai.EvaluationError{Reason: "unparsable response", Raw: "garbage"},
	}}
	deps := testDeps(t, store, evaluator)

	postings := []*adzuna.Posting{posting("B2", "Acme"), posting("C3", "Globex")}

	result, err := Run(context.Background(), postings, nil, deps, testOptions(t))
	if err != nil {
		t.Fatalf("expected batch to continue, got %v", err)
	}

	// The failed record reaches neither the store nor the result set.
	if len(store.appended) != 1 || store.appended[0].ID != "C3" {
		t.Fatalf("unexpected appends: %v", store.appended)
	}

	if result.Records.FindByID("B2") != nil {
		t.Fatal("failed record leaked into the result set")
	}

	if len(result.Skips) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(result.Skips))
	}

	skip := result.Skips[0]
	if skip.ID != "B2" || skip.Reason != ReasonEvaluation {
		t.Fatalf("unexpected skip: %+v", skip)
	}

	var evalErr *ai.EvaluationError
	if !errors.As(skip.Err, &evalErr) || evalErr.Raw != "garbage" {
		t.Fatalf("expected raw response retained in skip, got %v", skip.Err)
	}
}

func TestRunSkipsUnnormalizablePostings(t *testing.T) {
	store := &stubStore{}
	deps := testDeps(t, store, &stubEvaluator{})

	postings := []*adzuna.Posting{posting("", "Nameless"), posting("B2", "Acme")}

	result, err := Run(context.Background(), postings, nil, deps, testOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Skips) != 1 || result.Skips[0].Reason != ReasonNormalization {
		t.Fatalf("unexpected skips: %+v", result.Skips)
	}

	if result.Records.Len() != 1 {
		t.Fatalf("expected 1 surviving record, got %d", result.Records.Len())
	}
}

func TestRunTreatsConflictAsSkip(t *testing.T) {
	store := &stubStore{failWith: map[string]error{
		"B2": fmt.Errorf("append record B2: %w", job.ErrDuplicateID),
	}}
	deps := testDeps(t, store, &stubEvaluator{})

	postings := []*adzuna.Posting{posting("B2", "Acme"), posting("C3", "Globex")}

	result, err := Run(context.Background(), postings, nil, deps, testOptions(t))
	if err != nil {
		t.Fatalf("expected conflict to be non-fatal, got %v", err)
	}

	if len(result.Skips) != 1 || result.Skips[0].Reason != ReasonPersistenceConflict {
		t.Fatalf("unexpected skips: %+v", result.Skips)
	}

	if result.Persisted != 1 {
		t.Fatalf("expected 1 persisted, got %d", result.Persisted)
	}
}

func TestRunAbortsOnStoreFailure(t *testing.T) {
	store := &stubStore{failWith: map[string]error{
		"B2": errors.New("sheets unreachable"),
	}}
	deps := testDeps(t, store, &stubEvaluator{})

	_, err := Run(context.Background(), []*adzuna.Posting{posting("B2", "Acme")}, nil, deps, testOptions(t))
	if err == nil {
		t.Fatal("expected run-level failure to abort")
	}
}

func TestRunConfirmDeclined(t *testing.T) {
	store := &stubStore{}
	evaluator := &stubEvaluator{}
	deps := testDeps(t, store, evaluator)
	deps.Confirm = func(count int) (bool, error) {
		if count != 1 {
			t.Fatalf("expected confirmation for 1 record, got %d", count)
		}
		return false, nil
	}

	_, err := Run(context.Background(), []*adzuna.Posting{posting("B2", "Acme")}, nil, deps, testOptions(t))
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}

	// Declining must happen before any AI spend.
	if len(evaluator.calls) != 0 {
		t.Fatalf("evaluator called despite declined confirmation: %v", evaluator.calls)
	}
}

func TestRunEmptyDirectoryIsFatal(t *testing.T) {
	deps := Deps{
		Store:     &stubStore{},
		Evaluator: &stubEvaluator{},
		Logger:    zap.NewNop(),
	}

	_, err := Run(context.Background(), []*adzuna.Posting{posting("B2", "Acme")}, nil, deps, testOptions(t))
	if !errors.Is(err, contacts.ErrEmptyDirectory) {
		t.Fatalf("expected ErrEmptyDirectory, got %v", err)
	}
}

func TestRunNoMatchBelowThreshold(t *testing.T) {
	store := &stubStore{}
	deps := testDeps(t, store, &stubEvaluator{}, "Microsoft Corp")

	result, err := Run(context.Background(), []*adzuna.Posting{posting("B2", "Totally Unrelated Co")}, nil, deps, testOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Records[0].MatchedContact != nil {
		t.Fatalf("expected no contact match, got %+v", result.Records[0].MatchedContact)
	}
}

func TestFixedDelayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewFixedDelay(time.Minute).Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := NewFixedDelay(0).Wait(ctx); err != nil {
		t.Fatalf("zero delay should not consult the context, got %v", err)
	}
}
