package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"jobscout/internal/ai"
	"jobscout/internal/job"
	"jobscout/internal/logger"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	minFitScore = 0
	maxFitScore = 10

	// job_summary budget requested from the model. Out-of-range summaries
	// are logged, not rejected.
	jobSummaryMinRunes = 200
	jobSummaryMaxRunes = 250
)

// Evaluator turns a posting plus applicant profile into a validated
// structured evaluation via Gemini.
type Evaluator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewEvaluator(generator contentGenerator, log *zap.Logger, maxLogLength int) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Evaluator{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate sends one prompt to the provider and parses the structured
// response. The record is read, never written; malformed responses get a
// single repair pass before being rejected.
func (e *Evaluator) Evaluate(ctx context.Context, record *job.Record, profile *ai.Profile) (*ai.Evaluation, error) {
	if record == nil {
		return nil, fmt.Errorf("record is required")
	}
	if profile == nil {
		return nil, fmt.Errorf("applicant profile is required")
	}

	jobPayload := map[string]any{
		"id":          record.ID,
		"title":       record.Title,
		"company":     record.Company,
		"location":    record.Location,
		"description": record.Description,
		"salary_min":  record.SalaryMin,
		"salary_max":  record.SalaryMax,
		"url":         record.URL,
	}

	jobJSON, err := json.MarshalIndent(jobPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := buildPrompt(profile.JSON(), string(jobJSON))

	e.logger.Debug("gemini generate content request",
		zap.String("record_id", record.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String("record_id", record.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	evaluation, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(evaluation.JobSummary); n < jobSummaryMinRunes || n > jobSummaryMaxRunes {
		e.logger.Warn("job summary outside requested length",
			zap.String("record_id", record.ID),
			zap.Int("length", n),
		)
	}

	return evaluation, nil
}

func buildPrompt(profileJSON, jobJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Applicant profile:\n{{PROFILE_JSON}}\n\nJob posting:\n{{JOB_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
	return prompt
}

// parseEvaluation validates the provider output. Parsing gets exactly one
// repair attempt (fence stripping); validation failures afterwards reject
// the response with the raw text attached.
func parseEvaluation(raw string) (*ai.Evaluation, error) {
	repaired := false

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		cleaned := extractJSON(raw)
		if repairErr := json.Unmarshal([]byte(cleaned), &data); repairErr != nil {
			return nil, &ai.EvaluationError{Reason: "unparsable response", Raw: raw, Err: repairErr}
		}
		repaired = true
	}

	score, err := coerceScore(data["fit_score"])
	if err != nil {
		return nil, &ai.EvaluationError{Reason: "invalid fit_score", Raw: raw, Err: err}
	}

	evaluation := &ai.Evaluation{
		FitScore: score,
		Repaired: repaired,
		Raw:      raw,
	}

	for key, target := range map[string]*string{
		"fit_notes":       &evaluation.FitNotes,
		"company_summary": &evaluation.CompanySummary,
		"job_summary":     &evaluation.JobSummary,
	} {
		value, err := requireString(data, key)
		if err != nil {
			return nil, &ai.EvaluationError{Reason: fmt.Sprintf("invalid %s", key), Raw: raw, Err: err}
		}
		*target = value
	}

	return evaluation, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	// Models sometimes wrap the object in prose. Keep the outermost braces.
	if start := strings.Index(raw, "{"); start != -1 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	return strings.TrimSpace(raw)
}

// coerceScore accepts any numeric representation of the score and clamps it
// into the valid range. Non-numeric values are rejected.
func coerceScore(v any) (int, error) {
	var score float64

	switch val := v.(type) {
	case float64:
		score = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("fit_score %q is not numeric", val)
		}
		score = parsed
	case nil:
		return 0, fmt.Errorf("fit_score is missing")
	default:
		return 0, fmt.Errorf("fit_score has unexpected type %T", v)
	}

	if math.IsNaN(score) {
		return 0, fmt.Errorf("fit_score is not a number")
	}

	rounded := int(math.Round(score))
	if rounded < minFitScore {
		rounded = minFitScore
	}
	if rounded > maxFitScore {
		rounded = maxFitScore
	}

	return rounded, nil
}

func requireString(data map[string]any, key string) (string, error) {
	value, ok := data[key]
	if !ok || value == nil {
		return "", fmt.Errorf("%s is missing", key)
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s has unexpected type %T", key, value)
	}

	return strings.TrimSpace(str), nil
}
