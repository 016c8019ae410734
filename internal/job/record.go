package job

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"jobscout/internal/contacts"
)

// ErrDuplicateID signals that the persistence target already holds a row for
// the record's id. Duplicates are skipped, never overwritten.
var ErrDuplicateID = errors.New("record id already persisted")

// Record is the canonical posting shape and the unit of persistence.
// Evaluation fields stay unset until the AI evaluator succeeds; a record is
// persisted fully enriched or not at all.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	SalaryMin   *float64  `json:"salary_min,omitempty"`
	SalaryMax   *float64  `json:"salary_max,omitempty"`
	PostedAt    time.Time `json:"posted_at,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`

	FitScore       *int   `json:"fit_score,omitempty"`
	FitNotes       string `json:"fit_notes,omitempty"`
	CompanySummary string `json:"company_summary,omitempty"`
	JobSummary     string `json:"job_summary,omitempty"`

	MatchedContact *contacts.Match `json:"matched_contact,omitempty"`
}

// Clone returns a deep copy so enrichment never mutates the caller's record.
func (r *Record) Clone() *Record {
	clone := *r

	if r.SalaryMin != nil {
		v := *r.SalaryMin
		clone.SalaryMin = &v
	}
	if r.SalaryMax != nil {
		v := *r.SalaryMax
		clone.SalaryMax = &v
	}
	if r.FitScore != nil {
		v := *r.FitScore
		clone.FitScore = &v
	}
	if r.MatchedContact != nil {
		m := *r.MatchedContact
		clone.MatchedContact = &m
	}

	return &clone
}

type Records []*Record

func (r Records) Len() int {
	return len(r)
}

func (r Records) FindByID(id string) *Record {
	for _, record := range r {
		if record.ID == id {
			return record
		}
	}
	return nil
}

func (r Records) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, record := range r {
		ids = append(ids, record.ID)
	}
	return ids
}

func (r Records) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
