package job

import (
	"fmt"
	"strings"
	"time"

	"jobscout/internal/adzuna"
)

const sourceAdzuna = "adzuna"

// NormalizationError marks a source posting that cannot be canonicalized.
// The caller drops the posting and keeps the batch going.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize posting: %s", e.Reason)
}

// Normalize maps a provider-shaped posting into the canonical record.
// Missing optional fields become zero values; the only fatal condition is a
// posting without a derivable id.
func Normalize(p *adzuna.Posting) (*Record, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return nil, &NormalizationError{Reason: "posting has no id"}
	}

	record := &Record{
		ID:          id,
		Title:       strings.TrimSpace(p.Title),
		Company:     strings.TrimSpace(p.Company.DisplayName),
		Location:    strings.TrimSpace(p.Location.DisplayName),
		Description: strings.TrimSpace(p.Description),
		SalaryMin:   p.SalaryMin,
		SalaryMax:   p.SalaryMax,
		URL:         p.RedirectURL,
		Source:      sourceAdzuna,
	}

	// Providers occasionally serve inverted ranges.
	if record.SalaryMin != nil && record.SalaryMax != nil && *record.SalaryMin > *record.SalaryMax {
		record.SalaryMin, record.SalaryMax = record.SalaryMax, record.SalaryMin
	}

	if p.Created != "" {
		// Adzuna format: "2025-09-26T07:20:13Z". An unparsable value is
		// not worth dropping the posting over.
		if posted, err := time.Parse(time.RFC3339, p.Created); err == nil {
			record.PostedAt = posted
		}
	}

	return record, nil
}
