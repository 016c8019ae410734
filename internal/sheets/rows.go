package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"jobscout/internal/job"
)

const idHeader = "id"

// Job row layout, one record per row:
// id | title | company | location | salary_min | salary_max | posted_at |
// url | source | fit_score | fit_notes | company_summary | job_summary |
// matched_contact
func rowFromRecord(record *job.Record) []any {
	row := []any{
		record.ID,
		record.Title,
		record.Company,
		record.Location,
		cellFromFloat(record.SalaryMin),
		cellFromFloat(record.SalaryMax),
		"",
		record.URL,
		record.Source,
		"",
		record.FitNotes,
		record.CompanySummary,
		record.JobSummary,
		"",
	}

	if !record.PostedAt.IsZero() {
		row[6] = record.PostedAt.Format("2006-01-02")
	}

	if record.FitScore != nil {
		row[9] = *record.FitScore
	}

	if record.MatchedContact != nil {
		row[13] = fmt.Sprintf("%s (%d)", record.MatchedContact.Name, record.MatchedContact.Score)
	}

	return row
}

func cellFromFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// cellString renders a raw sheet cell as text. Numeric ids land here as
// float64 when the sheet serves unformatted values.
func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// idsFromRows extracts the id column from raw sheet values, skipping the
// header row and blanks.
func idsFromRows(rows [][]any) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		id := cellString(row[0])
		if id == "" || strings.EqualFold(id, idHeader) {
			continue
		}

		ids[id] = struct{}{}
	}
	return ids
}

func namesFromRows(rows [][]any) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		name := cellString(row[0])
		if name == "" {
			continue
		}

		names = append(names, name)
	}
	return names
}
