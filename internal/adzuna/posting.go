package adzuna

// Posting is one search result as Adzuna shapes it. Field names follow the
// provider payload; normalization into the canonical record happens in the
// job package.
type Posting struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Company struct {
		DisplayName string `json:"display_name,omitempty"`
	} `json:"company,omitempty"`
	Location struct {
		DisplayName string   `json:"display_name,omitempty"`
		Area        []string `json:"area,omitempty"`
	} `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	RedirectURL string   `json:"redirect_url,omitempty"`
	SalaryMin   *float64 `json:"salary_min,omitempty"`
	SalaryMax   *float64 `json:"salary_max,omitempty"`
	// "1" when the salary is an Adzuna estimate rather than posted.
	SalaryIsPredicted string `json:"salary_is_predicted,omitempty"`
	Category          struct {
		Label string `json:"label,omitempty"`
		Tag   string `json:"tag,omitempty"`
	} `json:"category,omitempty"`
	ContractTime string `json:"contract_time,omitempty"`
	Created      string `json:"created,omitempty"`
}
