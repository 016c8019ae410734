package ai

import (
	"encoding/json"
	"fmt"
	"os"
)

// Profile is the applicant profile embedded verbatim into evaluation
// prompts. It is kept as raw JSON so the file can carry whatever structure
// the applicant maintains.
type Profile struct {
	raw json.RawMessage
}

// LoadProfile reads and validates the applicant profile JSON file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading applicant profile %q: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("applicant profile %q is not valid JSON", path)
	}

	return &Profile{raw: json.RawMessage(data)}, nil
}

// NewProfile wraps an already-decoded profile payload.
func NewProfile(payload any) (*Profile, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal applicant profile: %w", err)
	}
	return &Profile{raw: data}, nil
}

func (p *Profile) JSON() string {
	if p == nil || len(p.raw) == 0 {
		return "{}"
	}
	return string(p.raw)
}
