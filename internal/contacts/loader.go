package contacts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type contactsFile struct {
	Contacts []string `yaml:"contacts"`
}

// FromFile reads contact company names from a YAML file of the form:
//
//	contacts:
//	  - Acme
//	  - Globex Corporation
func FromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contacts file %q: %w", path, err)
	}

	var parsed contactsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing contacts file %q: %w", path, err)
	}

	return parsed.Contacts, nil
}
