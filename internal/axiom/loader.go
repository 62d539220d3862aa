package axiom

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an axiom set definition from a YAML file and validates it.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open axiom set %s: %w", path, err)
	}
	defer f.Close()

	var def Definition
	if err := yaml.NewDecoder(f).Decode(&def); err != nil {
		return nil, &LoadError{Detail: fmt.Sprintf("failed to decode %s", path), Err: err}
	}

	return Load(def)
}
