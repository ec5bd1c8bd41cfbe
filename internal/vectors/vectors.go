// Package vectors loads and saves JSON update/proof fixtures used to
// pin down tree and proof behavior across runs.
package vectors

import (
	"encoding/json"
	"fmt"
	"os"
)

// UpdateStep is one (key, value) binding applied during a fixture's
// setup, in application order.
type UpdateStep struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProofVector is a single proof fixture: apply Updates in order, then
// request a proof over Keys and expect it to verify against Root.
type ProofVector struct {
	Name    string       `json:"name"`
	Updates []UpdateStep `json:"updates"`
	Keys    []string     `json:"keys"`
	Values  []string     `json:"values"`
	Root    string       `json:"root"`
}

// HashVector checks a single domain-separated hash computation, for
// cross-checking the leaf/branch/merge formulae against known values.
type HashVector struct {
	Kind     string   `json:"kind"` // "leaf", "branch" or "merge_with_zero"
	Inputs   []string `json:"inputs"`
	Expected string   `json:"expected"`
}

// LoadProofVectors reads a JSON array of ProofVector from filename.
func LoadProofVectors(filename string) ([]ProofVector, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read proof vectors %s: %w", filename, err)
	}
	var vectors []ProofVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("unmarshal proof vectors: %w", err)
	}
	return vectors, nil
}

// SaveProofVectors writes vectors to filename as indented JSON, the
// inverse of LoadProofVectors.
func SaveProofVectors(filename string, vectors []ProofVector) error {
	data, err := json.MarshalIndent(vectors, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proof vectors: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write proof vectors %s: %w", filename, err)
	}
	return nil
}

// LoadHashVectors reads a JSON array of HashVector from filename.
func LoadHashVectors(filename string) ([]HashVector, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read hash vectors %s: %w", filename, err)
	}
	var vectors []HashVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("unmarshal hash vectors: %w", err)
	}
	return vectors, nil
}
