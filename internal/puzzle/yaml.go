package puzzle

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/slotfd/pkg/slotfd"
)

func parseYAML(r io.Reader) (*slotfd.Problem, error) {
	var p slotfd.Problem
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if p.Slots < 0 {
		return nil, fmt.Errorf("slots must be non-negative, got %d", p.Slots)
	}
	if p.Slots > MaxSlots {
		return nil, fmt.Errorf("slots %d exceeds the maximum of %d", p.Slots, MaxSlots)
	}
	return &p, nil
}
