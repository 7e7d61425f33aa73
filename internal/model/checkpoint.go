package model

import (
	"encoding/gob"
	"fmt"
	"os"
)

// snapshot is the serialized form of a model: shape header plus a named
// parameter map, loadable back into an identically-shaped network.
type snapshot struct {
	InSize  int
	Hidden  int
	Dropout float64
	Params  map[string][]float64
}

// Save writes the model parameters to filename using gob encoding,
// overwriting any prior snapshot. Optimizer state is not saved.
func (m *CouplingNet) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer file.Close()

	snap := snapshot{
		InSize:  m.inSize,
		Hidden:  m.hidden,
		Dropout: m.dropout,
		Params:  make(map[string][]float64),
	}
	for _, t := range m.Tensors() {
		p := make([]float64, len(t.Params))
		copy(p, t.Params)
		snap.Params[t.Name] = p
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	return nil
}

// Load reconstructs a model from a checkpoint file. The seed only feeds the
// rebuilt dropout masks; every learned parameter comes from the snapshot.
func Load(filename string, seed int64) (*CouplingNet, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	m := New(snap.InSize, snap.Hidden, snap.Dropout, seed)
	for _, t := range m.Tensors() {
		p, ok := snap.Params[t.Name]
		if !ok {
			return nil, fmt.Errorf("checkpoint missing tensor %q", t.Name)
		}
		if len(p) != len(t.Params) {
			return nil, fmt.Errorf("tensor %q has %d values, expected %d", t.Name, len(p), len(t.Params))
		}
		copy(t.Params, p)
	}

	return m, nil
}
