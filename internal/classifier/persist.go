package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/utils"
)

var (
	// ErrModelNotFound means no artifact exists at the model path; train first.
	ErrModelNotFound = errors.New("model artifact not found")
	// ErrCorruptModel means the artifact exists but cannot be used.
	ErrCorruptModel = errors.New("model artifact corrupt")
)

// Save writes f to path as JSON. The file is replaced atomically so readers
// never see a partial artifact.
func Save(path string, f *Forest) error {
	if f == nil || len(f.Trees) == 0 {
		return fmt.Errorf("save model: forest is not trained")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("save model: encode: %w", err)
	}
	if err := utils.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save model %s: %w", path, err)
	}
	return nil
}

// Load reads a forest saved by Save.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load model %s: %w", path, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}

	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load model %s: %w: %v", path, ErrCorruptModel, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("load model %s: %w: %v", path, ErrCorruptModel, err)
	}
	return &f, nil
}

// validate checks the invariants predict relies on so a damaged artifact
// fails at load time instead of panicking during scoring.
func (f *Forest) validate() error {
	if f.NumFeatures != features.NumFeatures {
		return fmt.Errorf("artifact expects %d features, pipeline produces %d", f.NumFeatures, features.NumFeatures)
	}
	if len(f.Trees) == 0 {
		return errors.New("artifact has no trees")
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left < 0 {
				if n.Value < 0 || n.Value > 1 {
					return fmt.Errorf("tree %d node %d: leaf value %v out of range", ti, ni, n.Value)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= features.NumFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			// Children always follow their parent, which also rules out cycles.
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: bad child index", ti, ni)
			}
		}
	}
	return nil
}
