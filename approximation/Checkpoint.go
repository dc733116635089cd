package approximation

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// checkpoint is the serialized state of an Approximation
type checkpoint struct {
	Name    string
	Updates int
	Params  []*mat.Dense
	Target  []*mat.Dense
}

// CheckpointPath returns the path that the Approximation checkpoints
// to, or an empty string if its writer has no log directory
func (a *Approximation) CheckpointPath() string {
	dir := a.w.LogDir()
	if dir == "" {
		return ""
	}
	return CheckpointFile(dir, a.name)
}

// CheckpointFile returns the path of the checkpoint of the named
// Approximation in dir
func CheckpointFile(dir, name string) string {
	return filepath.Join(dir, name+".gob")
}

// Checkpoint writes the parameters of the online and target functions
// along with the update count to CheckpointPath. If the writer has no
// log directory, nothing is written.
func (a *Approximation) Checkpoint() error {
	path := a.CheckpointPath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}

	c := checkpoint{Name: a.name, Updates: a.updates, Params: a.fn.Params()}
	if a.target != nil {
		c.Target = a.target.Params()
	}

	// A failed write leaves the previous checkpoint intact
	tmp, err := os.CreateTemp(filepath.Dir(path), a.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Load restores the parameters and update count of the Approximation
// from a checkpoint written by Checkpoint
func (a *Approximation) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer f.Close()

	var c checkpoint
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if c.Name != a.name {
		return fmt.Errorf("load: checkpoint is for a different "+
			"approximation\n\twant(%v)\n\thave(%v)", a.name, c.Name)
	}

	if err := restore(a.fn.Params(), c.Params); err != nil {
		return fmt.Errorf("load: %v", err)
	}
	if a.target != nil {
		saved := c.Target
		if saved == nil {
			saved = c.Params
		}
		if err := restore(a.target.Params(), saved); err != nil {
			return fmt.Errorf("load: target: %v", err)
		}
	}
	a.updates = c.Updates
	return nil
}

// restore copies saved into params in place so that the optimizer
// remains bound to the same parameters
func restore(params, saved []*mat.Dense) error {
	if len(params) != len(saved) {
		return fmt.Errorf("number of parameters differ\n\twant(%v)"+
			"\n\thave(%v)", len(params), len(saved))
	}
	for i := range params {
		pr, pc := params[i].Dims()
		sr, sc := saved[i].Dims()
		if pr != sr || pc != sc {
			return fmt.Errorf("parameter %v shape differs\n\twant(%v, %v)"+
				"\n\thave(%v, %v)", i, pr, pc, sr, sc)
		}
	}
	for i := range params {
		params[i].Copy(saved[i])
	}
	return nil
}
