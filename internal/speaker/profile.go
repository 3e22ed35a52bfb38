// Package speaker implements voice embedding extraction, profile
// persistence, cosine-similarity identification, and EMA profile
// refinement, using a fixed binary profile layout rather than an ad hoc
// text format.
package speaker

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const profileVersion uint32 = 1

// Profile is one enrolled speaker's running voice embedding.
type Profile struct {
	Name        string
	Embedding   []float32
	UpdateCount uint64
}

// LoadProfile reads the binary layout:
// u32 version ‖ u32 dim ‖ f32[dim] embedding ‖ u64 update_count ‖ u16 name_len ‖ utf8 name
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var version, dim uint32
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("speaker: failed to read version: %w", err)
	}
	if version != profileVersion {
		return nil, fmt.Errorf("speaker: unsupported profile version %d", version)
	}
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("speaker: failed to read dim: %w", err)
	}

	embedding := make([]float32, dim)
	if err := binary.Read(f, binary.LittleEndian, &embedding); err != nil {
		return nil, fmt.Errorf("speaker: failed to read embedding: %w", err)
	}

	var updateCount uint64
	if err := binary.Read(f, binary.LittleEndian, &updateCount); err != nil {
		return nil, fmt.Errorf("speaker: failed to read update_count: %w", err)
	}

	var nameLen uint16
	if err := binary.Read(f, binary.LittleEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("speaker: failed to read name_len: %w", err)
	}

	nameBytes := make([]byte, nameLen)
	if _, err := f.Read(nameBytes); err != nil {
		return nil, fmt.Errorf("speaker: failed to read name: %w", err)
	}

	return &Profile{
		Name:        string(nameBytes),
		Embedding:   embedding,
		UpdateCount: updateCount,
	}, nil
}

// SaveProfile writes p to dir/<slug>.bin atomically (write and fsync a
// temp file in the same directory, then rename).
func SaveProfile(dir string, p *Profile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("speaker: failed to create profiles dir: %w", err)
	}

	path := filepath.Join(dir, slugify(p.Name)+".bin")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("speaker: failed to create temp profile: %w", err)
	}

	writeErr := func() error {
		if err := binary.Write(f, binary.LittleEndian, profileVersion); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(len(p.Embedding))); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, p.Embedding); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, p.UpdateCount); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, uint16(len(p.Name))); err != nil {
			return err
		}
		_, err := f.WriteString(p.Name)
		return err
	}()

	if writeErr != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("speaker: failed to write profile: %w", writeErr)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("speaker: failed to fsync profile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("speaker: failed to close profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("speaker: failed to install profile: %w", err)
	}
	return nil
}
