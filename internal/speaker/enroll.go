package speaker

import "fmt"

// Enroll computes a fresh embedding for samples, segmented and mean-pooled
// via EnrollEmbedding, and either creates a new profile for name or, if one
// already exists, refines it via Refine rather than overwriting it
// outright — repeated enrollment sessions sharpen a speaker's profile
// instead of resetting it.
func Enroll(store *Store, extractor *Extractor, name string, samples []int16, sampleRate int, emaAlpha float32) (*Profile, error) {
	embedding, err := EnrollEmbedding(extractor, samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("speaker: enrollment failed: %w", err)
	}

	for _, existing := range store.All() {
		if existing.Name == name {
			if err := Refine(store, existing, embedding, emaAlpha); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	p := &Profile{Name: name, Embedding: embedding, UpdateCount: 1}
	if err := store.Put(p); err != nil {
		return nil, fmt.Errorf("speaker: failed to persist new profile: %w", err)
	}
	return p, nil
}
