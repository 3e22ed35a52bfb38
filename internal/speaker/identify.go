package speaker

import (
	"math"
	"os"
	"path/filepath"
)

// Identify returns the best-matching profile for embedding, or nil if no
// profile's cosine similarity reaches threshold.
func Identify(store *Store, embedding []float32, threshold float32) *Profile {
	var best *Profile
	var bestScore float32 = -1

	for _, p := range store.All() {
		score := cosineSimilarity(embedding, p.Embedding)
		if score > bestScore {
			bestScore = score
			best = p
		}
	}

	if best == nil || bestScore < threshold {
		return nil
	}
	return best
}

// Refine updates a matched profile's embedding via exponential moving
// average, e' = normalise(0.95*e + 0.05*e_new) with alpha configurable
// (default 0.05), then hands it to store.Put, which writes it to disk on
// its debounced schedule.
func Refine(store *Store, p *Profile, newEmbedding []float32, alpha float32) error {
	if alpha <= 0 {
		alpha = 0.05
	}
	updated := make([]float32, len(p.Embedding))
	for i := range updated {
		updated[i] = (1-alpha)*p.Embedding[i] + alpha*newEmbedding[i]
	}
	normalize(updated)

	p.Embedding = updated
	p.UpdateCount++
	return store.Put(p)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func removeProfileFile(dir, name string) error {
	err := os.Remove(filepath.Join(dir, slugify(name)+".bin"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
