package speaker

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// profileFlushThreshold caps how many profile updates accumulate in
// memory before Put forces a flush to disk, rather than fsyncing on
// every single Refine call.
const profileFlushThreshold = 10

// Store holds every enrolled profile in memory, hot-reloading from disk
// when profile files change via an fsnotify watch over a flat directory
// of ".bin" profile files.
type Store struct {
	mu       sync.RWMutex
	dir      string
	profiles map[string]*Profile
	watcher  *fsnotify.Watcher

	dirty      map[string]*Profile
	dirtyCount int
}

// NewStore loads every profile under dir and starts watching it for
// external changes (e.g. a profile updated by a concurrent enrollment
// run).
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir, profiles: make(map[string]*Profile), dirty: make(map[string]*Profile)}

	entries, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	if err != nil {
		return nil, err
	}
	for _, path := range entries {
		p, err := LoadProfile(path)
		if err != nil {
			slog.Warn("failed to load speaker profile", "path", path, "error", err)
			continue
		}
		s.profiles[p.Name] = p
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	s.watcher = watcher

	go s.watch()

	return s, nil
}

func (s *Store) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".bin") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p, err := LoadProfile(event.Name)
			if err != nil {
				slog.Warn("failed to reload speaker profile", "path", event.Name, "error", err)
				continue
			}
			s.mu.Lock()
			s.profiles[p.Name] = p
			s.mu.Unlock()
			slog.Info("reloaded speaker profile", "name", p.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("speaker profile watcher error", "error", err)
		}
	}
}

// All returns a snapshot slice of every currently loaded profile.
func (s *Store) All() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out
}

// Put stores p in memory and marks it dirty. The write to disk is
// debounced: it happens once every profileFlushThreshold calls to Put
// across all profiles, or on an explicit Flush (e.g. at shutdown).
func (s *Store) Put(p *Profile) error {
	s.mu.Lock()
	s.profiles[p.Name] = p
	s.dirty[p.Name] = p
	s.dirtyCount++
	shouldFlush := s.dirtyCount >= profileFlushThreshold
	s.mu.Unlock()

	if shouldFlush {
		return s.Flush()
	}
	return nil
}

// Flush persists every profile updated since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = make(map[string]*Profile)
	s.dirtyCount = 0
	s.mu.Unlock()

	var errs []error
	for _, p := range dirty {
		if err := SaveProfile(s.dir, p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("speaker: failed to flush %d profile(s): %v", len(errs), errs)
	}
	return nil
}

// Remove deletes name's profile from memory and disk.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	delete(s.profiles, name)
	delete(s.dirty, name)
	s.mu.Unlock()
	return removeProfileFile(s.dir, name)
}

// Close flushes any pending profile updates and stops the filesystem
// watcher.
func (s *Store) Close() error {
	flushErr := s.Flush()
	watchErr := s.watcher.Close()
	if flushErr != nil {
		return flushErr
	}
	return watchErr
}
