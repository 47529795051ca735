package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
)

// Init writes the default content files into dir unless they already exist.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := writeIfMissing(filepath.Join(dir, AffirmationsFile), DefaultAffirmations); err != nil {
		return err
	}
	return writeIfMissing(filepath.Join(dir, ResourcesFile), DefaultResources)
}

func writeIfMissing(path string, v any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Library is the in-memory copy of the content files. It is safe for
// concurrent use; Reload swaps both pools atomically.
type Library struct {
	dir    string
	logger *slog.Logger
	pick   func(n int) int

	mu  sync.RWMutex
	aff Affirmations
	res Resources
}

// NewLibrary creates a Library over dir and loads it.
func NewLibrary(dir string) *Library {
	return NewLibraryWithPicker(dir, rand.IntN)
}

// NewLibraryWithPicker creates a Library whose random draws call pick
// with the pool size instead of rand.IntN (for testing).
func NewLibraryWithPicker(dir string, pick func(n int) int) *Library {
	l := &Library{dir: dir, logger: slog.Default(), pick: pick}
	l.Reload()
	return l
}

// Dir returns the directory the library reads from.
func (l *Library) Dir() string { return l.dir }

// Reload rereads both files. A missing or malformed file loads as empty
// and is logged; it never fails the caller.
func (l *Library) Reload() {
	var aff Affirmations
	if err := readJSON(filepath.Join(l.dir, AffirmationsFile), &aff); err != nil {
		l.logger.Warn("affirmations unavailable", "error", err)
		aff = Affirmations{}
	} else if err := aff.validate(); err != nil {
		l.logger.Warn("affirmations invalid", "error", err)
		aff = Affirmations{}
	}

	var res Resources
	if err := readJSON(filepath.Join(l.dir, ResourcesFile), &res); err != nil {
		l.logger.Warn("resources unavailable", "error", err)
		res = nil
	} else if err := res.validate(); err != nil {
		l.logger.Warn("resources invalid", "error", err)
		res = nil
	}

	l.mu.Lock()
	l.aff = aff
	l.res = res
	l.mu.Unlock()

	l.logger.Debug("content loaded", "general", len(aff.General), "comfort", len(aff.Comfort), "categories", len(res))
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RandomGeneral returns a random general affirmation, or false if the
// pool is empty.
func (l *Library) RandomGeneral() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.choose(l.aff.General)
}

// RandomComfort returns a random comfort message, or false if the pool
// is empty.
func (l *Library) RandomComfort() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.choose(l.aff.Comfort)
}

func (l *Library) choose(pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	return pool[l.pick(len(pool))], true
}

// Affirmations returns a copy of both pools.
func (l *Library) Affirmations() Affirmations {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Affirmations{
		General: append([]string(nil), l.aff.General...),
		Comfort: append([]string(nil), l.aff.Comfort...),
	}
}

// Resources returns the resource directory.
func (l *Library) Resources() Resources {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(Resources, len(l.res))
	for i, c := range l.res {
		out[i] = Category{Name: c.Name, Resources: append([]Resource(nil), c.Resources...)}
	}
	return out
}
