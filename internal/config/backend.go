package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Backend is where persistent settings live between runs. Booleans and
// durations are kept as strings; only server.port is numeric.
type Backend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}

// xdgDir returns $env/slaymom, or ~/fallback/slaymom when env is unset.
func xdgDir(env, fallback string) string {
	dir := os.Getenv(env)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "slaymom-data"
		}
		dir = filepath.Join(home, fallback)
	}
	return filepath.Join(dir, "slaymom")
}

// intValue coerces a decoded JSON or text value to an int.
func intValue(key string, v any) (int, error) {
	switch val := v.(type) {
	case float64:
		if val < math.MinInt || val > math.MaxInt || val != math.Trunc(val) {
			return 0, fmt.Errorf("%s: %v is not an integer", key, val)
		}
		return int(val), nil
	case int:
		return val, nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s: unexpected %T", key, v)
	}
}

// jsonFile is a flat JSON object on disk. Every change is written to a
// temp file and renamed over the old one.
type jsonFile struct {
	path string
	perm os.FileMode

	mu   sync.Mutex
	data map[string]any
}

// openJSONFile reads path. A missing file is empty; an unreadable or
// corrupt one is empty too, and the error says why.
func openJSONFile(path string, perm os.FileMode) (*jsonFile, error) {
	f := &jsonFile{path: path, perm: perm, data: make(map[string]any)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		f.data = make(map[string]any)
		return f, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

func (f *jsonFile) get(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *jsonFile) set(key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = v
	return f.flush()
}

func (f *jsonFile) remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

func (f *jsonFile) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(f.path), err)
	}
	out, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(f.perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
