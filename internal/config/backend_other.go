//go:build !darwin

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func defaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func configFilePath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.json")
}

func tokenHint() string {
	return fmt.Sprintf(" or %s (service: %s, account: %s)", secretsFilePath(), secretService, discordTokenAccount)
}

// fileBackend keeps settings in $XDG_CONFIG_HOME/slaymom/config.json.
type fileBackend struct {
	file *jsonFile
}

func newPlatformBackend() Backend {
	f, err := openJSONFile(configFilePath(), 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v. Using default values.\n", err)
	}
	return fileBackend{file: f}
}

func (b fileBackend) GetString(key string) (string, bool, error) {
	v, ok := b.file.get(key)
	if !ok {
		return "", false, nil
	}
	if s, isStr := v.(string); isStr {
		return s, true, nil
	}
	// A hand-edited file may hold true or 30 where a string is expected.
	return fmt.Sprint(v), true, nil
}

func (b fileBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.file.get(key)
	if !ok {
		return 0, false, nil
	}
	i, err := intValue(key, v)
	return i, true, err
}

func (b fileBackend) SetString(key, val string) error { return b.file.set(key, val) }

func (b fileBackend) SetInt(key string, val int) error { return b.file.set(key, val) }

func (b fileBackend) Delete(key string) error { return b.file.remove(key) }
