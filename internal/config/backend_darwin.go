//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultsDomain = "com.slaymom.bot"

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "slaymom-data"
	}
	return filepath.Join(home, "Library", "Application Support", "slaymom")
}

func tokenHint() string {
	return fmt.Sprintf(" or the macOS Keychain (service: %s, account: %s)", secretService, discordTokenAccount)
}

// defaultsBackend keeps settings in the user defaults database.
type defaultsBackend struct {
	domain string
	run    func(args ...string) ([]byte, error)
}

func newPlatformBackend() Backend {
	return defaultsBackend{
		domain: defaultsDomain,
		run: func(args ...string) ([]byte, error) {
			return exec.Command("defaults", args...).CombinedOutput()
		},
	}
}

func (b defaultsBackend) GetString(key string) (string, bool, error) {
	out, err := b.run("read", b.domain, key)
	s := strings.TrimSpace(string(out))
	if err != nil {
		// Exit status 1 means the key or the whole domain is absent.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("defaults read %s: %w (%s)", key, err, s)
	}
	return s, true, nil
}

func (b defaultsBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.GetString(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := intValue(key, s)
	return i, true, err
}

func (b defaultsBackend) write(key string, args ...string) error {
	out, err := b.run(append([]string{"write", b.domain, key}, args...)...)
	if err != nil {
		return fmt.Errorf("defaults write %s: %w (%s)", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b defaultsBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b defaultsBackend) SetInt(key string, val int) error {
	return b.write(key, "-int", strconv.Itoa(val))
}

func (b defaultsBackend) Delete(key string) error {
	if _, ok, err := b.GetString(key); err != nil || !ok {
		return err
	}
	out, err := b.run("delete", b.domain, key)
	if err != nil {
		return fmt.Errorf("defaults delete %s: %w (%s)", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}
