//go:build !darwin

package config

import (
	"fmt"
	"path/filepath"
)

// secretsFilePath is the stand-in for a keychain where none exists: a
// 0600 JSON file keyed by "service/account".
func secretsFilePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "secrets.json")
}

func keychainGet(service, account string) ([]byte, error) {
	f, err := openJSONFile(secretsFilePath(), 0o600)
	if err != nil {
		return nil, fmt.Errorf("secret store unavailable: %w", err)
	}
	v, ok := f.get(service + "/" + account)
	if !ok {
		return nil, fmt.Errorf("no secret for %s/%s", service, account)
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("secret %s/%s is not a string", service, account)
	}
	return []byte(s), nil
}

func keychainSet(service, account, value string) error {
	// A corrupt file is replaced rather than blocking the write.
	f, _ := openJSONFile(secretsFilePath(), 0o600)
	return f.set(service+"/"+account, value)
}
