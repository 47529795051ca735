package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIntValue(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{float64(4100), 4100, false},
		{4100, 4100, false},
		{"4100", 4100, false},
		{float64(1.5), 0, true},
		{"port", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := intValue("server.port", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("intValue(%v) = %d, %v", tt.in, got, err)
		}
	}
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "f.json")

	f, err := openJSONFile(path, 0o600)
	if err != nil {
		t.Fatalf("missing file should open cleanly: %v", err)
	}
	if err := f.set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := f.set("b", 2); err != nil {
		t.Fatal(err)
	}
	if err := f.remove("a"); err != nil {
		t.Fatal(err)
	}
	if err := f.remove("never-set"); err != nil {
		t.Fatal(err)
	}

	g, err := openJSONFile(path, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.get("a"); ok {
		t.Error("removed key came back")
	}
	if v, ok := g.get("b"); !ok || v != float64(2) {
		t.Errorf("b = %v, %v", v, ok)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestJSONFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := openJSONFile(path, 0o600)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if _, ok := f.get("anything"); ok {
		t.Error("corrupt file should read as empty")
	}
	if err := f.set("k", "v"); err != nil {
		t.Fatalf("writing over a corrupt file: %v", err)
	}
}
