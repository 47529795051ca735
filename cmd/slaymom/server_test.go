package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/clock"
	"github.com/kalambet/slaymom/internal/config"
	"github.com/kalambet/slaymom/internal/content"
	"github.com/kalambet/slaymom/internal/profile"
	"github.com/kalambet/slaymom/internal/storage"
)

type recordingSender struct {
	mu       sync.Mutex
	channels []string
	direct   []string
}

func (r *recordingSender) ResolveChannel(context.Context, string) error { return nil }

func (r *recordingSender) Send(_ context.Context, channelID string, _ chat.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, channelID)
	return nil
}

func (r *recordingSender) SendDirect(_ context.Context, userID string, _ chat.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct = append(r.direct, userID)
	return nil
}

func TestNewBroadcasterWithoutChannel(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	if err := content.Init(dir); err != nil {
		t.Fatal(err)
	}

	profiles := profile.NewManager(store)
	if _, err := profiles.SetPreference("u1", profile.PrefDailyAffirmation, true); err != nil {
		t.Fatal(err)
	}
	if _, err := profiles.GetOrCreate("u2"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{}
	cfg.Affirmation.Time = "09:00"

	sender := &recordingSender{}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	bc, err := newBroadcaster(cfg, sender, content.NewLibrary(dir), profiles, clock.Fake(now))
	if err != nil {
		t.Fatal(err)
	}
	if err := bc.Fire(context.Background()); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if len(sender.channels) != 0 {
		t.Errorf("channel sends = %v, want none", sender.channels)
	}
	if diff := cmp.Diff([]string{"u1"}, sender.direct); diff != "" {
		t.Errorf("direct messages (-want +got):\n%s", diff)
	}
}

func TestNewBroadcasterBadTime(t *testing.T) {
	cfg := config.Config{}
	cfg.Affirmation.Time = "9am"
	if _, err := newBroadcaster(cfg, &recordingSender{}, content.NewLibrary(t.TempDir()), nil, clock.Real()); err == nil {
		t.Fatal("expected error for a bad time")
	}
}
