package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/slaymom/internal/clock"
	"github.com/kalambet/slaymom/internal/storage"
)

var (
	// ErrEmptyTrigger is returned when a trigger word is blank.
	ErrEmptyTrigger = errors.New("trigger word is empty")

	// ErrUnknownPreference is returned for a preference name the bot does not define.
	ErrUnknownPreference = errors.New("unknown preference")
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by storage.Store.
type ProfileStore interface {
	GetProfileRecord(userID string) (string, error)
	PutProfileRecord(userID, data string) error
	DeleteProfileRecord(userID string) error
	AllProfileRecords() (map[string]string, error)
	ReplaceProfileRecords(records map[string]string) error
}

// Manager owns every member profile. All read-modify-write sequences run
// under one mutex so concurrent commands never lose an update, and every
// write reaches the store before the call returns.
type Manager struct {
	store  ProfileStore
	clock  clock.Clock
	ttl    time.Duration
	logger *slog.Logger

	mu sync.Mutex

	cacheMu    sync.RWMutex
	triggers   [][]string
	triggersAt time.Time
	cached     bool
}

// NewManager creates a Manager whose trigger snapshot lives for 60 seconds
// unless a write invalidates it first.
func NewManager(store ProfileStore) *Manager {
	return NewManagerWithClock(store, clock.Real(), 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, c clock.Clock, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		clock:  c,
		ttl:    ttl,
		logger: slog.Default(),
	}
}

// GetOrCreate returns the member's profile, creating and persisting the
// default profile on first reference.
func (m *Manager) GetOrCreate(userID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, found, err := m.load(userID)
	if err != nil {
		return Profile{}, err
	}
	if !found {
		if err := m.save(userID, p); err != nil {
			return Profile{}, err
		}
		m.invalidate()
	}
	return p.clone(), nil
}

// Lookup returns the member's profile without creating one.
func (m *Manager) Lookup(userID string) (Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, found, err := m.load(userID)
	if err != nil || !found {
		return Profile{}, false, err
	}
	return p.clone(), true, nil
}

// Update applies fn to the member's current profile (the default one if
// none exists) and persists the result. If fn returns an error nothing is
// written and the error is returned unchanged.
func (m *Manager) Update(userID string, fn func(*Profile) error) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _, err := m.load(userID)
	if err != nil {
		return Profile{}, err
	}
	if err := fn(&p); err != nil {
		return Profile{}, err
	}
	p.normalize()
	if err := m.save(userID, p); err != nil {
		return Profile{}, err
	}
	m.invalidate()
	return p.clone(), nil
}

// Delete removes the member's profile. It reports false when there was
// nothing to delete.
func (m *Manager) Delete(userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.DeleteProfileRecord(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting profile %s: %w", userID, err)
	}
	m.invalidate()
	return true, nil
}

// SetPronouns stores free-text pronouns.
func (m *Manager) SetPronouns(userID, pronouns string) (Profile, error) {
	return m.Update(userID, func(p *Profile) error {
		p.Pronouns = &pronouns
		return nil
	})
}

// SetBirthdate stores the member's birthday.
func (m *Manager) SetBirthdate(userID string, d Date) (Profile, error) {
	return m.Update(userID, func(p *Profile) error {
		p.Birthdate = &d
		return nil
	})
}

// AddTrigger appends word to the member's trigger list. It returns false
// without writing if an entry equal to word, ignoring case, is already there.
func (m *Manager) AddTrigger(userID, word string) (bool, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return false, ErrEmptyTrigger
	}

	added := false
	_, err := m.Update(userID, func(p *Profile) error {
		if p.HasTrigger(word) {
			return errNoChange
		}
		p.Triggers = append(p.Triggers, word)
		added = true
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	return added, err
}

// RemoveTrigger removes the entry equal to word, ignoring case, and
// returns it as stored. ok is false if no entry matched.
func (m *Manager) RemoveTrigger(userID, word string) (removed string, ok bool, err error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", false, ErrEmptyTrigger
	}

	_, err = m.Update(userID, func(p *Profile) error {
		i := p.triggerIndex(word)
		if i < 0 {
			return errNoChange
		}
		removed = p.Triggers[i]
		p.Triggers = append(p.Triggers[:i], p.Triggers[i+1:]...)
		return nil
	})
	if errors.Is(err, errNoChange) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return removed, true, nil
}

// UpsertMilestone records description for date, replacing any earlier
// milestone on the same day. It reports whether one was replaced.
func (m *Manager) UpsertMilestone(userID string, d Date, description string) (bool, error) {
	replaced := false
	_, err := m.Update(userID, func(p *Profile) error {
		key := d.String()
		_, replaced = p.Milestones[key]
		p.Milestones[key] = description
		return nil
	})
	return replaced, err
}

// SetPreference sets one of the known boolean preferences.
func (m *Manager) SetPreference(userID, name string, value bool) (Profile, error) {
	if _, ok := knownPreferences[name]; !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPreference, name)
	}
	return m.Update(userID, func(p *Profile) error {
		p.Preferences[name] = value
		return nil
	})
}

// TriggerLists returns every member's trigger list that has at least one
// word, ordered by member ID. Storage failures degrade to an empty result.
func (m *Manager) TriggerLists() [][]string {
	m.cacheMu.RLock()
	if m.cached && m.clock.Now().Before(m.triggersAt.Add(m.ttl)) {
		lists := m.triggers
		m.cacheMu.RUnlock()
		return lists
	}
	m.cacheMu.RUnlock()

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	if m.cached && m.clock.Now().Before(m.triggersAt.Add(m.ttl)) {
		return m.triggers
	}

	all, err := m.all()
	if err != nil {
		m.logger.Warn("reading trigger lists failed, scanning against none", "error", err)
		return nil
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lists [][]string
	for _, id := range ids {
		if t := all[id].Triggers; len(t) > 0 {
			lists = append(lists, t)
		}
	}

	m.triggers = lists
	m.triggersAt = m.clock.Now()
	m.cached = true
	return lists
}

// Subscribers returns the IDs of members who turned pref on, sorted.
func (m *Manager) Subscribers(pref string) ([]string, error) {
	m.mu.Lock()
	all, err := m.all()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var ids []string
	for id, p := range all {
		if p.Preference(pref) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Export returns every stored profile keyed by member ID.
func (m *Manager) Export() (map[string]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all()
}

// Import replaces every stored profile with profiles.
func (m *Manager) Import(profiles map[string]Profile) error {
	records := make(map[string]string, len(profiles))
	for id, p := range profiles {
		p.normalize()
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding profile %s: %w", id, err)
		}
		records[id] = string(b)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ReplaceProfileRecords(records); err != nil {
		return fmt.Errorf("importing profiles: %w", err)
	}
	m.invalidate()
	return nil
}

// errNoChange aborts an Update without writing.
var errNoChange = errors.New("no change")

// load reads and decodes one profile. A missing record yields the
// default profile with found=false. An undecodable record yields the
// default profile with found=true, so reads leave the row as it is and
// only the next write replaces it. Only I/O failures are returned as
// errors.
func (m *Manager) load(userID string) (Profile, bool, error) {
	raw, err := m.store.GetProfileRecord(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return Default(), false, nil
	}
	if err != nil {
		return Profile{}, false, fmt.Errorf("reading profile %s: %w", userID, err)
	}

	p, err := decode(raw)
	if err != nil {
		m.logger.Warn("malformed profile record, treating as empty", "user_id", userID, "error", err)
		return Default(), true, nil
	}
	return p, true, nil
}

func (m *Manager) save(userID string, p Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", userID, err)
	}
	if err := m.store.PutProfileRecord(userID, string(b)); err != nil {
		return fmt.Errorf("writing profile %s: %w", userID, err)
	}
	return nil
}

func (m *Manager) all() (map[string]Profile, error) {
	raw, err := m.store.AllProfileRecords()
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	out := make(map[string]Profile, len(raw))
	for id, data := range raw {
		p, err := decode(data)
		if err != nil {
			m.logger.Warn("malformed profile record, skipping", "user_id", id, "error", err)
			continue
		}
		out[id] = p
	}
	return out, nil
}

func (m *Manager) invalidate() {
	m.cacheMu.Lock()
	m.cached = false
	m.triggers = nil
	m.cacheMu.Unlock()
}

func decode(raw string) (Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, err
	}
	p.normalize()
	return p, nil
}
