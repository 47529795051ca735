package profile

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/slaymom/internal/clock"
	"github.com/kalambet/slaymom/internal/storage"
)

// --- Mock store ---

type mockStore struct {
	mu   sync.Mutex
	data map[string]string

	getAllCalls int
	putCalls    int
	failGet     error
	failPut     error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) GetProfileRecord(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return "", m.failGet
	}
	v, ok := m.data[userID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *mockStore) PutProfileRecord(userID, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	m.putCalls++
	m.data[userID] = data
	return nil
}

func (m *mockStore) DeleteProfileRecord(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[userID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, userID)
	return nil
}

func (m *mockStore) AllProfileRecords() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getAllCalls++
	if m.failGet != nil {
		return nil, m.failGet
	}
	cp := make(map[string]string, len(m.data))
	for k, v := range m.data {
		cp[k] = v
	}
	return cp, nil
}

func (m *mockStore) ReplaceProfileRecords(records map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string, len(records))
	for k, v := range records {
		m.data[k] = v
	}
	return nil
}

func (m *mockStore) raw(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[userID]
	return v, ok
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// --- Tests ---

func TestGetOrCreate_PersistsDefault(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store)

	p, err := mgr.GetOrCreate("100")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Errorf("first profile differs from default (-want +got):\n%s", diff)
	}
	if p.Preference(PrefDailyAffirmation) {
		t.Error("daily_affirmation should default to false")
	}

	raw, ok := store.raw("100")
	if !ok {
		t.Fatal("default profile was not persisted")
	}
	want := `{"pronouns":null,"triggers":[],"birthdate":null,"milestones":{},"preferences":{"daily_affirmation":false}}`
	if raw != want {
		t.Errorf("stored record = %s\nwant %s", raw, want)
	}

	again, err := mgr.GetOrCreate("100")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if diff := cmp.Diff(p, again); diff != "" {
		t.Errorf("second GetOrCreate differs (-first +second):\n%s", diff)
	}
	if store.putCalls != 1 {
		t.Errorf("putCalls = %d, want 1", store.putCalls)
	}
}

func TestGetOrCreate_ReadErrorPropagates(t *testing.T) {
	store := newMockStore()
	store.failGet = errors.New("disk on fire")
	mgr := NewManager(store)

	if _, err := mgr.GetOrCreate("1"); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestLookup_DoesNotCreate(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store)

	_, found, err := mgr.Lookup("5")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Lookup found a profile that was never created")
	}
	if _, ok := store.raw("5"); ok {
		t.Error("Lookup persisted a record")
	}
}

func TestCorruptRecordReadsAsDefault(t *testing.T) {
	const corrupt = `{"triggers": [`
	store := newMockStore()
	store.data["9"] = corrupt
	mgr := NewManager(store)

	p, err := mgr.GetOrCreate("9")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Errorf("corrupt record did not read as default (-want +got):\n%s", diff)
	}
	if _, found, err := mgr.Lookup("9"); err != nil || !found {
		t.Errorf("Lookup = found %v, err %v; want found", found, err)
	}
	if raw, _ := store.raw("9"); raw != corrupt {
		t.Errorf("read rewrote the corrupt record: %q", raw)
	}
}

func TestCorruptRecordReplacedOnWrite(t *testing.T) {
	store := newMockStore()
	store.data["9"] = `{"triggers": [`
	mgr := NewManager(store)

	if _, err := mgr.SetPronouns("9", "they/them"); err != nil {
		t.Fatalf("SetPronouns: %v", err)
	}
	raw, _ := store.raw("9")
	p, err := decode(raw)
	if err != nil {
		t.Fatalf("record still corrupt after a write: %q", raw)
	}
	if got := p.PronounsOr(""); got != "they/them" {
		t.Errorf("pronouns = %q", got)
	}
}

func TestLegacyRecordWithoutPreferences(t *testing.T) {
	store := newMockStore()
	store.data["3"] = `{"pronouns":"xe/xem","triggers":["spiders"],"birthdate":null,"milestones":{}}`
	mgr := NewManager(store)

	p, err := mgr.GetOrCreate("3")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.PronounsOr("not set"); got != "xe/xem" {
		t.Errorf("pronouns = %q", got)
	}
	if p.Preferences == nil {
		t.Fatal("preferences not filled in for legacy record")
	}
	if p.Preference(PrefDailyAffirmation) {
		t.Error("legacy record should get daily_affirmation=false")
	}
}

func TestSetPronouns(t *testing.T) {
	mgr := NewManager(newMockStore())

	if _, err := mgr.SetPronouns("1", "they/them"); err != nil {
		t.Fatal(err)
	}
	p, err := mgr.GetOrCreate("1")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.PronounsOr("Not set"); got != "they/them" {
		t.Errorf("pronouns = %q, want they/them", got)
	}
}

func TestAddTrigger_DuplicateIgnoringCase(t *testing.T) {
	mgr := NewManager(newMockStore())

	added, err := mgr.AddTrigger("1", "Spiders")
	if err != nil || !added {
		t.Fatalf("first AddTrigger = %v, %v", added, err)
	}
	for _, w := range []string{"spiders", "SPIDERS", "  Spiders "} {
		added, err := mgr.AddTrigger("1", w)
		if err != nil {
			t.Fatalf("AddTrigger(%q): %v", w, err)
		}
		if added {
			t.Errorf("AddTrigger(%q) reported added for a duplicate", w)
		}
	}

	p, _ := mgr.GetOrCreate("1")
	if diff := cmp.Diff([]string{"Spiders"}, p.Triggers); diff != "" {
		t.Errorf("triggers (-want +got):\n%s", diff)
	}
}

func TestAddTrigger_Empty(t *testing.T) {
	mgr := NewManager(newMockStore())
	if _, err := mgr.AddTrigger("1", "   "); !errors.Is(err, ErrEmptyTrigger) {
		t.Errorf("err = %v, want ErrEmptyTrigger", err)
	}
}

func TestRemoveTrigger_IgnoresCase(t *testing.T) {
	mgr := NewManager(newMockStore())
	for _, w := range []string{"blood", "Needles", "heights"} {
		if _, err := mgr.AddTrigger("1", w); err != nil {
			t.Fatal(err)
		}
	}

	removed, ok, err := mgr.RemoveTrigger("1", "NEEDLES")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || removed != "Needles" {
		t.Errorf("RemoveTrigger = %q, %v; want Needles, true", removed, ok)
	}

	_, ok, err = mgr.RemoveTrigger("1", "needles")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second removal reported success")
	}

	p, _ := mgr.GetOrCreate("1")
	if diff := cmp.Diff([]string{"blood", "heights"}, p.Triggers); diff != "" {
		t.Errorf("triggers (-want +got):\n%s", diff)
	}
}

func TestUpsertMilestone_Overwrites(t *testing.T) {
	mgr := NewManager(newMockStore())
	d := mustDate(t, "01-06-2024")

	replaced, err := mgr.UpsertMilestone("1", d, "came out to my mom")
	if err != nil || replaced {
		t.Fatalf("first UpsertMilestone = %v, %v", replaced, err)
	}
	replaced, err = mgr.UpsertMilestone("1", mustDate(t, "1-6-2024"), "started HRT")
	if err != nil {
		t.Fatal(err)
	}
	if !replaced {
		t.Error("second milestone on the same day should report replaced")
	}

	p, _ := mgr.GetOrCreate("1")
	want := map[string]string{"01-06-2024": "started HRT"}
	if diff := cmp.Diff(want, p.Milestones); diff != "" {
		t.Errorf("milestones (-want +got):\n%s", diff)
	}
}

func TestSetBirthdate(t *testing.T) {
	mgr := NewManager(newMockStore())

	if _, err := mgr.SetBirthdate("1", mustDate(t, "29-02-2000")); err != nil {
		t.Fatal(err)
	}
	p, _ := mgr.GetOrCreate("1")
	if got := p.BirthdateOr("Not set"); got != "29-02-2000" {
		t.Errorf("birthdate = %q", got)
	}
}

func TestSetPreference(t *testing.T) {
	mgr := NewManager(newMockStore())

	p, err := mgr.SetPreference("1", PrefDailyAffirmation, true)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Preference(PrefDailyAffirmation) {
		t.Error("preference not set")
	}

	if _, err := mgr.SetPreference("1", "dark_mode", true); !errors.Is(err, ErrUnknownPreference) {
		t.Errorf("err = %v, want ErrUnknownPreference", err)
	}
}

func TestUpdate_ErrorSkipsWrite(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store)

	boom := errors.New("boom")
	_, err := mgr.Update("1", func(p *Profile) error {
		p.Triggers = append(p.Triggers, "x")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok := store.raw("1"); ok {
		t.Error("record written despite fn error")
	}
}

func TestUpdate_WriteErrorPropagates(t *testing.T) {
	store := newMockStore()
	store.failPut = errors.New("read-only filesystem")
	mgr := NewManager(store)

	if _, err := mgr.SetPronouns("1", "she/her"); err == nil {
		t.Error("expected write error")
	}
}

func TestDelete_Idempotent(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store)

	if _, err := mgr.SetPronouns("1", "he/him"); err != nil {
		t.Fatal(err)
	}

	existed, err := mgr.Delete("1")
	if err != nil || !existed {
		t.Fatalf("first Delete = %v, %v", existed, err)
	}
	existed, err = mgr.Delete("1")
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("second Delete reported existing data")
	}

	p, err := mgr.GetOrCreate("1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Errorf("profile after delete (-want +got):\n%s", diff)
	}
}

func TestConcurrentUpdatesLoseNothing(t *testing.T) {
	mgr := NewManager(newMockStore())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := mgr.AddTrigger("1", fmt.Sprintf("word-%d", i)); err != nil {
				t.Errorf("AddTrigger: %v", err)
			}
		}(i)
	}
	wg.Wait()

	p, _ := mgr.GetOrCreate("1")
	if len(p.Triggers) != n {
		t.Errorf("got %d triggers, want %d", len(p.Triggers), n)
	}
}

func TestReturnedProfileIsCopy(t *testing.T) {
	mgr := NewManager(newMockStore())
	if _, err := mgr.AddTrigger("1", "a"); err != nil {
		t.Fatal(err)
	}

	p, _ := mgr.GetOrCreate("1")
	p.Triggers[0] = "mutated"
	p.Milestones["01-01-2000"] = "x"

	again, _ := mgr.GetOrCreate("1")
	if again.Triggers[0] != "a" || len(again.Milestones) != 0 {
		t.Errorf("caller mutation leaked into manager: %+v", again)
	}
}

func TestTriggerLists_Cache(t *testing.T) {
	store := newMockStore()
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr := NewManagerWithClock(store, clk, time.Minute)

	if _, err := mgr.AddTrigger("b", "sad"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.AddTrigger("a", "lonely"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.GetOrCreate("c"); err != nil {
		t.Fatal(err)
	}

	store.getAllCalls = 0
	lists := mgr.TriggerLists()
	want := [][]string{{"lonely"}, {"sad"}}
	if diff := cmp.Diff(want, lists); diff != "" {
		t.Errorf("TriggerLists (-want +got):\n%s", diff)
	}

	mgr.TriggerLists()
	if store.getAllCalls != 1 {
		t.Errorf("getAllCalls = %d, want 1 (cached)", store.getAllCalls)
	}

	clk.Advance(2 * time.Minute)
	mgr.TriggerLists()
	if store.getAllCalls != 2 {
		t.Errorf("getAllCalls = %d, want 2 after TTL", store.getAllCalls)
	}

	// A write invalidates immediately.
	if _, err := mgr.AddTrigger("c", "storms"); err != nil {
		t.Fatal(err)
	}
	lists = mgr.TriggerLists()
	if len(lists) != 3 {
		t.Errorf("got %d lists after write, want 3", len(lists))
	}
}

func TestTriggerLists_StoreFailureIsEmpty(t *testing.T) {
	store := newMockStore()
	store.failGet = errors.New("locked")
	mgr := NewManager(store)

	if lists := mgr.TriggerLists(); len(lists) != 0 {
		t.Errorf("TriggerLists = %v, want empty", lists)
	}
}

func TestExportImport(t *testing.T) {
	src := NewManager(newMockStore())
	if _, err := src.SetPronouns("1", "she/they"); err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddTrigger("2", "fire"); err != nil {
		t.Fatal(err)
	}

	exported, err := src.Export()
	if err != nil {
		t.Fatal(err)
	}

	dstStore := newMockStore()
	dstStore.data["stale"] = `{}`
	dst := NewManager(dstStore)
	if err := dst.Import(exported); err != nil {
		t.Fatalf("Import: %v", err)
	}

	got, err := dst.Export()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(exported, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestSubscribers(t *testing.T) {
	mgr := NewManager(newMockStore())
	for _, id := range []string{"3", "1", "2"} {
		if _, err := mgr.SetPreference(id, PrefDailyAffirmation, id != "2"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := mgr.Subscribers(PrefDailyAffirmation)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1", "3"}, got); diff != "" {
		t.Errorf("Subscribers (-want +got):\n%s", diff)
	}
}
