package scan

import "testing"

type staticSource struct {
	lists [][]string
	calls int
}

func (s *staticSource) TriggerLists() [][]string {
	s.calls++
	return s.lists
}

func TestScan(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		lists    [][]string
		wantWord string
		wantHit  bool
	}{
		{
			name:     "other member's trigger",
			body:     "I feel so lonely today",
			lists:    [][]string{{"sad"}, {"lonely"}},
			wantWord: "lonely",
			wantHit:  true,
		},
		{
			name:     "first match wins",
			body:     "sad and lonely",
			lists:    [][]string{{"lonely"}, {"sad"}},
			wantWord: "lonely",
			wantHit:  true,
		},
		{
			name:     "case insensitive",
			body:     "SPIDERS everywhere",
			lists:    [][]string{{"Spiders"}},
			wantWord: "Spiders",
			wantHit:  true,
		},
		{
			name:     "substring of a larger word",
			body:     "the crusade begins",
			lists:    [][]string{{"sad"}},
			wantWord: "sad",
			wantHit:  true,
		},
		{
			name:    "no match",
			body:    "sunny and bright",
			lists:   [][]string{{"sad"}, {"lonely"}},
			wantHit: false,
		},
		{
			name:    "empty lists",
			body:    "anything",
			lists:   [][]string{{}, nil},
			wantHit: false,
		},
		{
			name:    "blank word ignored",
			body:    "anything",
			lists:   [][]string{{""}},
			wantHit: false,
		},
		{
			name:    "empty body",
			body:    "",
			lists:   [][]string{{"sad"}},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Scan(tt.body, tt.lists)
			if ok != tt.wantHit {
				t.Fatalf("Scan hit = %v, want %v", ok, tt.wantHit)
			}
			if m.Word != tt.wantWord {
				t.Errorf("Scan word = %q, want %q", m.Word, tt.wantWord)
			}
		})
	}
}

func TestScannerCheck(t *testing.T) {
	src := &staticSource{lists: [][]string{{"sad"}, {"lonely"}}}
	s := New(src)

	if _, ok := s.Check("I feel so lonely today"); !ok {
		t.Error("expected a match")
	}
	if _, ok := s.Check("great day"); ok {
		t.Error("unexpected match")
	}
	if src.calls != 2 {
		t.Errorf("TriggerLists called %d times, want 2", src.calls)
	}
}
