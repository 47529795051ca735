package profile

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "15-06-1995", want: Date{1995, time.June, 15}},
		{in: "1-6-1995", want: Date{1995, time.June, 1}},
		{in: "29-02-2000", want: Date{2000, time.February, 29}},
		{in: "29-02-2024", want: Date{2024, time.February, 29}},
		{in: "29-02-2001", wantErr: true},
		{in: "29-02-1900", wantErr: true},
		{in: "31-04-2000", wantErr: true},
		{in: "00-01-2000", wantErr: true},
		{in: "10-13-2000", wantErr: true},
		{in: "2000-01-10", wantErr: true},
		{in: "15/06/1995", wantErr: true},
		{in: "aa-bb-cccc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateString(t *testing.T) {
	d := Date{Year: 987, Month: time.March, Day: 4}
	if got := d.String(); got != "04-03-0987" {
		t.Errorf("String() = %q", got)
	}
}

func TestDateJSON(t *testing.T) {
	var p struct {
		Birthdate *Date `json:"birthdate"`
	}
	if err := json.Unmarshal([]byte(`{"birthdate":"07-11-1990"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Birthdate == nil || *p.Birthdate != (Date{1990, time.November, 7}) {
		t.Fatalf("Birthdate = %+v", p.Birthdate)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"birthdate":"07-11-1990"}` {
		t.Errorf("marshal = %s", b)
	}

	if err := json.Unmarshal([]byte(`{"birthdate":"31-02-1990"}`), &p); err == nil {
		t.Error("expected error for impossible stored date")
	}
}
