package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned for input that is not a real DD-MM-YYYY calendar date.
var ErrInvalidDate = errors.New("invalid date")

const (
	minYear = 1
	maxYear = 9999
)

// Date is a calendar day with no time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses day-month-year input such as "15-06-1995". Day and month
// may omit the leading zero. Impossible dates (31-04, 29-02 outside leap
// years) are rejected.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q: want DD-MM-YYYY", ErrInvalidDate, s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q: %q is not a number", ErrInvalidDate, s, part)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]

	if year < minYear || year > maxYear {
		return Date{}, fmt.Errorf("%w: %q: year out of range", ErrInvalidDate, s)
	}
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: %q: month out of range", ErrInvalidDate, s)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return Date{}, fmt.Errorf("%w: %q: day out of range", ErrInvalidDate, s)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

func daysIn(m time.Month, year int) int {
	// Day 0 of the following month is the last day of m.
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String formats the date as DD-MM-YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
