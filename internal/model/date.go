package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the canonical string representation of a Date.
const DateFormat = "2006-01-02"

// Date is a day-granularity civil date. It is the storage key for every
// series point, so it must be comparable and order-preserving in its
// string form.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Date())
}

// Today returns the current UTC date.
func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a Date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want %s): %w", s, DateFormat, err)
	}
	return NewDate(t.Date()), nil
}

// MustDate is like ParseDate but panics on error. For tests and fixed constants.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Time returns the canonical representation of the day: midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date, used as the "no bound" marker.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// WeekEnding returns the Sunday on or after d. Points sharing a WeekEnding
// belong to the same weekly bucket.
func (d Date) WeekEnding() Date {
	wd := int(d.Time().Weekday()) // Sunday == 0
	if wd == 0 {
		return d
	}
	return d.AddDays(7 - wd)
}

func (d Date) String() string { return d.Time().Format(DateFormat) }

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
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
