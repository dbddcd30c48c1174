// ABOUTME: Core data models for calendar periods and appointment entries.
// ABOUTME: Provides constructors, range clamping, and display ordering for meetcal storage.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// Period bounds and entry limits.
const (
	MinYear       = 1970
	MaxYear       = 2100
	MaxNameLength = 20
	MinHour       = 1
	MaxHour       = 24
)

// ErrNameRequired is returned when an entry is created or renamed with an empty name.
var ErrNameRequired = errors.New("appointment name is required")

// Period is the (year, month) pair that scopes an appointment list and names its file.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a period with year and month clamped into range.
func NewPeriod(year int, month time.Month) Period {
	return Period{
		Year:  clamp(year, MinYear, MaxYear),
		Month: time.Month(clamp(int(month), int(time.January), int(time.December))),
	}
}

// CurrentPeriod returns the period containing the current local time.
func CurrentPeriod() Period {
	now := time.Now()
	return NewPeriod(now.Year(), now.Month())
}

// DaysInMonth returns the number of days in the period's month, accounting for leap years.
func (p Period) DaysInMonth() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FileName returns the name of the file backing this period.
func (p Period) FileName() string {
	return fmt.Sprintf("appointment-%04d-%02d.yaml", p.Year, int(p.Month))
}

// String formats the period as MM/YYYY.
func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", int(p.Month), p.Year)
}

// Entry is a single appointment: who, which day of the month, and which hour.
// Day and hour are clamped on every write and every read, so callers never
// observe an out-of-range value.
type Entry struct {
	name   string
	day    int
	hour   int
	maxDay int
}

// NewEntry creates an entry. maxDay is the upper bound for day (0 means 31).
func NewEntry(name string, day, hour, maxDay int) (Entry, error) {
	if name == "" {
		return Entry{}, ErrNameRequired
	}
	e := Entry{maxDay: maxDay}
	if err := e.SetName(name); err != nil {
		return Entry{}, err
	}
	e.SetDay(day)
	e.SetHour(hour)
	return e, nil
}

// Name returns the appointment name.
func (e Entry) Name() string {
	return e.name
}

// Day returns the day of the month, clamped to [1, maxDay].
func (e Entry) Day() int {
	return clamp(e.day, 1, e.lastDay())
}

// Hour returns the hour, clamped to [1, 24].
func (e Entry) Hour() int {
	return clamp(e.hour, MinHour, MaxHour)
}

// SetName renames the entry, truncating to MaxNameLength runes.
func (e *Entry) SetName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	e.name = name
	return nil
}

// SetDay sets the day, clamped to [1, maxDay].
func (e *Entry) SetDay(day int) {
	e.day = clamp(day, 1, e.lastDay())
}

// SetHour sets the hour, clamped to [1, 24].
func (e *Entry) SetHour(hour int) {
	e.hour = clamp(hour, MinHour, MaxHour)
}

// Less reports whether e sorts before other for display: day, then hour, then name.
func (e Entry) Less(other Entry) bool {
	if e.Day() != other.Day() {
		return e.Day() < other.Day()
	}
	if e.Hour() != other.Hour() {
		return e.Hour() < other.Hour()
	}
	return e.Name() < other.Name()
}

// Row returns the entry as a [name, day, hour] text row.
func (e Entry) Row() []string {
	return []string{e.Name(), strconv.Itoa(e.Day()), strconv.Itoa(e.Hour())}
}

// String formats the entry for log and CLI output.
func (e Entry) String() string {
	return fmt.Sprintf("%s (day %d, %02d:00)", e.Name(), e.Day(), e.Hour())
}

func (e Entry) lastDay() int {
	if e.maxDay <= 0 {
		return 31
	}
	return e.maxDay
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
