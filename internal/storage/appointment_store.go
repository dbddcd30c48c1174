// ABOUTME: Interface definition for per-month appointment storage.
// ABOUTME: Defines the contract for validating, adding, deleting, searching, and persisting entries.
package storage

import (
	"github.com/2389-research/meetcal/internal/models"
)

// AppointmentStore holds the appointments of a single period. Operations report
// failure as false and never return low-level I/O errors to the caller.
type AppointmentStore interface {
	// Period returns the (year, month) the store is bound to.
	Period() models.Period

	// SetPeriod rebinds the store and discards the in-memory entries.
	// Call Load to read the new period's file.
	SetPeriod(p models.Period)

	// Path returns the file backing the bound period.
	Path() string

	// DaysInMonth returns the number of days in the bound period.
	DaysInMonth() int

	// ValidateName reports whether name is non-empty, at most 20 characters,
	// and not already present.
	ValidateName(name string) bool

	// ValidateDay reports whether day falls within the bound month.
	ValidateDay(day int) bool

	// ValidateDayText is ValidateDay for unparsed input; non-integers fail.
	ValidateDayText(day string) bool

	// ValidateHour reports whether hour is within [1, 24].
	ValidateHour(hour int) bool

	// ValidateHourText is ValidateHour for unparsed input; non-integers fail.
	ValidateHourText(hour string) bool

	// Index returns the position of the entry with exactly this name, or -1.
	Index(name string) int

	// Add validates and appends a new entry, then persists the list. Entries
	// saved by other stores on the same file since the last load are kept.
	Add(name string, day, hour int) bool

	// Delete removes the entry with the exact name and persists the list.
	Delete(name string) bool

	// Search returns entries whose name contains term.
	Search(term string, caseSensitive bool) []models.Entry

	// Count returns the number of entries.
	Count() int

	// Entries returns a copy of the entries in insertion order.
	Entries() []models.Entry

	// Sorted returns a copy of the entries in display order (day, hour, name).
	Sorted() []models.Entry

	// Persist writes the whole list to the period file.
	Persist() bool

	// Load replaces the entries with the contents of the period file.
	Load() bool

	// Close releases any resources held by the store.
	Close() error
}
