// ABOUTME: File-backed appointment store with one YAML document per month.
// ABOUTME: Validates entries, persists atomically under an advisory lock, and quarantines corrupt files.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/meetcal/internal/models"
)

// schemaVersion is the version written to, and required from, every period file.
const schemaVersion = 1

// errCorrupt marks a period file whose content does not decode into the schema.
var errCorrupt = errors.New("corrupt appointment file")

// appointmentFile is the on-disk shape of a period file.
type appointmentFile struct {
	Version      int                 `yaml:"version"`
	Year         int                 `yaml:"year"`
	Month        int                 `yaml:"month"`
	Appointments []appointmentRecord `yaml:"appointments"`
}

type appointmentRecord struct {
	Name string `yaml:"name"`
	Day  int    `yaml:"day"`
	Hour int    `yaml:"hour"`
}

// FileStore keeps one period's appointments in memory and mirrors them to
// <dataDir>/appointment-YYYY-MM.yaml. It is not safe for concurrent use.
// Other processes may share the file: Add and Delete take <file>.lock
// exclusively and merge with the file's current contents.
type FileStore struct {
	dataDir string
	period  models.Period
	entries []models.Entry
	log     zerolog.Logger
}

var _ AppointmentStore = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger that receives persistence diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *FileStore) {
		s.log = l
	}
}

// NewFileStore creates a store for period under dataDir and loads the period file.
// A failed load is logged and leaves the store empty.
func NewFileStore(dataDir string, period models.Period, opts ...Option) (*FileStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}

	s := &FileStore{
		dataDir: dataDir,
		period:  models.NewPeriod(period.Year, period.Month),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Load()
	return s, nil
}

// Path returns the file backing the current period.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, s.period.FileName())
}

// Period returns the bound period.
func (s *FileStore) Period() models.Period {
	return s.period
}

// SetPeriod rebinds the store and discards the in-memory entries.
func (s *FileStore) SetPeriod(p models.Period) {
	s.period = models.NewPeriod(p.Year, p.Month)
	s.entries = nil
}

// DaysInMonth returns the number of days in the bound period.
func (s *FileStore) DaysInMonth() int {
	return s.period.DaysInMonth()
}

// ValidateName reports whether name can be added.
func (s *FileStore) ValidateName(name string) bool {
	return name != "" &&
		utf8.RuneCountInString(name) <= models.MaxNameLength &&
		s.Index(name) == -1
}

// ValidateDay reports whether day falls within the bound month.
func (s *FileStore) ValidateDay(day int) bool {
	return day >= 1 && day <= s.DaysInMonth()
}

// ValidateDayText parses day and validates it.
func (s *FileStore) ValidateDayText(day string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return false
	}
	return s.ValidateDay(n)
}

// ValidateHour reports whether hour is within [1, 24].
func (s *FileStore) ValidateHour(hour int) bool {
	return hour >= models.MinHour && hour <= models.MaxHour
}

// ValidateHourText parses hour and validates it.
func (s *FileStore) ValidateHourText(hour string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil {
		return false
	}
	return s.ValidateHour(n)
}

// ValidateEntry reports whether e could be added to the store as-is.
func (s *FileStore) ValidateEntry(e models.Entry) bool {
	return s.ValidateName(e.Name()) && s.ValidateDay(e.Day()) && s.ValidateHour(e.Hour())
}

// Index returns the position of the entry with exactly this name, or -1.
func (s *FileStore) Index(name string) int {
	return slices.IndexFunc(s.entries, func(e models.Entry) bool {
		return e.Name() == name
	})
}

// Add validates and appends a new entry, then persists. The period file is
// re-read under an exclusive lock first, so entries written by other processes
// are kept and names stay unique across them. If persisting fails the entry
// is not added.
func (s *FileStore) Add(name string, day, hour int) bool {
	if name == "" || utf8.RuneCountInString(name) > models.MaxNameLength ||
		!s.ValidateDay(day) || !s.ValidateHour(hour) {
		return false
	}

	return s.update(func() bool {
		if !s.ValidateName(name) {
			return false
		}
		entry, err := models.NewEntry(name, day, hour, s.DaysInMonth())
		if err != nil {
			return false
		}
		s.entries = append(s.entries, entry)
		return true
	})
}

// Delete removes the first entry with exactly this name, then persists. Like
// Add, it works on the current file contents. If persisting fails the entry
// is kept.
func (s *FileStore) Delete(name string) bool {
	if name == "" {
		return false
	}

	return s.update(func() bool {
		idx := s.Index(name)
		if idx == -1 {
			return false
		}
		s.entries = slices.Delete(slices.Clone(s.entries), idx, idx+1)
		return true
	})
}

// update reloads the period file and applies change while holding the
// exclusive lock, then writes the result. Nothing is written when change
// reports false. On a failed write the entries are those read from disk.
func (s *FileStore) update(change func() bool) bool {
	path := s.Path()

	unlock, err := s.lock()
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to save appointments")
		return false
	}
	defer unlock()

	doc, err := s.decode()
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, errCorrupt) {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to load appointments")
		return false
	}
	s.entries = nil
	s.apply(doc, err)
	current := s.entries

	if !change() {
		return false
	}
	if err := s.save(); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to save appointments")
		s.entries = current
		return false
	}
	return true
}

// Search returns entries whose name contains term. An empty term matches nothing.
func (s *FileStore) Search(term string, caseSensitive bool) []models.Entry {
	results := []models.Entry{}
	if term == "" {
		return results
	}

	if !caseSensitive {
		term = strings.ToLower(term)
	}
	for _, e := range s.entries {
		name := e.Name()
		if !caseSensitive {
			name = strings.ToLower(name)
		}
		if strings.Contains(name, term) {
			results = append(results, e)
		}
	}
	return results
}

// Count returns the number of entries.
func (s *FileStore) Count() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *FileStore) Entries() []models.Entry {
	return append([]models.Entry{}, s.entries...)
}

// Sorted returns a copy of the entries ordered by day, hour, then name.
func (s *FileStore) Sorted() []models.Entry {
	sorted := s.Entries()
	slices.SortStableFunc(sorted, func(a, b models.Entry) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return sorted
}

// Persist writes the whole list to the period file, replacing what is there.
func (s *FileStore) Persist() bool {
	err := s.write()
	if err != nil {
		s.log.Error().Err(err).Str("path", s.Path()).Msg("Failed to save appointments")
		return false
	}
	return true
}

// Load replaces the entries with every valid entry of the period file. A
// missing file counts as success and leaves the store empty. A file that does
// not match the schema is moved aside to <file>.corrupt-<timestamp> and Load
// reports false.
func (s *FileStore) Load() bool {
	s.entries = nil
	return s.apply(s.read())
}

// apply appends the valid entries of doc, or handles the error that reading
// doc produced.
func (s *FileStore) apply(doc *appointmentFile, err error) bool {
	path := s.Path()

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug().Str("path", path).Msg("No appointment file, starting empty")
		return true
	case errors.Is(err, errCorrupt):
		s.log.Warn().Err(err).Str("path", path).Msg("Appointment file is corrupt")
		s.quarantine()
		return false
	default:
		s.log.Error().Err(err).Str("path", path).Msg("Failed to load appointments")
		return false
	}

	days := s.DaysInMonth()
	for _, rec := range doc.Appointments {
		if !s.ValidateName(rec.Name) || !s.ValidateDay(rec.Day) || !s.ValidateHour(rec.Hour) {
			s.log.Warn().
				Str("path", path).
				Str("name", rec.Name).
				Int("day", rec.Day).
				Int("hour", rec.Hour).
				Msg("Dropping invalid appointment")
			continue
		}
		entry, err := models.NewEntry(rec.Name, rec.Day, rec.Hour, days)
		if err != nil {
			continue
		}
		s.entries = append(s.entries, entry)
	}
	return true
}

// Close releases any resources held by the store.
func (s *FileStore) Close() error {
	return nil
}

// lock creates the data directory and takes the exclusive lock on the period
// file. The returned func releases it.
func (s *FileStore) lock() (func(), error) {
	if err := os.MkdirAll(s.dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fl := flock.New(s.Path() + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock appointment file: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// write replaces the period file under the exclusive lock.
func (s *FileStore) write() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return s.save()
}

// save encodes the entries and replaces the period file atomically. The
// caller holds the exclusive lock.
func (s *FileStore) save() error {
	doc := appointmentFile{
		Version:      schemaVersion,
		Year:         s.period.Year,
		Month:        int(s.period.Month),
		Appointments: make([]appointmentRecord, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		doc.Appointments = append(doc.Appointments, appointmentRecord{
			Name: e.Name(),
			Day:  e.Day(),
			Hour: e.Hour(),
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode appointments: %w", err)
	}
	if err := renameio.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write appointment file: %w", err)
	}
	return nil
}

// read decodes the period file under a shared lock. Missing files return an
// fs.ErrNotExist error, undecodable ones an errCorrupt error.
func (s *FileStore) read() (*appointmentFile, error) {
	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	fl := flock.New(path + ".lock")
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock appointment file: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	return s.decode()
}

// decode reads and checks the period file without locking.
func (s *FileStore) decode() (*appointmentFile, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read appointment file: %w", err)
	}

	var doc appointmentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if doc.Version != schemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorrupt, doc.Version)
	}
	if doc.Year != s.period.Year || doc.Month != int(s.period.Month) {
		return nil, fmt.Errorf("%w: file holds %02d/%d", errCorrupt, doc.Month, doc.Year)
	}
	return &doc, nil
}

// quarantine moves the period file aside so it no longer shadows the period.
// Falls back to removing it when the rename fails.
func (s *FileStore) quarantine() {
	path := s.Path()
	target := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
	if err := os.Rename(path, target); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to quarantine corrupt file, removing")
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Error().Err(err).Str("path", path).Msg("Failed to remove corrupt file")
		}
		return
	}
	s.log.Warn().Str("path", path).Str("quarantined", target).Msg("Moved corrupt appointment file aside")
}
