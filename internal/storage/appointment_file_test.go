// ABOUTME: Tests for the file-backed appointment store.
// ABOUTME: Covers validation boundaries, add/delete/search, persistence roundtrip, and corrupt-file recovery.
package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/meetcal/internal/models"
)

var april2021 = models.NewPeriod(2021, time.April)

func newTestStore(t *testing.T, dir string, period models.Period) *FileStore {
	t.Helper()
	store, err := NewFileStore(dir, period)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryNames(entries []models.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewFileStoreRequiresDataDir(t *testing.T) {
	_, err := NewFileStore("", april2021)
	assert.Error(t, err)
}

func TestNewFileStoreClampsPeriod(t *testing.T) {
	store := newTestStore(t, t.TempDir(), models.Period{Year: 1800, Month: 15})
	assert.Equal(t, models.MinYear, store.Period().Year)
	assert.Equal(t, time.December, store.Period().Month)
}

func TestAprilScenario(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)

	assert.True(t, store.Add("Client A", 15, 9))
	assert.Equal(t, 1, store.Count())

	assert.False(t, store.Add("Client A", 1, 1), "duplicate name")
	assert.Equal(t, 1, store.Count())

	assert.False(t, store.Add("Client B", 32, 9), "day out of range")
	assert.Equal(t, 1, store.Count())

	assert.Equal(t, []string{"Client A"}, entryNames(store.Search("client", false)))
	assert.Empty(t, store.Search("client", true))
}

func TestValidateDayBoundaries(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)
	days := store.DaysInMonth()
	require.Equal(t, 30, days)

	assert.False(t, store.ValidateDay(0))
	assert.False(t, store.ValidateDay(days+1))
	assert.True(t, store.ValidateDay(1))
	assert.True(t, store.ValidateDay(days))
}

func TestValidateDayLeapYear(t *testing.T) {
	leap := newTestStore(t, t.TempDir(), models.NewPeriod(2024, time.February))
	assert.True(t, leap.ValidateDay(29))

	common := newTestStore(t, t.TempDir(), models.NewPeriod(2023, time.February))
	assert.False(t, common.ValidateDay(29))
}

func TestValidateHourBoundaries(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)

	assert.False(t, store.ValidateHour(0))
	assert.False(t, store.ValidateHour(25))
	assert.True(t, store.ValidateHour(1))
	assert.True(t, store.ValidateHour(24))
}

func TestValidateTextFailsClosed(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)

	tests := []struct {
		input  string
		dayOK  bool
		hourOK bool
	}{
		{"15", true, true},
		{" 7 ", true, true},
		{"30", true, false},
		{"0", false, false},
		{"", false, false},
		{"abc", false, false},
		{"1.5", false, false},
		{"99999999999999999999", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.dayOK, store.ValidateDayText(tt.input), "ValidateDayText(%q)", tt.input)
		assert.Equal(t, tt.hourOK, store.ValidateHourText(tt.input), "ValidateHourText(%q)", tt.input)
	}
}

func TestValidateName(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)
	require.True(t, store.Add("Existing", 1, 1))

	assert.False(t, store.ValidateName(""))
	assert.False(t, store.ValidateName(strings.Repeat("n", 21)))
	assert.True(t, store.ValidateName(strings.Repeat("n", 20)))
	assert.False(t, store.ValidateName("Existing"))
	assert.True(t, store.ValidateName("existing"), "uniqueness is case-sensitive")
}

func TestAddIncrementsCount(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)

	for i, name := range []string{"a", "b", "c", strings.Repeat("z", 20)} {
		before := store.Count()
		assert.True(t, store.Add(name, i+1, i+1))
		assert.Equal(t, before+1, store.Count())
	}
}

func TestAddPersistsImmediately(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("Client A", 15, 9))

	data, err := os.ReadFile(filepath.Join(dir, "appointment-2021-04.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Client A")
	assert.Contains(t, string(data), "version: 1")
}

func TestAddRollsBackWhenPersistFails(t *testing.T) {
	// A regular file where the data directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store := newTestStore(t, blocker, april2021)
	assert.False(t, store.Add("Client A", 15, 9))
	assert.Equal(t, 0, store.Count())
	assert.False(t, store.Persist())
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("Client A", 15, 9))
	require.True(t, store.Add("Client B", 16, 10))

	assert.True(t, store.Delete("Client A"))
	assert.Equal(t, []string{"Client B"}, entryNames(store.Entries()))

	reloaded := newTestStore(t, dir, april2021)
	assert.Equal(t, []string{"Client B"}, entryNames(reloaded.Entries()))
}

func TestDeleteMissingLeavesFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("Client A", 15, 9))

	path := store.Path()
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	infoBefore, err := os.Stat(path)
	require.NoError(t, err)

	assert.False(t, store.Delete("client a"))
	assert.False(t, store.Delete("Nobody"))
	assert.Equal(t, 1, store.Count())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	infoAfter, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, infoBefore.ModTime(), infoAfter.ModTime())
}

func TestSearch(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)
	require.True(t, store.Add("Dentist", 3, 9))
	require.True(t, store.Add("dentist follow-up", 10, 14))
	require.True(t, store.Add("Lunch", 3, 12))

	assert.Equal(t, []string{"Dentist", "dentist follow-up"}, entryNames(store.Search("DENT", false)))
	assert.Equal(t, []string{"dentist follow-up"}, entryNames(store.Search("dent", true)))
	assert.Empty(t, store.Search("", false))
	assert.Empty(t, store.Search("zzz", false))

	first := store.Search("t", false)
	second := store.Search("t", false)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, store.Count())
}

func TestEntriesIsDefensiveCopy(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)
	require.True(t, store.Add("Client A", 15, 9))

	entries := store.Entries()
	entries[0].SetDay(1)
	_ = append(entries, entries[0])

	assert.Equal(t, 15, store.Entries()[0].Day())
	assert.Equal(t, 1, store.Count())
}

func TestSortedDoesNotReorderStore(t *testing.T) {
	store := newTestStore(t, t.TempDir(), april2021)
	require.True(t, store.Add("Zed", 2, 9))
	require.True(t, store.Add("Amy", 2, 9))
	require.True(t, store.Add("Bob", 1, 17))

	assert.Equal(t, []string{"Bob", "Amy", "Zed"}, entryNames(store.Sorted()))
	assert.Equal(t, []string{"Zed", "Amy", "Bob"}, entryNames(store.Entries()))
}

func TestPersistLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("Client A", 15, 9))
	require.True(t, store.Add("Client B", 1, 24))
	require.True(t, store.Add("Client C", 30, 1))
	require.True(t, store.Persist())

	fresh := newTestStore(t, dir, april2021)
	assert.ElementsMatch(t, store.Entries(), fresh.Entries())
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "does", "not", "exist"), april2021)
	assert.Equal(t, 0, store.Count())
	assert.True(t, store.Load())
}

func TestLoadDropsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	content := `version: 1
year: 2021
month: 4
appointments:
  - {name: Good, day: 15, hour: 9}
  - {name: "", day: 2, hour: 2}
  - {name: Bad Day, day: 31, hour: 9}
  - {name: Bad Hour, day: 3, hour: 25}
  - {name: Good, day: 4, hour: 4}
  - {name: This name is far too long, day: 5, hour: 5}
  - {name: Also Good, day: 30, hour: 24}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, april2021.FileName()), []byte(content), 0644))

	var logs bytes.Buffer
	store, err := NewFileStore(dir, april2021, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Good", "Also Good"}, entryNames(store.Entries()))
	assert.Equal(t, 15, store.Entries()[0].Day())
	assert.Contains(t, logs.String(), "Dropping invalid appointment")
}

func TestLoadCorruptFileIsQuarantined(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong shape", "- just\n- a list\n"},
		{"not yaml", "version: [1\n"},
		{"unknown field", "version: 1\nyear: 2021\nmonth: 4\nclients: []\n"},
		{"wrong version", "version: 2\nyear: 2021\nmonth: 4\nappointments: []\n"},
		{"wrong period", "version: 1\nyear: 2020\nmonth: 4\nappointments: []\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, april2021.FileName())
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			store := newTestStore(t, dir, april2021)
			assert.Equal(t, 0, store.Count())

			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			assert.False(t, store.Load())

			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err), "corrupt file should no longer exist at %s", path)

			quarantined, err := filepath.Glob(path + ".corrupt-*")
			require.NoError(t, err)
			assert.NotEmpty(t, quarantined)
		})
	}
}

func TestSetPeriodDiscardsEntries(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("April thing", 10, 10))

	store.SetPeriod(models.NewPeriod(2021, time.May))
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 31, store.DaysInMonth())
	assert.True(t, store.Load())
	assert.Equal(t, 0, store.Count())

	require.True(t, store.Add("May thing", 31, 10))

	store.SetPeriod(april2021)
	require.True(t, store.Load())
	assert.Equal(t, []string{"April thing"}, entryNames(store.Entries()))
}

func TestLoadTwiceDoesNotDuplicate(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, april2021)
	require.True(t, store.Add("Client A", 15, 9))

	assert.True(t, store.Load())
	assert.Equal(t, 1, store.Count())
}

func TestLoadReplacesEntries(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	store, err := NewFileStore(dir, april2021, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	require.True(t, store.Add("Client A", 15, 9))
	require.True(t, store.Add("Client B", 16, 10))

	assert.True(t, store.Load())
	assert.Equal(t, []string{"Client A", "Client B"}, entryNames(store.Entries()))
	assert.NotContains(t, logs.String(), "Dropping invalid appointment")

	other := newTestStore(t, dir, april2021)
	require.True(t, other.Delete("Client A"))

	assert.True(t, store.Load())
	assert.Equal(t, []string{"Client B"}, entryNames(store.Entries()))
}

func TestStoresSharingAFileKeepEachOthersWrites(t *testing.T) {
	dir := t.TempDir()
	server := newTestStore(t, dir, april2021)
	cli := newTestStore(t, dir, april2021)

	require.True(t, cli.Add("From CLI", 3, 9))
	require.True(t, server.Add("From MCP", 4, 10))
	assert.ElementsMatch(t, []string{"From CLI", "From MCP"}, entryNames(server.Entries()))

	fresh := newTestStore(t, dir, april2021)
	assert.ElementsMatch(t, []string{"From CLI", "From MCP"}, entryNames(fresh.Entries()))

	require.True(t, cli.Delete("From MCP"))
	require.True(t, server.Add("Later", 5, 11))

	fresh = newTestStore(t, dir, april2021)
	assert.ElementsMatch(t, []string{"From CLI", "Later"}, entryNames(fresh.Entries()))
}

func TestAddRejectsNameSavedByAnotherStore(t *testing.T) {
	dir := t.TempDir()
	a := newTestStore(t, dir, april2021)
	b := newTestStore(t, dir, april2021)

	require.True(t, a.Add("Client A", 15, 9))
	assert.True(t, b.ValidateName("Client A"), "b has not reloaded yet")
	assert.False(t, b.Add("Client A", 16, 10))
	assert.Equal(t, []string{"Client A"}, entryNames(b.Entries()))

	fresh := newTestStore(t, dir, april2021)
	require.Equal(t, 1, fresh.Count())
	assert.Equal(t, 15, fresh.Entries()[0].Day())
}

func TestDeleteOfEntryRemovedElsewhere(t *testing.T) {
	dir := t.TempDir()
	a := newTestStore(t, dir, april2021)
	require.True(t, a.Add("Client A", 15, 9))
	b := newTestStore(t, dir, april2021)

	require.True(t, a.Delete("Client A"))
	assert.False(t, b.Delete("Client A"))
	assert.Equal(t, 0, b.Count())
}
