// ABOUTME: Exporters that render a month of appointments as iCalendar or CSV.
// ABOUTME: ICS events are one hour long with UIDs derived from period and name.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389-research/meetcal/internal/models"
)

// ICSProductID identifies meetcal in generated calendars.
const ICSProductID = "-//2389 Research//meetcal//EN"

// uidNamespace scopes the name-based UUIDs used for ICS event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://2389.ai/meetcal"))

// errWriter keeps the first write error so callers can check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) line(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format+"\r\n", args...)
}

// EventUID returns the stable UID of the event for name in period.
func EventUID(period models.Period, name string) string {
	id := uuid.NewSHA1(uidNamespace, []byte(period.FileName()+"/"+name))
	return id.String() + "@meetcal"
}

// WriteICS renders entries as an iCalendar document. stamp is written as DTSTAMP.
func WriteICS(w io.Writer, period models.Period, entries []models.Entry, stamp time.Time) error {
	ew := &errWriter{w: w}

	ew.line("BEGIN:VCALENDAR")
	ew.line("VERSION:2.0")
	ew.line("PRODID:%s", ICSProductID)
	ew.line("CALSCALE:GREGORIAN")
	ew.line("X-WR-CALNAME:%s", escapeText("Appointments "+period.String()))

	for _, e := range entries {
		// Hour 24 normalizes to midnight of the following day.
		start := time.Date(period.Year, period.Month, e.Day(), e.Hour(), 0, 0, 0, time.Local)
		end := start.Add(time.Hour)

		ew.line("BEGIN:VEVENT")
		ew.line("UID:%s", EventUID(period, e.Name()))
		ew.line("DTSTAMP:%s", stamp.UTC().Format("20060102T150405Z"))
		ew.line("DTSTART:%s", start.Format("20060102T150405"))
		ew.line("DTEND:%s", end.Format("20060102T150405"))
		ew.line("SUMMARY:%s", escapeText(e.Name()))
		ew.line("END:VEVENT")
	}

	ew.line("END:VCALENDAR")
	return ew.err
}

// escapeText escapes characters that are special in iCalendar TEXT values.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}

// WriteCSV renders entries as name,day,hour rows with a header.
func WriteCSV(w io.Writer, entries []models.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "day", "hour"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(e.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
