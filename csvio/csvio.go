// Package csvio converts between the roster's entry records and the flat
// CSV format used by the import/export endpoints.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"guestlist-backend/models"
)

// Header is the fixed column set of the import/export format.
var Header = []string{"id", "name", "checked_in", "checked_in_at"}

// ValidationError rejects an entire import; no rows are kept.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

// Read parses a full roster from CSV. Any malformed row fails the whole
// import with a *ValidationError, matching the store's all-or-nothing
// replace contract.
func Read(r io.Reader) ([]models.Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ValidationError{Reason: "empty file"}
	}
	if err != nil {
		return nil, &ValidationError{Line: 1, Reason: err.Error()}
	}
	if !headerMatches(header) {
		return nil, &ValidationError{Line: 1, Reason: "header must be " + strings.Join(Header, ",")}
	}

	var entries []models.Entry
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ValidationError{Line: line, Reason: err.Error()}
		}

		entry, err := parseRow(record, line, seen)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(col)) != Header[i] {
			return false
		}
	}
	return true
}

func parseRow(record []string, line int, seen map[string]bool) (models.Entry, error) {
	id := strings.TrimSpace(record[0])
	if id == "" {
		return models.Entry{}, &ValidationError{Line: line, Reason: "missing id"}
	}
	if seen[id] {
		return models.Entry{}, &ValidationError{Line: line, Reason: "duplicate id " + id}
	}
	seen[id] = true

	entry := models.Entry{
		ID:   id,
		Name: strings.TrimSpace(record[1]),
	}

	if v := strings.TrimSpace(record[2]); v != "" {
		checkedIn, err := strconv.ParseBool(v)
		if err != nil {
			return models.Entry{}, &ValidationError{Line: line, Reason: "invalid checked_in value " + strconv.Quote(v)}
		}
		entry.CheckedIn = checkedIn
	}

	if v := strings.TrimSpace(record[3]); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return models.Entry{}, &ValidationError{Line: line, Reason: "invalid checked_in_at value " + strconv.Quote(v)}
		}
		at = at.UTC()
		entry.CheckedInAt = &at
	}

	// checked_in_at must be set exactly when checked_in is true
	if entry.CheckedIn && entry.CheckedInAt == nil {
		return models.Entry{}, &ValidationError{Line: line, Reason: "checked_in is true but checked_in_at is empty"}
	}
	if !entry.CheckedIn && entry.CheckedInAt != nil {
		return models.Entry{}, &ValidationError{Line: line, Reason: "checked_in_at set on an unchecked entry"}
	}

	return entry, nil
}

// Write renders entries as CSV with the fixed header. Booleans come out as
// true/false, timestamps in ISO-8601 UTC with microsecond precision, absent
// timestamps as an empty field.
func Write(w io.Writer, entries []models.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		at := ""
		if entry.CheckedInAt != nil {
			at = models.FormatTimestamp(*entry.CheckedInAt)
		}
		record := []string{entry.ID, entry.Name, strconv.FormatBool(entry.CheckedIn), at}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
