package domain

import (
	"context"
	"io"
)

// CalendarCodec converts events to and from an interchange format such as iCalendar.
type CalendarCodec interface {
	Encode(name string, events []*Event) ([]byte, error)
	// Decode returns one draft per calendar entry. Drafts are not validated.
	Decode(r io.Reader) ([]EventDraft, error)
}

// CalendarFile is an encoded calendar ready for download.
type CalendarFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImportResult summarises an import: drafts that failed validation are skipped.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Events   []*Event `json:"events"`
}

// CalendarService exports and imports calendars.
type CalendarService interface {
	ExportPersonal(ctx context.Context, accountID string) (*CalendarFile, error)
	ExportGroup(ctx context.Context, groupID, accountID string) (*CalendarFile, error)
	Import(ctx context.Context, accountID string, r io.Reader) (*ImportResult, error)
}
