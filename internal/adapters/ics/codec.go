// Package ics encodes and decodes events as iCalendar (RFC 5545) data.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"calendrier/internal/domain"
)

const (
	productID = "-//calendrier//calendar export//EN"
	uidDomain = "calendrier"

	propertyColor = ical.ComponentProperty("COLOR")
)

type codec struct{}

// NewCodec returns a domain.CalendarCodec for iCalendar data.
func NewCodec() domain.CalendarCodec {
	return codec{}
}

func (codec) Encode(name string, events []*domain.Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(name)
	cal.SetXWRCalName(name)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@" + uidDomain)
		ve.SetDtStampTime(e.UpdatedAt.UTC())
		ve.SetCreatedTime(e.CreatedAt.UTC())
		ve.SetModifiedAt(e.UpdatedAt.UTC())
		ve.SetSummary(e.Title)
		if e.AllDay {
			ve.SetAllDayStartAt(e.Start)
			ve.SetAllDayEndAt(e.End)
		} else {
			ve.SetStartAt(e.Start.UTC())
			ve.SetEndAt(e.End.UTC())
		}
		if e.Category != nil {
			ve.SetProperty(ical.ComponentPropertyCategories, *e.Category)
		}
		if e.Color != nil {
			ve.SetProperty(propertyColor, *e.Color)
		}
	}
	return []byte(cal.Serialize()), nil
}

func (codec) Decode(r io.Reader) ([]domain.EventDraft, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse calendar: %w", domain.ErrInvalidInput, err)
	}

	events := cal.Events()
	drafts := make([]domain.EventDraft, 0, len(events))
	for _, ve := range events {
		drafts = append(drafts, decodeEvent(ve))
	}
	return drafts, nil
}

// decodeEvent maps one VEVENT to a draft. Timestamps that cannot be read are
// left empty so that validation reports them.
func decodeEvent(ve *ical.VEvent) domain.EventDraft {
	var d domain.EventDraft
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		d.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		// Only the first category is kept.
		d.Category = strings.TrimSpace(strings.Split(p.Value, ",")[0])
	}
	if p := ve.GetProperty(propertyColor); p != nil {
		d.Color = p.Value
	}

	if isAllDay(ve) {
		d.AllDay = true
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return d
		}
		d.Start = start.Format(time.DateOnly)
		end, err := ve.GetAllDayEndAt()
		if err != nil {
			// A date-only event without DTEND lasts one day.
			end = start.AddDate(0, 0, 1)
		}
		d.End = end.Format(time.DateOnly)
		return d
	}

	if start, err := ve.GetStartAt(); err == nil {
		d.Start = start.Format(time.RFC3339Nano)
	}
	if end, err := ve.GetEndAt(); err == nil {
		d.End = end.Format(time.RFC3339Nano)
	}
	return d
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
