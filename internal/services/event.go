package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"calendrier/internal/domain"
)

var colorRegexp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// localTimeLayouts are tried, in order, for timestamps without a zone offset.
var localTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type eventService struct {
	eventRepo      domain.EventRepository
	groupEventRepo domain.GroupEventRepository
	membershipRepo domain.MembershipRepository
	loc            *time.Location
	weekStart      time.Weekday
	contextTimeout time.Duration
}

// NewEventService returns an EventService. Timestamps without an offset are read in loc.
func NewEventService(
	eventRepo domain.EventRepository,
	groupEventRepo domain.GroupEventRepository,
	membershipRepo domain.MembershipRepository,
	loc *time.Location,
	weekStart time.Weekday,
	timeout time.Duration,
) domain.EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		eventRepo:      eventRepo,
		groupEventRepo: groupEventRepo,
		membershipRepo: membershipRepo,
		loc:            loc,
		weekStart:      weekStart,
		contextTimeout: timeout,
	}
}

// ParseEventTime accepts RFC 3339 (with optional fractional seconds) or one of
// the local layouts interpreted in loc. Instants are truncated to microseconds,
// the resolution of a Postgres timestamptz.
func ParseEventTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Truncate(time.Microsecond), nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// ValidateEvent checks every rule independently and returns all failures.
func (s *eventService) ValidateEvent(draft domain.EventDraft) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(draft.Title) == "" {
		errs = append(errs, domain.NewFieldError("title", domain.TitleRequired))
	}

	var start, end time.Time
	startOK, endOK := false, false
	if raw := strings.TrimSpace(draft.Start); raw == "" {
		errs = append(errs, domain.NewFieldError("start", domain.StartRequired))
	} else if t, err := ParseEventTime(raw, s.loc); err != nil {
		errs = append(errs, domain.NewFieldError("start", domain.StartInvalid))
	} else {
		start, startOK = t, true
	}
	if raw := strings.TrimSpace(draft.End); raw == "" {
		errs = append(errs, domain.NewFieldError("end", domain.EndRequired))
	} else if t, err := ParseEventTime(raw, s.loc); err != nil {
		errs = append(errs, domain.NewFieldError("end", domain.EndInvalid))
	} else {
		end, endOK = t, true
	}
	if startOK && endOK && !end.After(start) {
		errs = append(errs, domain.NewFieldError("end", domain.EndNotAfterStart))
	}

	if c := strings.TrimSpace(draft.Color); c != "" && !colorRegexp.MatchString(c) {
		errs = append(errs, domain.NewFieldError("color", domain.ColorInvalid))
	}
	return errs
}

func (s *eventService) SaveEvent(ctx context.Context, accountID string, draft domain.EventDraft, isEditing bool, existingID string) (*domain.Event, error) {
	if errs := s.ValidateEvent(draft); len(errs) > 0 {
		return nil, errs
	}
	if isEditing && existingID == "" {
		return nil, fmt.Errorf("%w: event id is required when editing", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Both parse; ValidateEvent already accepted them.
	start, _ := ParseEventTime(strings.TrimSpace(draft.Start), s.loc)
	end, _ := ParseEventTime(strings.TrimSpace(draft.End), s.loc)
	title := strings.TrimSpace(draft.Title)
	category := optionalString(draft.Category)
	color := optionalString(draft.Color)

	if draft.GroupID != "" {
		return s.saveGroupEvent(ctx, accountID, draft, isEditing, existingID, title, start, end, category, color)
	}

	now := time.Now()
	if isEditing {
		event, err := s.eventRepo.GetByID(ctx, existingID, accountID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get event: %w", err)
		}
		event.Title, event.Start, event.End = title, start, end
		event.Category, event.Color = category, color
		event.UpdatedAt = now
		if err := s.eventRepo.Update(ctx, event); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("update event: %w", err)
		}
		return event, nil
	}

	event := &domain.Event{
		Title:     title,
		Start:     start,
		End:       end,
		AllDay:    draft.AllDay,
		Category:  category,
		Color:     color,
		OwnerID:   accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) saveGroupEvent(ctx context.Context, accountID string, draft domain.EventDraft, isEditing bool, existingID, title string, start, end time.Time, category, color *string) (*domain.Event, error) {
	member, err := requireMembership(ctx, s.membershipRepo, draft.GroupID, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if isEditing {
		event, err := s.groupEventRepo.GetByID(ctx, existingID, draft.GroupID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get group event: %w", err)
		}
		if !canModifyGroupEvent(event, member) {
			return nil, domain.ErrForbidden
		}
		event.Title, event.Start, event.End = title, start, end
		event.Category, event.Color = category, color
		event.UpdatedAt = now
		if err := s.groupEventRepo.Update(ctx, event); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("update group event: %w", err)
		}
		return event, nil
	}

	event := &domain.Event{
		Title:     title,
		Start:     start,
		End:       end,
		AllDay:    draft.AllDay,
		Category:  category,
		Color:     color,
		GroupID:   draft.GroupID,
		CreatedBy: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.groupEventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create group event: %w", err)
	}
	return event, nil
}

func (s *eventService) CreateFromSlot(ctx context.Context, accountID string, slot domain.Slot, title string) (*domain.Event, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}
	draft := domain.EventDraft{
		Title:    title,
		AllDay:   slot.AllDay,
		Category: slot.Category,
		Color:    slot.Color,
		GroupID:  slot.GroupID,
	}
	if !slot.Start.IsZero() {
		draft.Start = slot.Start.Format(time.RFC3339Nano)
	}
	if !slot.End.IsZero() {
		draft.End = slot.End.Format(time.RFC3339Nano)
	}
	return s.SaveEvent(ctx, accountID, draft, false, "")
}

func (s *eventService) GetEvent(ctx context.Context, accountID, eventID, groupID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		event *domain.Event
		err   error
	)
	if groupID != "" {
		if _, err := requireMembership(ctx, s.membershipRepo, groupID, accountID); err != nil {
			return nil, err
		}
		event, err = s.groupEventRepo.GetByID(ctx, eventID, groupID)
	} else {
		event, err = s.eventRepo.GetByID(ctx, eventID, accountID)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, accountID, eventID, groupID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if groupID == "" {
		if err := s.eventRepo.Delete(ctx, eventID, accountID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	}

	member, err := requireMembership(ctx, s.membershipRepo, groupID, accountID)
	if err != nil {
		return err
	}
	event, err := s.groupEventRepo.GetByID(ctx, eventID, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get group event: %w", err)
	}
	if !canModifyGroupEvent(event, member) {
		return domain.ErrForbidden
	}
	if err := s.groupEventRepo.Delete(ctx, eventID, groupID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete group event: %w", err)
	}
	return nil
}

func (s *eventService) ListEvents(ctx context.Context, accountID string, view domain.CalendarView, anchor time.Time) ([]*domain.Event, domain.TimeWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	window := domain.ViewRange(view, anchor, s.weekStart, s.loc)
	events, err := s.eventRepo.ListByOwner(ctx, accountID, window)
	if err != nil {
		return nil, window, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, window, nil
}

// ListAgenda merges personal events with the events of every group the account
// belongs to, from the start of from's day onward, and returns one page plus the total.
func (s *eventService) ListAgenda(ctx context.Context, accountID string, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	window := domain.ViewRange(domain.ViewAgenda, from, s.weekStart, s.loc)
	all, err := s.eventRepo.ListByOwner(ctx, accountID, window)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	groups, err := s.membershipRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("list memberships: %w", err)
	}
	for _, g := range groups {
		events, err := s.groupEventRepo.ListByGroup(ctx, g.Group.ID, window)
		if err != nil {
			return nil, 0, fmt.Errorf("list group events: %w", err)
		}
		all = append(all, events...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start.Equal(all[j].Start) {
			return all[i].End.Before(all[j].End)
		}
		return all[i].Start.Before(all[j].Start)
	})

	lo, hi := params.Slice(len(all))
	page := make([]*domain.Event, hi-lo)
	copy(page, all[lo:hi])
	return page, len(all), nil
}

func canModifyGroupEvent(event *domain.Event, member *domain.Membership) bool {
	return event.CreatedBy == member.AccountID || member.Role == domain.RoleAdmin
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
