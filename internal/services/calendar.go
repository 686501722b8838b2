package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gosimple/slug"

	"calendrier/internal/domain"
)

const icsContentType = "text/calendar; charset=utf-8"

type calendarService struct {
	events         domain.EventService
	eventRepo      domain.EventRepository
	groupRepo      domain.GroupRepository
	groupEventRepo domain.GroupEventRepository
	membershipRepo domain.MembershipRepository
	accountRepo    domain.AccountRepository
	codec          domain.CalendarCodec
	contextTimeout time.Duration
}

// NewCalendarService returns a CalendarService. Imported entries go through
// events.SaveEvent so they get the same validation as hand-entered ones.
func NewCalendarService(
	events domain.EventService,
	eventRepo domain.EventRepository,
	groupRepo domain.GroupRepository,
	groupEventRepo domain.GroupEventRepository,
	membershipRepo domain.MembershipRepository,
	accountRepo domain.AccountRepository,
	codec domain.CalendarCodec,
	timeout time.Duration,
) domain.CalendarService {
	return &calendarService{
		events:         events,
		eventRepo:      eventRepo,
		groupRepo:      groupRepo,
		groupEventRepo: groupEventRepo,
		membershipRepo: membershipRepo,
		accountRepo:    accountRepo,
		codec:          codec,
		contextTimeout: timeout,
	}
}

func (s *calendarService) ExportPersonal(ctx context.Context, accountID string) (*domain.CalendarFile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	events, err := s.eventRepo.ListByOwner(ctx, accountID, domain.TimeWindow{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	name := account.DisplayName
	if name == "" {
		name = account.Email
	}
	return s.encode(name, events)
}

func (s *calendarService) ExportGroup(ctx context.Context, groupID, accountID string) (*domain.CalendarFile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := requireMembership(ctx, s.membershipRepo, groupID, accountID); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	events, err := s.groupEventRepo.ListByGroup(ctx, groupID, domain.TimeWindow{})
	if err != nil {
		return nil, fmt.Errorf("list group events: %w", err)
	}
	return s.encode(group.Name, events)
}

func (s *calendarService) encode(name string, events []*domain.Event) (*domain.CalendarFile, error) {
	content, err := s.codec.Encode(name, events)
	if err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	base := slug.Make(name)
	if base == "" {
		base = "calendar"
	}
	return &domain.CalendarFile{
		Filename:    base + ".ics",
		ContentType: icsContentType,
		Content:     content,
	}, nil
}

// Import adds every valid entry of r to the caller's personal calendar.
// Entries failing validation are counted as skipped; a store error aborts.
func (s *calendarService) Import(ctx context.Context, accountID string, r io.Reader) (*domain.ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	drafts, err := s.codec.Decode(r)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Events: []*domain.Event{}}
	for _, d := range drafts {
		d.GroupID = ""
		event, err := s.events.SaveEvent(ctx, accountID, d, false, "")
		if err != nil {
			var verrs domain.ValidationErrors
			if errors.As(err, &verrs) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Imported++
		result.Events = append(result.Events, event)
	}
	return result, nil
}
