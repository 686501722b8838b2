package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func withAccount(req *http.Request, accountID string) *http.Request {
	s := &domain.Session{ID: "sess-1", AccountID: accountID}
	return req.WithContext(middleware.SetSession(req.Context(), s))
}

// decodeEnvelope decodes the body; data is re-decoded into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	saved      *domain.Event
	saveErr    error
	lastDraft  domain.EventDraft
	lastEdit   bool
	lastID     string
	slotEvent  *domain.Event
	lastSlot   domain.Slot
	deleteErr  error
	lastGroup  string
	events     []*domain.Event
	window     domain.TimeWindow
	lastView   domain.CalendarView
	lastAnchor time.Time
	total      int
	lastParams domain.PaginationParams
}

func (f *fakeEventService) ValidateEvent(draft domain.EventDraft) domain.ValidationErrors {
	return nil
}

func (f *fakeEventService) SaveEvent(ctx context.Context, accountID string, draft domain.EventDraft, isEditing bool, existingID string) (*domain.Event, error) {
	f.lastDraft, f.lastEdit, f.lastID = draft, isEditing, existingID
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.saved, nil
}

func (f *fakeEventService) CreateFromSlot(ctx context.Context, accountID string, slot domain.Slot, title string) (*domain.Event, error) {
	f.lastSlot = slot
	if title == "" {
		return nil, nil
	}
	return f.slotEvent, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, accountID, eventID, groupID string) (*domain.Event, error) {
	f.lastID, f.lastGroup = eventID, groupID
	if f.saved == nil {
		return nil, domain.ErrNotFound
	}
	return f.saved, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, accountID, eventID, groupID string) error {
	f.lastID, f.lastGroup = eventID, groupID
	return f.deleteErr
}

func (f *fakeEventService) ListEvents(ctx context.Context, accountID string, view domain.CalendarView, anchor time.Time) ([]*domain.Event, domain.TimeWindow, error) {
	f.lastView, f.lastAnchor = view, anchor
	return f.events, f.window, nil
}

func (f *fakeEventService) ListAgenda(ctx context.Context, accountID string, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastAnchor, f.lastParams = from, params
	return f.events, f.total, nil
}

// fakeGroupService implements domain.GroupService for handler tests.
type fakeGroupService struct {
	group       *domain.Group
	createErr   error
	membership  *domain.Membership
	created     bool
	joinErr     error
	lastCode    string
	mine        []*domain.GroupWithRole
	events      []*domain.Event
	eventsErr   error
	invite      *domain.InvitationResult
	inviteErr   error
	lastEmail   string
	lastGroupID string
}

func (f *fakeGroupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.group, nil
}

func (f *fakeGroupService) JoinGroup(ctx context.Context, code, accountID string) (*domain.Membership, bool, error) {
	f.lastCode = code
	if f.joinErr != nil {
		return nil, false, f.joinErr
	}
	return f.membership, f.created, nil
}

func (f *fakeGroupService) ListMyGroups(ctx context.Context, accountID string) ([]*domain.GroupWithRole, error) {
	return f.mine, nil
}

func (f *fakeGroupService) GetGroup(ctx context.Context, groupID, accountID string) (*domain.Group, error) {
	f.lastGroupID = groupID
	if f.group == nil {
		return nil, domain.ErrForbidden
	}
	return f.group, nil
}

func (f *fakeGroupService) ListGroupEvents(ctx context.Context, groupID, accountID string) ([]*domain.Event, error) {
	f.lastGroupID = groupID
	return f.events, f.eventsErr
}

func (f *fakeGroupService) InviteByEmail(ctx context.Context, groupID, inviterID, email string) (*domain.InvitationResult, error) {
	f.lastGroupID, f.lastEmail = groupID, email
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	return f.invite, nil
}
