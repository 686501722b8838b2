package domain

import (
	"context"
	"time"
)

// Event is a calendar entry owned either by one account (personal) or by a group.
// Exactly one of OwnerID and GroupID is set.
// swagger:model Event
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day"`
	Category  *string   `json:"category,omitempty"`
	Color     *string   `json:"color,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsGroupEvent reports whether the event lives in a group calendar.
func (e *Event) IsGroupEvent() bool {
	return e.GroupID != ""
}

// EventDraft is an unvalidated event payload as entered by a user.
// Start and End are kept as text so that "missing" and "unparseable" stay distinguishable.
type EventDraft struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	AllDay   bool   `json:"all_day"`
	Category string `json:"category"`
	Color    string `json:"color"`
	GroupID  string `json:"group_id"`
}

// Slot is a time range picked directly on the calendar grid.
type Slot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Category string    `json:"category"`
	Color    string    `json:"color"`
	GroupID  string    `json:"group_id"`
}

// TimeWindow is a half-open interval [From, To). A zero bound is unbounded.
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// EventRepository stores personal events, always scoped to the owning account.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id, ownerID string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id, ownerID string) error
	// ListByOwner returns events overlapping window, ordered by start.
	ListByOwner(ctx context.Context, ownerID string, window TimeWindow) ([]*Event, error)
}

// GroupEventRepository stores group-scoped events.
type GroupEventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id, groupID string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id, groupID string) error
	// ListByGroup returns events overlapping window, ordered by start.
	ListByGroup(ctx context.Context, groupID string, window TimeWindow) ([]*Event, error)
}

// EventService validates and persists events and serves calendar views.
type EventService interface {
	ValidateEvent(draft EventDraft) ValidationErrors
	// SaveEvent creates (isEditing false) or replaces in place (isEditing true) an event.
	// A draft carrying a GroupID is written to the group calendar.
	SaveEvent(ctx context.Context, accountID string, draft EventDraft, isEditing bool, existingID string) (*Event, error)
	// CreateFromSlot creates an event for a picked slot. An empty title means the
	// user cancelled: nothing is written and (nil, nil) is returned.
	CreateFromSlot(ctx context.Context, accountID string, slot Slot, title string) (*Event, error)
	GetEvent(ctx context.Context, accountID, eventID, groupID string) (*Event, error)
	DeleteEvent(ctx context.Context, accountID, eventID, groupID string) error
	ListEvents(ctx context.Context, accountID string, view CalendarView, anchor time.Time) ([]*Event, TimeWindow, error)
	ListAgenda(ctx context.Context, accountID string, from time.Time, params PaginationParams) ([]*Event, int, error)
}
