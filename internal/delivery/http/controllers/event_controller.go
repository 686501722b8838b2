package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/domain"
)

// SaveEventResponse is the data of a successful save. GroupEvents holds the
// refreshed group calendar when the event belongs to a group.
type SaveEventResponse struct {
	Event       *domain.Event   `json:"event"`
	GroupEvents []*domain.Event `json:"group_events,omitempty"`
}

// SlotRequest is the request body for POST /events/slot.
type SlotRequest struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Category string    `json:"category"`
	Color    string    `json:"color"`
	GroupID  string    `json:"group_id"`
}

// Validate implements Validator.
func (s SlotRequest) Validate() []string {
	var errs []string
	if s.Start.IsZero() || s.End.IsZero() {
		errs = append(errs, "start and end are required")
	}
	return errs
}

// CalendarViewResponse is the data of GET /events.
type CalendarViewResponse struct {
	View   domain.CalendarView `json:"view"`
	From   time.Time           `json:"from"`
	To     *time.Time          `json:"to,omitempty"`
	Events []*domain.Event     `json:"events"`
}

// AgendaResponse is the data of GET /events/agenda.
type AgendaResponse struct {
	Events     []*domain.Event  `json:"events"`
	Pagination h.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger   *slog.Logger
	Events   domain.EventService
	Groups   domain.GroupService
	Location *time.Location
}

func NewEventController(logger *slog.Logger, events domain.EventService, groups domain.GroupService, loc *time.Location) *EventController {
	if loc == nil {
		loc = time.UTC
	}
	return &EventController{
		Logger:   logger,
		Events:   events,
		Groups:   groups,
		Location: loc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a personal event, or a group event when group_id is set. Invalid input is answered with one entry per failed field.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body domain.EventDraft true "Event"
// @Success 201 {object} helpers.APIResponse "data contains event and, for group events, group_events"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, false, "")
}

// UpdateEvent godoc
// @Summary Edit an event
// @Description Replaces title, start, end, category and color. The id is kept.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body domain.EventDraft true "Event"
// @Success 200 {object} helpers.APIResponse "data contains event and, for group events, group_events"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, true, r.PathValue("eventID"))
}

func (c *EventController) save(w http.ResponseWriter, r *http.Request, isEditing bool, eventID string) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var draft domain.EventDraft
	if !h.DecodeAndValidate(w, r, &draft) {
		return
	}
	event, err := c.Events.SaveEvent(r.Context(), accountID, draft, isEditing, eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusCreated
	if isEditing {
		status = http.StatusOK
	}
	c.writeSaved(w, r, status, accountID, event)
}

func (c *EventController) writeSaved(w http.ResponseWriter, r *http.Request, status int, accountID string, event *domain.Event) {
	resp := SaveEventResponse{Event: event}
	if event.IsGroupEvent() {
		events, err := c.Groups.ListGroupEvents(r.Context(), event.GroupID, accountID)
		if err != nil {
			h.WriteServiceError(w, r, c.Logger, err)
			return
		}
		resp.GroupEvents = events
	}
	h.WriteJSONSuccess(w, status, resp)
}

// CreateFromSlot godoc
// @Summary Quick-create from a calendar slot
// @Description An empty title means the prompt was cancelled; nothing is created and 204 is returned.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slot body SlotRequest true "Slot"
// @Success 201 {object} helpers.APIResponse "data contains the event"
// @Success 204
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/slot [post]
func (c *EventController) CreateFromSlot(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SlotRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	slot := domain.Slot{
		Start:    req.Start,
		End:      req.End,
		AllDay:   req.AllDay,
		Category: req.Category,
		Color:    req.Color,
		GroupID:  req.GroupID,
	}
	event, err := c.Events.CreateFromSlot(r.Context(), accountID, slot, req.Title)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if event == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	c.writeSaved(w, r, http.StatusCreated, accountID, event)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param group_id query string false "Group ID for group events"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Events.GetEvent(r.Context(), accountID, r.PathValue("eventID"), r.URL.Query().Get("group_id"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Group events can be deleted by their creator or a group admin.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param group_id query string false "Group ID for group events"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Events.DeleteEvent(r.Context(), accountID, r.PathValue("eventID"), r.URL.Query().Get("group_id")); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents godoc
// @Summary Personal calendar view
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param view query string false "month (default), week, day or agenda"
// @Param date query string false "Anchor date, YYYY-MM-DD or RFC 3339; defaults to today"
// @Success 200 {object} helpers.APIResponse "data contains view, from, to and events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	view, err := domain.ParseCalendarView(r.URL.Query().Get("view"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	anchor, ok := c.parseDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	events, window, err := c.Events.ListEvents(r.Context(), accountID, view, anchor)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	resp := CalendarViewResponse{View: view, From: window.From, Events: events}
	if !window.To.IsZero() {
		resp.To = &window.To
	}
	h.WriteJSONSuccess(w, http.StatusOK, resp)
}

// ListAgenda godoc
// @Summary Agenda
// @Description Personal and group events from the given day onward, ordered by start.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD; defaults to today"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Router /events/agenda [get]
func (c *EventController) ListAgenda(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	from, ok := c.parseDate(w, r.URL.Query().Get("from"))
	if !ok {
		return
	}
	params := h.ParsePagination(r)
	events, total, err := c.Events.ListAgenda(r.Context(), accountID, from, params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, AgendaResponse{
		Events:     events,
		Pagination: h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// parseDate reads a YYYY-MM-DD day in the calendar's location or an RFC 3339
// instant. An empty value means now.
func (c *EventController) parseDate(w http.ResponseWriter, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().In(c.Location), true
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, c.Location); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "date must be YYYY-MM-DD")
	return time.Time{}, false
}
