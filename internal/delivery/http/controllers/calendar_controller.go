package controllers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/domain"
)

// MaxImportBytes caps an uploaded .ics body.
const MaxImportBytes = 2 << 20

type CalendarController struct {
	Logger  *slog.Logger
	Service domain.CalendarService
}

func NewCalendarController(logger *slog.Logger, svc domain.CalendarService) *CalendarController {
	return &CalendarController{Logger: logger, Service: svc}
}

// ExportPersonal godoc
// @Summary Download the personal calendar
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {file} file
// @Router /events/calendar.ics [get]
func (c *CalendarController) ExportPersonal(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	file, err := c.Service.ExportPersonal(r.Context(), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeFile(w, file)
}

// ExportGroup godoc
// @Summary Download a group calendar
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Param groupID path string true "Group ID"
// @Success 200 {file} file
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /groups/{groupID}/calendar.ics [get]
func (c *CalendarController) ExportGroup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	file, err := c.Service.ExportGroup(r.Context(), r.PathValue("groupID"), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeFile(w, file)
}

// Import godoc
// @Summary Import an iCalendar file
// @Description Each VEVENT becomes a personal event. Entries failing validation are skipped and counted.
// @Tags calendar
// @Accept text/calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains imported, skipped and events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 413 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/import [post]
func (c *CalendarController) Import(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	res, err := c.Service.Import(r.Context(), accountID, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodeBadRequest, "calendar file is too large")
			return
		}
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, res)
}

func writeFile(w http.ResponseWriter, file *domain.CalendarFile) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}
