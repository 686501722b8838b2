package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/domain"
)

// CreateGroupRequest is the request body for POST /groups.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (g CreateGroupRequest) Validate() []string {
	if strings.TrimSpace(g.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// JoinGroupRequest is the request body for POST /groups/join. The code is
// checked by the service so a malformed one gets its own error code.
type JoinGroupRequest struct {
	Code string `json:"code"`
}

// JoinGroupResponse is the data of a successful join.
type JoinGroupResponse struct {
	Membership    *domain.Membership `json:"membership"`
	AlreadyMember bool               `json:"already_member"`
}

// InviteRequest is the request body for POST /groups/{groupID}/invitations.
type InviteRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	if strings.TrimSpace(i.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

type GroupController struct {
	Logger  *slog.Logger
	Service domain.GroupService
}

func NewGroupController(logger *slog.Logger, svc domain.GroupService) *GroupController {
	return &GroupController{Logger: logger, Service: svc}
}

// CreateGroup godoc
// @Summary Create a group
// @Description The caller becomes admin. A fresh 6-letter invite code is assigned.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGroupRequest true "Group"
// @Success 201 {object} helpers.APIResponse "data contains the group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /groups [post]
func (c *GroupController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateGroupRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	group, err := c.Service.CreateGroup(r.Context(), accountID, req.Name, req.Description)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, group)
}

// ListMyGroups godoc
// @Summary Groups of the current account
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains groups with the caller's role"
// @Router /groups [get]
func (c *GroupController) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	groups, err := c.Service.ListMyGroups(r.Context(), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, groups)
}

// JoinGroup godoc
// @Summary Join a group by invite code
// @Description Joining a group twice returns the existing membership with 200.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinGroupRequest true "Invite code"
// @Success 201 {object} helpers.APIResponse "data contains the membership"
// @Success 200 {object} helpers.APIResponse "already a member"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_code_format"
// @Failure 404 {object} helpers.APIResponse "error.code: group_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: group_full"
// @Router /groups/join [post]
func (c *GroupController) JoinGroup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req JoinGroupRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	m, created, err := c.Service.JoinGroup(r.Context(), req.Code, accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	h.WriteJSONSuccess(w, status, JoinGroupResponse{Membership: m, AlreadyMember: !created})
}

// GetGroup godoc
// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID"
// @Success 200 {object} helpers.APIResponse "data contains the group"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /groups/{groupID} [get]
func (c *GroupController) GetGroup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	group, err := c.Service.GetGroup(r.Context(), r.PathValue("groupID"), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, group)
}

// ListGroupEvents godoc
// @Summary Group calendar
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID"
// @Success 200 {object} helpers.APIResponse "data contains events ordered by start"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /groups/{groupID}/events [get]
func (c *GroupController) ListGroupEvents(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListGroupEvents(r.Context(), r.PathValue("groupID"), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// InviteByEmail godoc
// @Summary E-mail an invitation
// @Description Sends the invite code and accept link. When no mail provider is configured the response carries warning "mailer-not-configured".
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID"
// @Param body body InviteRequest true "Recipient"
// @Success 201 {object} helpers.APIResponse "data contains email, invite_code, accept_url and optional warning"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /groups/{groupID}/invitations [post]
func (c *GroupController) InviteByEmail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req InviteRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.InviteByEmail(r.Context(), r.PathValue("groupID"), accountID, req.Email)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, res)
}
