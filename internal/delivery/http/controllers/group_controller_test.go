package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendrier/internal/delivery/http/helpers"
	"calendrier/internal/domain"
)

func TestGroupController_JoinGroup(t *testing.T) {
	membership := &domain.Membership{ID: "mem-1", GroupID: "grp-1", AccountID: "acc-2", Role: domain.RoleMember}

	tests := []struct {
		name         string
		body         string
		created      bool
		joinErr      error
		wantStatus   int
		wantBodyCode string
		wantAlready  bool
	}{
		{name: "joined", body: `{"code":"qwerty"}`, created: true, wantStatus: http.StatusCreated},
		{name: "already a member", body: `{"code":"QWERTY"}`, created: false, wantStatus: http.StatusOK, wantAlready: true},
		{name: "bad format", body: `{"code":"ABC"}`, joinErr: domain.ErrInvalidCodeFormat, wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeInvalidCode},
		{name: "unknown code", body: `{"code":"ZZZZZZ"}`, joinErr: domain.ErrGroupNotFound, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeGroupNotFound},
		{name: "full", body: `{"code":"QWERTY"}`, joinErr: domain.ErrGroupFull, wantStatus: http.StatusConflict, wantBodyCode: helpers.ErrCodeGroupFull},
		{name: "store failure", body: `{"code":"QWERTY"}`, joinErr: assert.AnError, wantStatus: http.StatusInternalServerError, wantBodyCode: helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGroupService{membership: membership, created: tt.created, joinErr: tt.joinErr}
			ctrl := NewGroupController(testLogger, fake)
			req := withAccount(httptest.NewRequest(http.MethodPost, "http://test/groups/join", bytes.NewBufferString(tt.body)), "acc-2")
			rr := httptest.NewRecorder()

			ctrl.JoinGroup(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp JoinGroupResponse
			apiErr := decodeEnvelope(t, rr, &resp)
			if tt.wantBodyCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantBodyCode, apiErr.Code)
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "mem-1", resp.Membership.ID)
			assert.Equal(t, tt.wantAlready, resp.AlreadyMember)
		})
	}
}

func TestGroupController_JoinGroup_errorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrInvalidCodeFormat, "invite code must be 6 letters"},
		{domain.ErrGroupNotFound, "invalid group code"},
		{domain.ErrGroupFull, "group is full (max 10 members)"},
	}
	for _, tt := range tests {
		ctrl := NewGroupController(testLogger, &fakeGroupService{joinErr: tt.err})
		rr := httptest.NewRecorder()
		ctrl.JoinGroup(rr, withAccount(httptest.NewRequest(http.MethodPost, "http://test/groups/join", bytes.NewBufferString(`{"code":"x"}`)), "acc-2"))

		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, tt.want, apiErr.Message)
	}
}

func TestGroupController_CreateGroup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		fake := &fakeGroupService{group: &domain.Group{ID: "grp-1", Name: "Climbers", InviteCode: "QWERTY"}}
		rr := httptest.NewRecorder()

		NewGroupController(testLogger, fake).CreateGroup(rr, withAccount(httptest.NewRequest(http.MethodPost, "http://test/groups", bytes.NewBufferString(`{"name":"Climbers"}`)), "acc-1"))

		require.Equal(t, http.StatusCreated, rr.Code)
		var g domain.Group
		require.Nil(t, decodeEnvelope(t, rr, &g))
		assert.Equal(t, "QWERTY", g.InviteCode)
	})

	t.Run("name required", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewGroupController(testLogger, &fakeGroupService{}).CreateGroup(rr, withAccount(httptest.NewRequest(http.MethodPost, "http://test/groups", bytes.NewBufferString(`{"name":"  "}`)), "acc-1"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("codes exhausted", func(t *testing.T) {
		fake := &fakeGroupService{createErr: domain.ErrInviteCodeCollision}
		rr := httptest.NewRecorder()

		NewGroupController(testLogger, fake).CreateGroup(rr, withAccount(httptest.NewRequest(http.MethodPost, "http://test/groups", bytes.NewBufferString(`{"name":"Climbers"}`)), "acc-1"))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, "failed to create group (invite code generation collision)", apiErr.Message)
	})
}

func TestGroupController_ListGroupEvents(t *testing.T) {
	fake := &fakeGroupService{events: []*domain.Event{{ID: "gev-1"}}}
	req := httptest.NewRequest(http.MethodGet, "http://test/groups/grp-1/events", nil)
	req.SetPathValue("groupID", "grp-1")
	rr := httptest.NewRecorder()

	NewGroupController(testLogger, fake).ListGroupEvents(rr, withAccount(req, "acc-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "grp-1", fake.lastGroupID)

	fake.eventsErr = domain.ErrForbidden
	rr = httptest.NewRecorder()
	NewGroupController(testLogger, fake).ListGroupEvents(rr, withAccount(req, "acc-9"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGroupController_InviteByEmail(t *testing.T) {
	fake := &fakeGroupService{invite: &domain.InvitationResult{
		Email:      "bob@example.com",
		InviteCode: "QWERTY",
		AcceptURL:  "https://app.example.com/join?code=QWERTY",
		Warning:    "mailer-not-configured",
	}}
	req := httptest.NewRequest(http.MethodPost, "http://test/groups/grp-1/invitations", bytes.NewBufferString(`{"email":"bob@example.com"}`))
	req.SetPathValue("groupID", "grp-1")
	rr := httptest.NewRecorder()

	NewGroupController(testLogger, fake).InviteByEmail(rr, withAccount(req, "acc-1"))

	require.Equal(t, http.StatusCreated, rr.Code)
	var res domain.InvitationResult
	require.Nil(t, decodeEnvelope(t, rr, &res))
	assert.Equal(t, "mailer-not-configured", res.Warning)
	assert.Equal(t, "bob@example.com", fake.lastEmail)
	assert.Equal(t, "grp-1", fake.lastGroupID)
}
