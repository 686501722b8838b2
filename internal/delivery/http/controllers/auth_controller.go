package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Validate implements Validator. Format rules are enforced by the service.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// SignInRequest is the request body for POST /auth/signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l SignInRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// SignInResponse is the response body for POST /auth/signin
type SignInResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	Account   *domain.Account `json:"account"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp godoc
// @Summary Sign up
// @Description Create an account. Passwords need at least 8 characters.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the created account"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	account, err := c.Service.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, account)
}

// SignIn godoc
// @Summary Sign in
// @Description Authenticate with email and password. The returned bearer token stays valid until sign-out or expiry.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignInRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type and account"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Router /auth/signin [post]
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, account, err := c.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, SignInResponse{Token: token, TokenType: "Bearer", Account: account})
}

// SignOut godoc
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/signout [post]
func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.SignOut(r.Context(), sessionID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the account"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	account, err := c.Service.CurrentAccount(r.Context(), accountID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, account)
}
