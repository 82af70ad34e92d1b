package http

import (
	"encoding/json"
	"net/http"

	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/pkg/httpx"
	"github.com/messagely/messagely/pkg/slogx"
)

type AuthHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account and returns a signed identity token.
//
//	@Summary		Register a new user
//	@Description	Creates an account and returns a signed identity token for it.
//	@Description	All fields are required; usernames are unique.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	tokenResponse	"Identity token"
//	@Failure		400		{object}	errorResponse	"Missing fields or username taken"
//	@Failure		500		{object}	errorResponse	"Internal server error"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	u, err := h.UserService.Register(ctx, req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	// Registration doubles as first login.
	if err := h.UserService.TouchLogin(ctx, u.Username); err != nil {
		log.Warn("failed to stamp first login", "username", u.Username, "err", err)
	}

	token, err := h.TokenService.Issue(u.Username)
	if err != nil {
		log.Error("failed to issue token", "username", u.Username, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// HandleLogin verifies credentials and returns a signed identity token.
//
//	@Summary		Log in
//	@Description	Verifies a username/password pair and returns a signed identity token.
//	@Description	Unknown usernames and wrong passwords produce the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	tokenResponse	"Identity token"
//	@Failure		400		{object}	errorResponse	"Malformed request"
//	@Failure		401		{object}	errorResponse	"Invalid username/password"
//	@Failure		500		{object}	errorResponse	"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if !h.UserService.Authenticate(ctx, req.Username, req.Password) {
		// One response for unknown user and wrong password.
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid username/password"})
		return
	}

	if err := h.UserService.TouchLogin(ctx, req.Username); err != nil {
		log.Warn("failed to stamp login", "username", req.Username, "err", err)
	}

	token, err := h.TokenService.Issue(req.Username)
	if err != nil {
		log.Error("failed to issue token", "username", req.Username, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}
