package http

import (
	"context"
	"net/http"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/policy"
	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/pkg/httpx"
	"github.com/messagely/messagely/pkg/slogx"
)

type UsersHandler struct {
	UserService    *service.UserService
	MessageService *service.MessageService
}

// HandleList returns public summaries of every user.
//
//	@Summary		List users
//	@Description	Returns public summaries of all users, ordered by name.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	usersEnvelope	"All user summaries"
//	@Failure		401	{object}	errorResponse	"Invalid or missing token"
//	@Failure		500	{object}	errorResponse	"Internal server error"
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	caller := httpx.UsernameFromCtx(ctx)
	if !policy.CanListUsers(caller) {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	summaries, err := h.UserService.ListAll(ctx)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := usersEnvelope{Users: make([]userSummaryJSON, 0, len(summaries))}
	for _, s := range summaries {
		out.Users = append(out.Users, *toUserSummaryJSON(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a full profile. Profiles are private: only the user
// themselves may read one, including the login timestamps it carries.
//
//	@Summary		Get a user profile
//	@Description	Returns the full profile for a username. Callers may only read their own.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string			true	"Username"
//	@Success		200			{object}	userEnvelope	"Full profile"
//	@Failure		401			{object}	errorResponse	"Not the profile owner"
//	@Failure		404			{object}	errorResponse	"Unknown username"
//	@Failure		500			{object}	errorResponse	"Internal server error"
//	@Router			/v1/users/{username} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := r.PathValue("username")
	if !policy.CanViewUserProfile(httpx.UsernameFromCtx(ctx), username) {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	u, err := h.UserService.Get(ctx, username)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userEnvelope{User: toUserJSON(u)})
}

// HandleListTo returns messages received by a user, counterpart summary only.
//
//	@Summary		List received messages
//	@Description	Returns all messages sent to the user, oldest first. Self-access only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string				true	"Username"
//	@Success		200			{object}	messagesEnvelope	"Received messages with from_user summaries"
//	@Failure		401			{object}	errorResponse		"Not the inbox owner"
//	@Failure		404			{object}	errorResponse		"Unknown username"
//	@Failure		500			{object}	errorResponse		"Internal server error"
//	@Router			/v1/users/{username}/to [get].
func (h *UsersHandler) HandleListTo(w http.ResponseWriter, r *http.Request) {
	h.listMessages(w, r, h.MessageService.ListTo, true, false)
}

// HandleListFrom returns messages sent by a user, counterpart summary only.
//
//	@Summary		List sent messages
//	@Description	Returns all messages sent by the user, oldest first. Self-access only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string				true	"Username"
//	@Success		200			{object}	messagesEnvelope	"Sent messages with to_user summaries"
//	@Failure		401			{object}	errorResponse		"Not the outbox owner"
//	@Failure		404			{object}	errorResponse		"Unknown username"
//	@Failure		500			{object}	errorResponse		"Internal server error"
//	@Router			/v1/users/{username}/from [get].
func (h *UsersHandler) HandleListFrom(w http.ResponseWriter, r *http.Request) {
	h.listMessages(w, r, h.MessageService.ListFrom, false, true)
}

func (h *UsersHandler) listMessages(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, username string) ([]domain.Message, error),
	withFrom, withTo bool,
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := r.PathValue("username")
	if !policy.CanViewUserProfile(httpx.UsernameFromCtx(ctx), username) {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	msgs, err := list(ctx, username)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := messagesEnvelope{Messages: make([]messageJSON, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, toMessageJSON(m, withFrom, withTo))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}
