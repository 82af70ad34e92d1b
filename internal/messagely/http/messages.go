package http

import (
	"encoding/json"
	"net/http"

	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/pkg/httpx"
	"github.com/messagely/messagely/pkg/slogx"
)

type MessagesHandler struct {
	MessageService *service.MessageService
}

type createMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// HandleCreate sends a message. The sender is always the verified caller;
// any from_username in the payload is ignored.
//
//	@Summary		Send a message
//	@Description	Sends a message from the authenticated caller to another user.
//	@Tags			Messages
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createMessageRequest	true	"Recipient and body"
//	@Success		201		{object}	messageEnvelope			"The created message"
//	@Failure		400		{object}	errorResponse			"Missing recipient or body"
//	@Failure		401		{object}	errorResponse			"Invalid or missing token"
//	@Failure		404		{object}	errorResponse			"Unknown recipient"
//	@Failure		500		{object}	errorResponse			"Internal server error"
//	@Router			/v1/messages [post].
func (h *MessagesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	caller := httpx.UsernameFromCtx(ctx)
	m, err := h.MessageService.Create(ctx, caller, req.ToUsername, req.Body)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, messageEnvelope{Message: createdMessageJSON{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       m.SentAt,
	}})
}

// HandleGet returns one message with both user summaries. Visible to the
// sender and the recipient only.
//
//	@Summary		Get a message
//	@Description	Returns a message with sender and recipient summaries. Only those two parties may read it.
//	@Tags			Messages
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string			true	"Message ID"
//	@Success		200	{object}	messageEnvelope	"The message"
//	@Failure		401	{object}	errorResponse	"Caller is neither sender nor recipient"
//	@Failure		404	{object}	errorResponse	"Unknown message"
//	@Failure		500	{object}	errorResponse	"Internal server error"
//	@Router			/v1/messages/{id} [get].
func (h *MessagesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	m, err := h.MessageService.Get(ctx, r.PathValue("id"), httpx.UsernameFromCtx(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageEnvelope{Message: toMessageJSON(m, true, true)})
}

// HandleMarkRead transitions a message to read. Recipient only; marking an
// already-read message returns it unchanged.
//
//	@Summary		Mark a message read
//	@Description	Marks a message as read. Only the recipient may do this; repeats are no-ops.
//	@Tags			Messages
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string			true	"Message ID"
//	@Success		200	{object}	messageEnvelope	"The message with read_at set"
//	@Failure		401	{object}	errorResponse	"Caller is not the recipient"
//	@Failure		404	{object}	errorResponse	"Unknown message"
//	@Failure		500	{object}	errorResponse	"Internal server error"
//	@Router			/v1/messages/{id}/read [post].
func (h *MessagesHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	m, err := h.MessageService.MarkRead(ctx, r.PathValue("id"), httpx.UsernameFromCtx(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageEnvelope{Message: toMessageJSON(m, true, true)})
}
