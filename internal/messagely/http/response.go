package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/pkg/httpx"
)

// Wire envelopes: {token}, {user}, {users}, {message}, {messages}. Message
// entries nest from_user/to_user summary objects rather than bare usernames.

type errorResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userSummaryJSON struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type userJSON struct {
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	JoinedAt    time.Time  `json:"joined_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type messageJSON struct {
	ID     string     `json:"id"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`

	FromUser *userSummaryJSON `json:"from_user,omitempty"`
	ToUser   *userSummaryJSON `json:"to_user,omitempty"`
}

// createdMessageJSON is the flat shape returned by POST /messages; the
// summaries aren't joined on the create path.
type createdMessageJSON struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

type userEnvelope struct {
	User userJSON `json:"user"`
}

type usersEnvelope struct {
	Users []userSummaryJSON `json:"users"`
}

type messageEnvelope struct {
	Message any `json:"message"`
}

type messagesEnvelope struct {
	Messages []messageJSON `json:"messages"`
}

func toUserSummaryJSON(s domain.UserSummary) *userSummaryJSON {
	return &userSummaryJSON{
		Username:  s.Username,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Phone:     s.Phone,
	}
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// toMessageJSON renders a message, optionally hiding one side's summary
// (directional listings only carry the counterpart user).
func toMessageJSON(m domain.Message, withFrom, withTo bool) messageJSON {
	out := messageJSON{
		ID:     m.ID,
		Body:   m.Body,
		SentAt: m.SentAt,
		ReadAt: m.ReadAt,
	}
	if withFrom {
		out.FromUser = toUserSummaryJSON(m.FromUser)
	}
	if withTo {
		out.ToUser = toUserSummaryJSON(m.ToUser)
	}
	return out
}

// writeServiceError maps core failures onto transport status codes:
// validation/duplicate -> 400, authz -> 401, unknown resource -> 404,
// everything else -> 500 with a log line and no internals leaked.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "all fields are required"})
	case errors.Is(err, service.ErrDuplicateUser):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "username already taken"})
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		log.Error("request failed", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
