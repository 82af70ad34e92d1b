package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/policy"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/pkg/idx"
	"github.com/messagely/messagely/pkg/slogx"
)

var ErrUnauthorized = errors.New("not permitted for this resource")

// MessageService is the message lifecycle manager. Every state transition
// runs under a policy check against the verified caller identity; the HTTP
// layer cannot reach a message the policy would deny.
type MessageService struct {
	Store store.Store
}

// Create sends a message from the verified caller to another user. The
// sender always comes from the token claim, never from the request payload.
// The recipient must exist; the existence check and the insert share a
// transaction so a concurrent user deletion cannot slip between them.
func (s *MessageService) Create(
	ctx context.Context,
	fromUsername, toUsername, body string,
) (domain.Message, error) {
	log := slogx.FromContext(ctx)

	toUsername = strings.TrimSpace(toUsername)
	if toUsername == "" || strings.TrimSpace(body) == "" {
		return domain.Message{}, ErrValidation
	}

	m := domain.Message{
		ID:           idx.New().String(),
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       time.Now().UTC(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.Users().UserExists(ctx, toUsername)
		if err != nil {
			return err
		}
		if !ok {
			return store.ErrNotFound
		}
		return tx.Messages().CreateMessage(ctx, m)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to create message", slog.Any("error", err))
		}
		return domain.Message{}, err
	}

	log.Debug("message created",
		slog.String("message_id", m.ID),
		slog.String("from", fromUsername),
		slog.String("to", toUsername),
	)
	return m, nil
}

// Get returns a message with sender/recipient summaries. Only the sender or
// the recipient may see it.
func (s *MessageService) Get(ctx context.Context, id, callerUsername string) (domain.Message, error) {
	m, err := s.Store.Messages().GetMessageByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}

	if !policy.CanViewMessage(callerUsername, m) {
		return domain.Message{}, ErrUnauthorized
	}
	return m, nil
}

// MarkRead transitions a message to its terminal read state. Only the
// recipient may do this. Marking an already-read message is a no-op that
// returns the message with its original read_at; the store-level conditional
// update makes concurrent marks first-writer-wins.
func (s *MessageService) MarkRead(ctx context.Context, id, callerUsername string) (domain.Message, error) {
	log := slogx.FromContext(ctx)

	m, err := s.Store.Messages().GetMessageByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}

	if !policy.CanMarkRead(callerUsername, m) {
		log.Info("mark-read denied",
			slog.String("message_id", id),
			slog.String("caller", callerUsername),
		)
		return domain.Message{}, ErrUnauthorized
	}

	if err := s.Store.Messages().MarkMessageRead(ctx, id, time.Now().UTC()); err != nil {
		return domain.Message{}, err
	}

	// Re-read to pick up whichever writer actually set read_at.
	return s.Store.Messages().GetMessageByID(ctx, id)
}

// ListFrom returns all messages sent by username, oldest first.
func (s *MessageService) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.Store.Messages().ListMessagesFrom(ctx, username)
}

// ListTo returns all messages received by username, oldest first.
func (s *MessageService) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}
	return s.Store.Messages().ListMessagesTo(ctx, username)
}

func (s *MessageService) requireUser(ctx context.Context, username string) error {
	ok, err := s.Store.Users().UserExists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}
