package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/pkg/cryptox"
	"github.com/messagely/messagely/pkg/slogx"
)

var (
	ErrDuplicateUser = errors.New("username already taken")
	ErrValidation    = errors.New("missing required field")
)

// UserService is the credential store: registration, password verification,
// login bookkeeping, and the user directory.
type UserService struct {
	Store store.Store
}

// Register creates a new account. The raw password is hashed immediately and
// never stored or logged. A taken username fails with ErrDuplicateUser; the
// uniqueness check is the insert itself (primary key), so two racing
// registrations cannot both win.
func (s *UserService) Register(
	ctx context.Context,
	username, password, firstName, lastName, phone string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" || firstName == "" || lastName == "" || phone == "" {
		return domain.User{}, ErrValidation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	u := domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		JoinedAt:     time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("registration rejected, username taken", slog.String("username", username))
			return domain.User{}, ErrDuplicateUser
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Debug("user registered", slog.String("username", username))

	// Callers never need the hash back.
	u.PasswordHash = ""
	return u, nil
}

// Authenticate reports whether the username/password pair is valid. Unknown
// usernames and wrong passwords both collapse to false: no error, no
// distinguishable shape, and an argon2 compare runs either way so the two
// cases cost the same.
func (s *UserService) Authenticate(ctx context.Context, username, password string) bool {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		_ = cryptox.VerifyPassword(password, cryptox.DummyHash())
		return false
	}

	return cryptox.VerifyPassword(password, u.PasswordHash) == nil
}

// TouchLogin stamps last_login_at for the user. Unknown usernames are a
// silent no-op.
func (s *UserService) TouchLogin(ctx context.Context, username string) error {
	return s.Store.Users().TouchLastLogin(ctx, username, time.Now().UTC())
}

// Get returns the full profile for a username, hash stripped.
func (s *UserService) Get(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ListAll returns public summaries of every user, ordered by
// (first_name, last_name) ascending.
func (s *UserService) ListAll(ctx context.Context) ([]domain.UserSummary, error) {
	return s.Store.Users().ListUsers(ctx)
}
