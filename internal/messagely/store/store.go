package store

import (
	"context"
	"errors"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and it is always passed in explicitly; there is no package-level
// connection anywhere in the service.
type Store interface {
	Users() Users
	Messages() Messages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByUsername returns the full record including the password hash.
	// Only the credential service may look at the hash.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user. The username primary key makes this an
	// atomic compare-and-insert; a taken username surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// TouchLastLogin sets last_login_at. No-op (nil error) for unknown users.
	TouchLastLogin(ctx context.Context, username string, at time.Time) error

	// UserExists reports whether the username is registered.
	UserExists(ctx context.Context, username string) (bool, error)

	// ListUsers returns public summaries ordered by (first_name, last_name).
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
}

type Messages interface {
	// CreateMessage inserts a new message in the unread state.
	CreateMessage(ctx context.Context, m domain.Message) error

	// GetMessageByID returns the message joined with sender and recipient
	// summaries.
	GetMessageByID(ctx context.Context, id string) (domain.Message, error)

	// MarkMessageRead conditionally sets read_at. The update only applies
	// while read_at is NULL, so concurrent callers are first-writer-wins and
	// a second call is a no-op, never an overwrite. Unknown ids return
	// ErrNotFound.
	MarkMessageRead(ctx context.Context, id string, at time.Time) error

	// ListMessagesFrom returns messages sent by username, oldest first.
	ListMessagesFrom(ctx context.Context, username string) ([]domain.Message, error)

	// ListMessagesTo returns messages received by username, oldest first.
	ListMessagesTo(ctx context.Context, username string) ([]domain.Message, error)
}
