package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/internal/messagely/store/drivers/sqlite"
	"github.com/messagely/messagely/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	u := domain.User{
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		FirstName:    "First-" + username,
		LastName:     "Last-" + username,
		Phone:        "+61400000000",
		JoinedAt:     time.Now().UTC(),
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, st, "alice")

	err := st.Users().CreateUser(ctx, u)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// The original record is untouched by the failed insert.
	got, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.FirstName, got.FirstName)
}

func TestTouchLastLogin(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedUser(t, st, "alice")

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Users().TouchLastLogin(ctx, "alice", at))

	got, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.WithinDuration(t, at, *got.LastLoginAt, time.Second)

	t.Run("unknown user is a no-op", func(t *testing.T) {
		require.NoError(t, st.Users().TouchLastLogin(ctx, "ghost", at))
	})
}

func TestListUsersOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, u := range []domain.User{
		{Username: "c", FirstName: "Charlie", LastName: "Young", Phone: "1", PasswordHash: "x", JoinedAt: time.Now().UTC()},
		{Username: "a", FirstName: "Alice", LastName: "Zed", Phone: "2", PasswordHash: "x", JoinedAt: time.Now().UTC()},
		{Username: "b", FirstName: "Alice", LastName: "Able", Phone: "3", PasswordHash: "x", JoinedAt: time.Now().UTC()},
	} {
		require.NoError(t, st.Users().CreateUser(ctx, u))
	}

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// (first_name, last_name) ascending
	require.Equal(t, "b", users[0].Username)
	require.Equal(t, "a", users[1].Username)
	require.Equal(t, "c", users[2].Username)
}

func TestGetMessageJoinsSummaries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")

	m := domain.Message{
		ID:           idx.New().String(),
		FromUsername: "alice",
		ToUsername:   "bob",
		Body:         "hi",
		SentAt:       time.Now().UTC(),
	}
	require.NoError(t, st.Messages().CreateMessage(ctx, m))

	got, err := st.Messages().GetMessageByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.FromUser.Username)
	require.Equal(t, "First-bob", got.ToUser.FirstName)
	require.Nil(t, got.ReadAt)

	_, err = st.Messages().GetMessageByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkMessageRead(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")

	m := domain.Message{
		ID:           idx.New().String(),
		FromUsername: "alice",
		ToUsername:   "bob",
		Body:         "hi",
		SentAt:       time.Now().UTC(),
	}
	require.NoError(t, st.Messages().CreateMessage(ctx, m))

	first := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Messages().MarkMessageRead(ctx, m.ID, first))

	got, err := st.Messages().GetMessageByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)

	t.Run("second mark keeps original read_at", func(t *testing.T) {
		require.NoError(t, st.Messages().MarkMessageRead(ctx, m.ID, first.Add(time.Hour)))

		again, err := st.Messages().GetMessageByID(ctx, m.ID)
		require.NoError(t, err)
		require.Equal(t, *got.ReadAt, *again.ReadAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := st.Messages().MarkMessageRead(ctx, idx.New().String(), first)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMarkMessageReadConcurrent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")

	m := domain.Message{
		ID:           idx.New().String(),
		FromUsername: "alice",
		ToUsername:   "bob",
		Body:         "race me",
		SentAt:       time.Now().UTC(),
	}
	require.NoError(t, st.Messages().CreateMessage(ctx, m))

	// All writers race on the conditional update; exactly one wins and the
	// rest no-op without error.
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = st.Messages().MarkMessageRead(ctx, m.ID, time.Now().UTC().Add(time.Duration(i)*time.Second))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := st.Messages().GetMessageByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
}

func TestListMessagesDirectional(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	seedUser(t, st, "carol")

	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "alice"}} {
		require.NoError(t, st.Messages().CreateMessage(ctx, domain.Message{
			ID:           idx.New().String(),
			FromUsername: pair[0],
			ToUsername:   pair[1],
			Body:         pair[0] + "->" + pair[1],
			SentAt:       time.Now().UTC(),
		}))
	}

	from, err := st.Messages().ListMessagesFrom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, from, 2)
	require.Equal(t, "alice->bob", from[0].Body) // oldest first by monotonic id

	to, err := st.Messages().ListMessagesTo(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, to, 1)
	require.Equal(t, "bob", to[0].FromUser.Username)
}
