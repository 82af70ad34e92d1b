package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/internal/messagely/store/drivers/sqlite"
	"github.com/messagely/messagely/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "messagely-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func registerAlice(t *testing.T, users *service.UserService) {
	t.Helper()
	_, err := users.Register(context.Background(), "alice", "pw1", "Alice", "Anderson", "+61400000001")
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	users := &service.UserService{Store: newTestStore(t)}
	ctx := context.Background()

	u, err := users.Register(ctx, "alice", "pw1", "Alice", "Anderson", "+61400000001")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Empty(t, u.PasswordHash, "hash must not escape the service")
	require.False(t, u.JoinedAt.IsZero())
	require.Nil(t, u.LastLoginAt)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.Register(ctx, "alice", "other", "Alicia", "Other", "+61400000009")
		require.ErrorIs(t, err, service.ErrDuplicateUser)

		// The stored record is untouched by the failed attempt.
		got, err := users.Get(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "Alice", got.FirstName)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := users.Register(ctx, "bob", "", "Bob", "Brown", "+61400000002")
		require.ErrorIs(t, err, service.ErrValidation)
		_, err = users.Register(ctx, "", "pw", "Bob", "Brown", "+61400000002")
		require.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestAuthenticate(t *testing.T) {
	users := &service.UserService{Store: newTestStore(t)}
	ctx := context.Background()
	registerAlice(t, users)

	t.Run("correct password", func(t *testing.T) {
		require.True(t, users.Authenticate(ctx, "alice", "pw1"))
	})

	t.Run("wrong password", func(t *testing.T) {
		require.False(t, users.Authenticate(ctx, "alice", "pw2"))
	})

	t.Run("unknown user", func(t *testing.T) {
		// Collapses to the same false as a wrong password.
		require.False(t, users.Authenticate(ctx, "nonexistent", "anything"))
	})
}

func TestTouchLogin(t *testing.T) {
	users := &service.UserService{Store: newTestStore(t)}
	ctx := context.Background()
	registerAlice(t, users)

	require.NoError(t, users.TouchLogin(ctx, "alice"))

	u, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)

	t.Run("unknown user no-ops", func(t *testing.T) {
		require.NoError(t, users.TouchLogin(ctx, "ghost"))
	})
}

func TestGetUnknownUser(t *testing.T) {
	users := &service.UserService{Store: newTestStore(t)}

	_, err := users.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListAll(t *testing.T) {
	users := &service.UserService{Store: newTestStore(t)}
	ctx := context.Background()

	_, err := users.Register(ctx, "zed", "pw", "Zoe", "Zed", "+3")
	require.NoError(t, err)
	_, err = users.Register(ctx, "amy", "pw", "Amy", "Young", "+1")
	require.NoError(t, err)
	_, err = users.Register(ctx, "ana", "pw", "Amy", "Able", "+2")
	require.NoError(t, err)

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Sorted by (first_name, last_name); summaries have no hash field at all.
	require.Equal(t, []string{"ana", "amy", "zed"}, []string{
		all[0].Username, all[1].Username, all[2].Username,
	})
}
