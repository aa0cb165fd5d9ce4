package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := NewUserStore(filepath.Join(t.TempDir(), "users.dat"), "test-secret-key")
	require.NoError(t, err)
	return store
}

func TestInviteUser(t *testing.T) {
	store := newTestUserStore(t)
	factory := NewUserFactory()

	user, err := store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie Doe", "Admin", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusInvited, user.Status)
	assert.Equal(t, "Internal", user.UserType)
	assert.Empty(t, user.PasswordHash.Hash)

	_, err = store.InviteUser(*factory.NewInvitation("JAMIE@example.com", "Duplicate", "User", ""))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestSignupAndLoginFlow(t *testing.T) {
	store := newTestUserStore(t)
	factory := NewUserFactory()

	_, err := store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie Doe", "Admin", ""))
	require.NoError(t, err)

	// Invited accounts cannot log in yet
	_, err = store.VerifyCredentials("jamie@example.com", "hunter2!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := store.CompleteSignup("jamie@example.com", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, user.Status)

	user, err = store.VerifyCredentials("jamie@example.com", "hunter2!")
	require.NoError(t, err)
	assert.False(t, user.LastLogin.IsZero())

	_, err = store.VerifyCredentials("jamie@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCompleteSignupRequiresInvitation(t *testing.T) {
	store := newTestUserStore(t)
	factory := NewUserFactory()

	_, err := store.CompleteSignup("nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie", "User", ""))
	require.NoError(t, err)
	_, err = store.CompleteSignup("jamie@example.com", "password1")
	require.NoError(t, err)

	// A second signup on an active account is rejected
	_, err = store.CompleteSignup("jamie@example.com", "another-password")
	assert.ErrorIs(t, err, ErrNotInvited)
}

func TestUpdateAndRemoveUser(t *testing.T) {
	store := newTestUserStore(t)
	factory := NewUserFactory()

	_, err := store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie", "User", ""))
	require.NoError(t, err)

	user, err := store.UpdateUser("jamie@example.com", "Jamie D.", "Admin", "")
	require.NoError(t, err)
	assert.Equal(t, "Jamie D.", user.FullName)
	assert.Equal(t, "Admin", user.Role)
	assert.Equal(t, StatusInvited, user.Status)

	require.NoError(t, store.RemoveUser("jamie@example.com"))
	_, err = store.GetUserByEmail("jamie@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, store.RemoveUser("jamie@example.com"), ErrUserNotFound)
}

func TestStoreSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.dat")
	factory := NewUserFactory()

	store, err := NewUserStore(path, "test-secret-key")
	require.NoError(t, err)
	_, err = store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie", "User", ""))
	require.NoError(t, err)
	_, err = store.CompleteSignup("jamie@example.com", "hunter2!")
	require.NoError(t, err)

	// A fresh store over the same encrypted file sees the same users
	reopened, err := NewUserStore(path, "test-secret-key")
	require.NoError(t, err)

	user, err := reopened.VerifyCredentials("jamie@example.com", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, "Jamie", user.FullName)
}

func TestLoadFailsWithWrongKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.dat")
	factory := NewUserFactory()

	store, err := NewUserStore(path, "test-secret-key")
	require.NoError(t, err)
	_, err = store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie", "User", ""))
	require.NoError(t, err)

	_, err = NewUserStore(path, "a-different-key")
	assert.Error(t, err)
}

func TestSanitizeStripsCredentials(t *testing.T) {
	store := newTestUserStore(t)
	factory := NewUserFactory()

	_, err := store.InviteUser(*factory.NewInvitation("jamie@example.com", "Jamie", "User", ""))
	require.NoError(t, err)
	_, err = store.CompleteSignup("jamie@example.com", "hunter2!")
	require.NoError(t, err)

	users := store.GetAllUsers()
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash.Hash)
	assert.Empty(t, users[0].PasswordHash.Salt)
}
