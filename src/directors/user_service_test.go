package directors

import (
	"path/filepath"
	"testing"

	"fieldadmin/src/auth"
	"fieldadmin/src/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	store, err := auth.NewUserStore(filepath.Join(t.TempDir(), "users.dat"), "test-secret-key")
	require.NoError(t, err)
	return NewUserService(store, auth.NewUserFactory(), zap.NewNop().Sugar(), settings.GetSettings())
}

func TestInviteRequiresEmail(t *testing.T) {
	service := newTestUserService(t)

	_, err := service.Invite("  ", "No Email", "Admin", "")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)
}

func TestInviteDefaultsRoleToUser(t *testing.T) {
	service := newTestUserService(t)

	user, err := service.Invite("jamie@example.com", "Jamie", "", "")
	require.NoError(t, err)
	assert.Equal(t, "User", user.Role)
	assert.Equal(t, auth.StatusInvited, user.Status)
}

func TestCompleteSignupRequiresPassword(t *testing.T) {
	service := newTestUserService(t)

	_, err := service.CompleteSignup("jamie@example.com", " ")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "password", validationErr.Field)
}

func TestGetRolesCountsUsers(t *testing.T) {
	service := newTestUserService(t)

	_, err := service.Invite("a@example.com", "A", "Admin", "")
	require.NoError(t, err)
	_, err = service.Invite("b@example.com", "B", "Admin", "")
	require.NoError(t, err)
	_, err = service.Invite("c@example.com", "C", "User", "")
	require.NoError(t, err)

	roles := service.GetRoles()
	require.Len(t, roles, 3)

	byName := make(map[string]int)
	for _, role := range roles {
		byName[role.Name] = role.UserCount
	}
	assert.Equal(t, 0, byName["Super Admin"])
	assert.Equal(t, 2, byName["Admin"])
	assert.Equal(t, 1, byName["User"])
}
