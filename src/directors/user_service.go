package directors

import (
	"strings"

	"fieldadmin/src/auth"
	"fieldadmin/src/models"
	"fieldadmin/src/settings"

	"go.uber.org/zap"
)

// UserService manages admin users, invitations and the (static) role
// catalog.
type UserService struct {
	store    *auth.UserStore
	factory  auth.UserFactory
	settings *settings.Arguments
	logger   *zap.SugaredLogger
}

func NewUserService(store *auth.UserStore, factory auth.UserFactory,
	logger *zap.SugaredLogger,
	settings *settings.Arguments) *UserService {
	return &UserService{
		store:    store,
		factory:  factory,
		settings: settings,
		logger:   logger,
	}
}

// Invite records a pending user. Sending the invitation email itself is
// the identity provider's job.
func (s *UserService) Invite(email, fullName, role, userType string) (*auth.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &ValidationError{Field: "email", Reason: "email is required"}
	}
	if role == "" {
		role = "User"
	}

	invite := s.factory.NewInvitation(email, fullName, role, userType)
	user, err := s.store.InviteUser(*invite)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Invited user %s with role %s", email, role)
	return user, nil
}

// CompleteSignup activates an invited user once they set a password.
func (s *UserService) CompleteSignup(email, password string) (*auth.User, error) {
	if strings.TrimSpace(password) == "" {
		return nil, &ValidationError{Field: "password", Reason: "password is required"}
	}
	return s.store.CompleteSignup(email, password)
}

// Login verifies credentials and stamps the last login.
func (s *UserService) Login(email, password string) (*auth.User, error) {
	return s.store.VerifyCredentials(email, password)
}

func (s *UserService) GetUserByEmail(email string) (*auth.User, error) {
	return s.store.GetUserByEmail(email)
}

func (s *UserService) GetAllUsers() []*auth.User {
	return s.store.GetAllUsers()
}

func (s *UserService) UpdateUser(email, fullName, role, status string) (*auth.User, error) {
	return s.store.UpdateUser(email, fullName, role, status)
}

func (s *UserService) DeleteUser(email string) error {
	return s.store.RemoveUser(email)
}

// GetRoles returns the role catalog. Roles are not yet admin-editable, so
// the catalog is fixed.
func (s *UserService) GetRoles() []models.AdminRole {
	users := s.store.GetAllUsers()
	countByRole := make(map[string]int)
	for _, u := range users {
		countByRole[u.Role]++
	}

	roles := []models.AdminRole{
		{
			ID:          "1",
			Name:        "Super Admin",
			Description: "Full system access with all permissions",
			UserType:    "Super Admin",
			Status:      "Active",
			Permissions: []string{"All Permissions"},
			CreatedAt:   "2023-01-15",
		},
		{
			ID:          "2",
			Name:        "Admin",
			Description: "Administrative access to internal systems",
			UserType:    "Admin",
			Status:      "Active",
			Permissions: []string{"User Management", "System Settings", "Reports"},
			CreatedAt:   "2023-02-01",
		},
		{
			ID:          "3",
			Name:        "User",
			Description: "Standard dashboard access",
			UserType:    "Internal",
			Status:      "Active",
			Permissions: []string{"Reports"},
			CreatedAt:   "2023-02-01",
		},
	}

	for i := range roles {
		roles[i].UserCount = countByRole[roles[i].Name]
	}
	return roles
}
