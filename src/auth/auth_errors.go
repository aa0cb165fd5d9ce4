package auth

// Add custom error definitions here
import "errors"

// ErrUserAlreadyExists is returned when a user already exists in the system.
var ErrUserAlreadyExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")

// ErrNotInvited is returned when a signup completion arrives for an email
// with no pending invitation.
var ErrNotInvited = errors.New("no pending invitation for this user")
var ErrInvalidCredentials = errors.New("invalid credentials")
