package auth

import (
	"sync"
	"time"
)

// User statuses. An invited user has no password hash until signup
// completes.
const (
	StatusInvited  = "invited"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type PasswordHash struct {
	Hash    []byte `json:"hash"`
	Salt    []byte `json:"salt"`
	Method  string `json:"method"`  // "argon2id"
	Time    uint32 `json:"time"`    // time parameter for Argon2
	Memory  uint32 `json:"memory"`  // memory parameter in KiB
	Threads uint8  `json:"threads"` // threads parameter
	KeyLen  uint32 `json:"keylen"`  // length of the hash in bytes
}

type User struct {
	ID             string
	Email          string
	FullName       string
	Role           string
	UserType       string // Internal, External
	Status         string
	PasswordHash   PasswordHash
	InvitedAt      time.Time
	LastLogin      time.Time
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// Invitation carries the fields an admin supplies when inviting a user.
// The invitation email itself is sent by the hosted identity provider.
type Invitation struct {
	ID       string
	Email    string
	FullName string
	Role     string
	UserType string
}

// UserStore manages secure storage of admin user records
type UserStore struct {
	encryptionKey []byte       // Key used to encrypt the storage file
	filePath      string       // Path to the storage file
	users         []User       // In-memory cache of users
	mu            sync.RWMutex // Mutex for thread safety
	dirty         bool         // Whether the store has unsaved changes
}

// Sanitize strips the credential material for responses.
func (u *User) Sanitize() *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		UserType:  u.UserType,
		Status:    u.Status,
		InvitedAt: u.InvitedAt,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
