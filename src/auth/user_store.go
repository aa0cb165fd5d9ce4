package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NewUserStore creates a new user store
func NewUserStore(filePath string, encryptionKeyString string) (*UserStore, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Convert encryption key string to bytes (32 bytes for AES-256)
	encryptionKey := []byte(encryptionKeyString)
	if len(encryptionKey) < 32 {
		// Pad the key if it's too short
		paddedKey := make([]byte, 32)
		copy(paddedKey, encryptionKey)
		encryptionKey = paddedKey
	} else if len(encryptionKey) > 32 {
		// Truncate if too long
		encryptionKey = encryptionKey[:32]
	}

	store := &UserStore{
		encryptionKey: encryptionKey,
		filePath:      filePath,
		users:         []User{},
		dirty:         false,
	}

	// Load existing users if the file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.Load(); err != nil {
			return nil, fmt.Errorf("failed to load user store: %w", err)
		}
	}

	return store, nil
}

// Save persists the user store to disk
func (s *UserStore) Save() error {
	if !s.dirty {
		return nil // Nothing to save
	}

	// Serialize users to JSON
	data, err := json.Marshal(s.users)
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	// Encrypt the data
	encryptedData, err := encrypt(data, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	// Create a temporary file
	tempFile, err := os.CreateTemp(filepath.Dir(s.filePath), "users-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFilePath := tempFile.Name()

	// Write encrypted data to the temporary file
	if _, err := tempFile.Write(encryptedData); err != nil {
		tempFile.Close()
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// Close the file before renaming
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Set restrictive permissions
	if err := os.Chmod(tempFilePath, 0600); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	// Atomically replace the old file with the new one
	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.dirty = false
	return nil
}

// Load reads the user store from disk
func (s *UserStore) Load() error {
	// Open the file
	file, err := os.Open(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Read encrypted data
	encryptedData, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Decrypt the data
	data, err := decrypt(encryptedData, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt data: %w", err)
	}

	// Unmarshal the JSON
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to unmarshal users: %w", err)
	}

	s.users = users
	return nil
}

// GetUserByEmail retrieves a user by email, without credential material.
func (s *UserStore) GetUserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return s.users[i].Sanitize(), nil
		}
	}

	return nil, ErrUserNotFound
}

// GetAllUsers returns every user record, newest first, without credential
// material.
func (s *UserStore) GetAllUsers() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, len(s.users))
	for i := range s.users {
		users[i] = s.users[i].Sanitize()
	}
	return users
}

// InviteUser records a pending user. The account stays in the invited
// state, with no credentials, until CompleteSignup.
func (s *UserStore) InviteUser(invite Invitation) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, invite.Email) {
			return nil, ErrUserAlreadyExists
		}
	}

	now := time.Now()
	user := User{
		ID:             invite.ID,
		Email:          invite.Email,
		FullName:       invite.FullName,
		Role:           invite.Role,
		UserType:       invite.UserType,
		Status:         StatusInvited,
		InvitedAt:      now,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	s.users = append(s.users, user)
	s.dirty = true

	if err := s.Save(); err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// CompleteSignup sets the password on an invited account and activates it.
func (s *UserStore) CompleteSignup(email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if !strings.EqualFold(s.users[i].Email, email) {
			continue
		}
		if s.users[i].Status != StatusInvited {
			return nil, ErrNotInvited
		}

		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}

		s.users[i].PasswordHash = hash
		s.users[i].Status = StatusActive
		s.users[i].LastModifiedAt = time.Now()
		s.dirty = true

		if err := s.Save(); err != nil {
			return nil, err
		}
		return s.users[i].Sanitize(), nil
	}

	return nil, ErrUserNotFound
}

// UpdateUser replaces the mutable profile fields (name, role, status).
func (s *UserStore) UpdateUser(email string, fullName, role, status string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if !strings.EqualFold(s.users[i].Email, email) {
			continue
		}
		if fullName != "" {
			s.users[i].FullName = fullName
		}
		if role != "" {
			s.users[i].Role = role
		}
		if status != "" {
			s.users[i].Status = status
		}
		s.users[i].LastModifiedAt = time.Now()
		s.dirty = true

		if err := s.Save(); err != nil {
			return nil, err
		}
		return s.users[i].Sanitize(), nil
	}

	return nil, ErrUserNotFound
}

// RemoveUser deletes a user record
func (s *UserStore) RemoveUser(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.dirty = true
			return s.Save()
		}
	}

	return ErrUserNotFound
}

// VerifyCredentials checks a login attempt and stamps the last login time
// on success.
func (s *UserStore) VerifyCredentials(email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if !strings.EqualFold(s.users[i].Email, email) {
			continue
		}
		if s.users[i].Status != StatusActive {
			return nil, ErrInvalidCredentials
		}
		if !verifyPassword(password, s.users[i].PasswordHash) {
			return nil, ErrInvalidCredentials
		}

		s.users[i].LastLogin = time.Now()
		s.users[i].LastModifiedAt = s.users[i].LastLogin
		s.dirty = true
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s.users[i].Sanitize(), nil
	}

	return nil, ErrInvalidCredentials
}
