package directors

import (
	"fmt"
	"time"

	"fieldadmin/src/engine"
	"fieldadmin/src/helpers"
	"fieldadmin/src/models"

	"go.uber.org/zap"
)

// AuditService records admin actions (field created, field deleted, user
// invited, ...) and serves the audit report view.
type AuditService struct {
	store  engine.AuditStore
	logger *zap.SugaredLogger
}

func NewAuditService(store engine.AuditStore, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{
		store:  store,
		logger: logger,
	}
}

// Record writes one audit entry. Audit failures must never block the admin
// action itself, so the error is logged and swallowed.
func (s *AuditService) Record(user, action, details, ipAddress, userAgent string) {
	entry := &models.AuditEntry{
		ID:        helpers.GenerateUUID(),
		Datetime:  time.Now().UTC(),
		User:      user,
		Action:    action,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.store.InsertAuditEntry(entry); err != nil {
		s.logger.Warnw("Failed to record audit entry",
			"action", action,
			"user", user,
			"error", err)
	}
}

// List returns the most recent entries, newest first.
func (s *AuditService) List(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.store.ListAuditEntries(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
