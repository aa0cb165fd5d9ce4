package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"fieldadmin/src/auth"
	"fieldadmin/src/directors"
	"fieldadmin/src/engine"
	"fieldadmin/src/schemasync"
	"fieldadmin/src/settings"

	"go.uber.org/zap"
)

// Server hosts the admin HTTP surface: the field-management routes, the
// internal schema-mutation endpoint, users, audit and stats.
type Server struct {
	Host        string
	Port        int
	AuthEnabled bool
	Running     bool

	store          *engine.AdminStorageEngine
	schemaEngine   *engine.SchemaEngine
	snapshotEngine *engine.SnapshotEngine
	fieldService   *directors.FieldService
	userService    *directors.UserService
	auditService   *directors.AuditService
	httpServer     *http.Server
	logger         *zap.SugaredLogger
}

// InitServer initializes the admin server and all services
func InitServer(config *settings.Arguments) (*Server, error) {

	var logger *zap.Logger
	var err error

	if config.Debug {
		// Development configuration with more verbose output
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		// Production configuration
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create a sugared logger for easier API
	sugar := logger.Sugar()

	// Replace standard log with zap
	zap.ReplaceGlobals(logger)

	// Open the admin store (creates tables and seeds reference data)
	store, err := engine.NewAdminStore(config.DBFile, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin store: %w", err)
	}

	schemaEngine := engine.NewSchemaEngine(store.DB(), sugar)

	snapshotEngine, err := engine.NewSnapshotEngine(config.DataDir, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot engine: %w", err)
	}

	// The field service reaches the privileged ALTER capability only
	// through the internal endpoint, same as the UI tier would.
	syncEndpoint := fmt.Sprintf("http://%s:%d/api/admin/alter-table", config.Host, config.Port)
	synchronizer := schemasync.NewSynchronizer(syncEndpoint, sugar)

	fieldFactory := engine.NewFieldFactory()
	fieldService := directors.NewFieldService(store, fieldFactory, synchronizer, sugar, config)

	userStore, err := auth.NewUserStore(filepath.Join(config.DataDir, "users.dat"), config.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}
	userFactory := auth.NewUserFactory()
	userService := directors.NewUserService(userStore, userFactory, sugar, config)

	auditService := directors.NewAuditService(store, sugar)

	// Initialize the singleton
	directors.InitServiceManager(fieldService, userService, auditService, sugar)

	server := &Server{
		Host:           config.Host,
		Port:           config.Port,
		AuthEnabled:    config.AuthEnabled,
		store:          store,
		schemaEngine:   schemaEngine,
		snapshotEngine: snapshotEngine,
		fieldService:   fieldService,
		userService:    userService,
		auditService:   auditService,
		logger:         sugar,
	}

	return server, nil
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.Running = true

	go func() {
		s.logger.Infof("Admin server listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.Running = false

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnf("Error during HTTP shutdown: %v", err)
		}
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warnf("Error closing admin store: %v", err)
	}

	// Flush any buffered log entries
	s.logger.Info("Server shutdown complete")
	s.logger.Sync()

	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/fields", s.handleFields)
	mux.HandleFunc("/api/fields/", s.handleFieldByID)
	mux.HandleFunc("/api/field-types", s.handleFieldTypes)
	mux.HandleFunc("/api/dimensions/", s.handleDimensions)
	mux.HandleFunc("/api/admin/alter-table", s.handleAlterTable)
	mux.HandleFunc("/api/admin/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/users/", s.handleUserByEmail)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/complete-signup", s.handleCompleteSignup)
	mux.HandleFunc("/api/roles", s.handleRoles)
	mux.HandleFunc("/api/audit", s.handleAudit)
	mux.HandleFunc("/api/stats", s.handleStats)

	return mux
}
