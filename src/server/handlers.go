package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fieldadmin/src/auth"
	"fieldadmin/src/directors"
	"fieldadmin/src/engine"
	"fieldadmin/src/models"
	"fieldadmin/src/schemasync"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps the error taxonomy onto HTTP statuses:
// validation errors are the client's to fix, not-found reads are 404,
// everything else is a server-side fault with the composed message.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *directors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	if errors.Is(err, engine.ErrDefinitionNotFound) ||
		errors.Is(err, engine.ErrDimensionNotFound) ||
		errors.Is(err, auth.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

// requestUser names the acting admin for audit entries.
func requestUser(r *http.Request) string {
	if user := r.Header.Get("X-Admin-User"); user != "" {
		return user
	}
	return "admin"
}

// --- Field definitions -------------------------------------------------------

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		defs, err := s.fieldService.List()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, defs)

	case http.MethodPost:
		var input models.FieldDefinitionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
			return
		}
		def, err := s.fieldService.Create(input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		s.auditService.Record(requestUser(r), "Field Created",
			fmt.Sprintf("Created custom field: %s (%s)", def.FieldName, def.FieldTypeName),
			r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusCreated, def)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleFieldByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/fields/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		def, err := s.fieldService.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, def)

	case http.MethodPut, http.MethodPatch:
		var patch models.FieldDefinitionPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
			return
		}
		def, err := s.fieldService.Update(id, patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		s.auditService.Record(requestUser(r), "Field Updated",
			fmt.Sprintf("Updated custom field: %s", def.FieldName),
			r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusOK, def)

	case http.MethodDelete:
		if err := s.fieldService.Delete(id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.auditService.Record(requestUser(r), "Field Deleted",
			fmt.Sprintf("Deleted custom field %s", id),
			r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleFieldTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	types, err := s.fieldService.ListFieldTypes()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	table := strings.TrimPrefix(r.URL.Path, "/api/dimensions/")
	values, err := s.store.ListDimensionValues(table)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// --- Internal schema-mutation endpoint ---------------------------------------

// handleAlterTable guards the privileged structural change behind
// existence checks and returns diagnostic hints when the capability is
// unavailable.
func (s *Server) handleAlterTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, schemasync.AlterResponse{
			Success: false, Error: "method not allowed",
		})
		return
	}

	var req schemasync.AlterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, schemasync.AlterResponse{
			Success: false, Error: "invalid JSON body: " + err.Error(),
		})
		return
	}

	if req.Action == "" || req.FieldName == "" {
		writeJSON(w, http.StatusBadRequest, schemasync.AlterResponse{
			Success: false, Error: "Missing required parameters: action, fieldName",
		})
		return
	}

	switch req.Action {
	case "add":
		if req.FieldType == "" {
			writeJSON(w, http.StatusBadRequest, schemasync.AlterResponse{
				Success: false, Error: "Missing required parameter: fieldType",
			})
			return
		}
		if err := s.schemaEngine.AddColumn(req.FieldName, req.FieldType); err != nil {
			writeJSON(w, http.StatusInternalServerError, schemasync.AlterResponse{
				Success: false,
				Error:   "Failed to alter table: " + err.Error(),
				Hint:    "Check that the admin database is writable",
			})
			return
		}
		writeJSON(w, http.StatusOK, schemasync.AlterResponse{
			Success: true, Message: "Column added successfully", FieldName: req.FieldName,
		})

	case "remove":
		if err := s.schemaEngine.RemoveColumn(req.FieldName); err != nil {
			writeJSON(w, http.StatusInternalServerError, schemasync.AlterResponse{
				Success: false,
				Error:   "Failed to alter table: " + err.Error(),
				Hint:    "Check that the admin database is writable",
			})
			return
		}
		writeJSON(w, http.StatusOK, schemasync.AlterResponse{
			Success: true, Message: "Column removed successfully", FieldName: req.FieldName,
		})

	default:
		writeJSON(w, http.StatusBadRequest, schemasync.AlterResponse{
			Success: false, Error: "Invalid action. Must be 'add' or 'remove'",
		})
	}
}

// --- Snapshots ---------------------------------------------------------------

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		defs, err := s.fieldService.List()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := s.snapshotEngine.WriteSnapshot(defs); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "definitions": len(defs)})

	case http.MethodGet:
		defs, err := s.snapshotEngine.ReadSnapshot()
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, defs)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

// --- Users, auth, roles ------------------------------------------------------

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.userService.GetAllUsers())

	case http.MethodPost:
		var body struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
			Role     string `json:"role"`
			UserType string `json:"user_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
			return
		}
		user, err := s.userService.Invite(body.Email, body.FullName, body.Role, body.UserType)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
				return
			}
			writeServiceError(w, err)
			return
		}
		s.auditService.Record(requestUser(r), "User Invited",
			fmt.Sprintf("Invited %s as %s", user.Email, user.Role),
			r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusCreated, user)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if email == "" || strings.Contains(email, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.userService.GetUserByEmail(email)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodPut:
		var body struct {
			FullName string `json:"full_name"`
			Role     string `json:"role"`
			Status   string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
			return
		}
		user, err := s.userService.UpdateUser(email, body.FullName, body.Role, body.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if err := s.userService.DeleteUser(email); err != nil {
			writeServiceError(w, err)
			return
		}
		s.auditService.Record(requestUser(r), "User Deleted",
			fmt.Sprintf("Removed user %s", email),
			r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
		return
	}
	user, err := s.userService.Login(body.Email, body.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	s.auditService.Record(user.Email, "User Login",
		fmt.Sprintf("Successful login from %s", r.RemoteAddr),
		r.RemoteAddr, r.UserAgent())
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCompleteSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body: " + err.Error()})
		return
	}
	user, err := s.userService.CompleteSignup(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotInvited) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, s.userService.GetRoles())
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.auditService.List(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	stats, err := s.store.CompanyStats()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	stats.TotalUsers = len(s.userService.GetAllUsers())
	writeJSON(w, http.StatusOK, stats)
}
