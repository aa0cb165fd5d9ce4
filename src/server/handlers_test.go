package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fieldadmin/src/auth"
	"fieldadmin/src/directors"
	"fieldadmin/src/engine"
	"fieldadmin/src/models"
	"fieldadmin/src/schemasync"
	"fieldadmin/src/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer wires a full server over a temp database and serves it
// through httptest. The field service's synchronizer points back at the
// test server's own alter-table endpoint, same as production wiring.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	logger := zap.NewNop().Sugar()

	store, err := engine.NewAdminStore(filepath.Join(dir, "admin.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	snapshotEngine, err := engine.NewSnapshotEngine(dir, logger)
	require.NoError(t, err)

	userStore, err := auth.NewUserStore(filepath.Join(dir, "users.dat"), "test-secret-key")
	require.NoError(t, err)

	srv := &Server{
		store:          store,
		schemaEngine:   engine.NewSchemaEngine(store.DB(), logger),
		snapshotEngine: snapshotEngine,
		userService:    directors.NewUserService(userStore, auth.NewUserFactory(), logger, settings.GetSettings()),
		auditService:   directors.NewAuditService(store, logger),
		logger:         logger,
	}

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	synchronizer := schemasync.NewSynchronizer(ts.URL+"/api/admin/alter-table", logger)
	srv.fieldService = directors.NewFieldService(store, engine.NewFieldFactory(),
		synchronizer, logger, settings.GetSettings())

	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetFieldTypes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/field-types")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	types := decodeBody[[]models.FieldType](t, resp)
	require.Len(t, types, 9)
	assert.Equal(t, "text", types[0].FieldTypeName)
}

func TestCreateFieldEndToEnd(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/fields", models.FieldDefinitionInput{
		FieldName:   "Industry Segment",
		FieldTypeID: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	def := decodeBody[models.FieldDefinition](t, resp)
	assert.NotEmpty(t, def.ID)

	// The create went back through the alter-table endpoint and reached
	// the live companies table.
	exists, err := srv.schemaEngine.ColumnExists("Industry Segment")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateFieldValidationFailure(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/fields", models.FieldDefinitionInput{
		FieldName:   "Ghost",
		FieldTypeID: 99,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMissingField(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/fields/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateField(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/fields", models.FieldDefinitionInput{
		FieldName:   "Old Name",
		FieldTypeID: 1,
	})
	def := decodeBody[models.FieldDefinition](t, resp)

	body, err := json.Marshal(map[string]any{"field_name": "New Name"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/fields/"+def.ID, bytes.NewReader(body))
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	updated := decodeBody[models.FieldDefinition](t, resp2)
	assert.Equal(t, "New Name", updated.FieldName)
}

func TestDeleteFieldEndToEnd(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/fields", models.FieldDefinitionInput{
		FieldName:   "Doomed",
		FieldTypeID: 1,
	})
	def := decodeBody[models.FieldDefinition](t, resp)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/fields/"+def.ID, nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	exists, err := srv.schemaEngine.ColumnExists("Doomed")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAlterTableValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/admin/alter-table", schemasync.AlterRequest{})
	body := decodeBody[schemasync.AlterResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "Missing required parameters")

	resp = postJSON(t, ts.URL+"/api/admin/alter-table", schemasync.AlterRequest{
		Action: "add", FieldName: "No Type",
	})
	body = decodeBody[schemasync.AlterResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error, "fieldType")

	resp = postJSON(t, ts.URL+"/api/admin/alter-table", schemasync.AlterRequest{
		Action: "rename", FieldName: "X", FieldType: "text",
	})
	body = decodeBody[schemasync.AlterResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error, "Invalid action")
}

func TestDimensionsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/dimensions/dim_company_status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	values := decodeBody[[]models.DimensionValue](t, resp)
	require.Len(t, values, 4)
	assert.Equal(t, "Lead", values[0].Name)

	resp2, err := http.Get(ts.URL + "/api/dimensions/sqlite_master")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/fields", models.FieldDefinitionInput{
		FieldName:   "Kept",
		FieldTypeID: 1,
	}).Body.Close()

	resp := postJSON(t, ts.URL+"/api/admin/snapshot", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/admin/snapshot")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	defs := decodeBody[[]models.FieldDefinition](t, resp2)
	require.Len(t, defs, 1)
	assert.Equal(t, "Kept", defs[0].FieldName)
}

func TestAuditTrailRecordsFieldCreate(t *testing.T) {
	_, ts := newTestServer(t)

	data, err := json.Marshal(models.FieldDefinitionInput{FieldName: "Tracked", FieldTypeID: 1})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/fields", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("X-Admin-User", "jamie@example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	resp2, err := http.Get(ts.URL + "/api/audit")
	require.NoError(t, err)
	entries := decodeBody[[]models.AuditEntry](t, resp2)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Field Created", entries[0].Action)
	assert.Equal(t, "jamie@example.com", entries[0].User)
}

func TestUserLifecycleEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/users", map[string]string{
		"email":     "jamie@example.com",
		"full_name": "Jamie Doe",
		"role":      "Admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	invited := decodeBody[auth.User](t, resp)
	assert.Equal(t, auth.StatusInvited, invited.Status)

	// Duplicate invite conflicts
	resp2 := postJSON(t, ts.URL+"/api/users", map[string]string{"email": "jamie@example.com"})
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	resp3 := postJSON(t, ts.URL+"/api/auth/complete-signup", map[string]string{
		"email":    "jamie@example.com",
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, resp3.StatusCode)
	resp3.Body.Close()

	resp4 := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"email":    "jamie@example.com",
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, resp4.StatusCode)
	resp4.Body.Close()

	resp5 := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"email":    "jamie@example.com",
		"password": "wrong",
	})
	resp5.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp5.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	srv, ts := newTestServer(t)

	_, err := srv.store.DB().Exec(
		`INSERT INTO companies (id, company_name, company_status) VALUES ('c1', 'Acme', 'client')`)
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decodeBody[models.SystemStats](t, resp)
	assert.Equal(t, 1, stats.TotalCompanies)
	assert.Equal(t, 1, stats.ActiveCompanies)
}

func TestRolesEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/roles")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	roles := decodeBody[[]models.AdminRole](t, resp)
	require.Len(t, roles, 3)
	assert.Equal(t, "Super Admin", roles[0].Name)
}
