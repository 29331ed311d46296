package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"burza/internal/auth"
	"burza/internal/config"
	"burza/internal/events"
	"burza/internal/export"
	"burza/internal/grid"
	"burza/internal/models"
	"burza/internal/notify"
	"burza/internal/outbox"
	"burza/internal/reservation"
	"burza/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "letmein"
)

type testEnv struct {
	handler http.Handler
	store   *store.Memory
	queue   *outbox.Queue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		HTTP:      config.HTTPConfig{Port: 0},
		Admin:     config.AdminConfig{Email: adminEmail, Password: adminPassword},
		Grid:      config.GridConfig{Width: models.GridWidth, Height: models.GridHeight},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}

	logger := zerolog.Nop()
	mem := store.NewMemory()
	bus := events.NewBus()
	queue := outbox.NewQueue(nil, &logger)
	notify.NewDispatcher(queue, "info@example.com", &logger).Register(bus)

	service := reservation.NewService(mem, mem, bus, &logger)
	editor := grid.NewEditor(mem, cfg.Grid.Width, cfg.Grid.Height, &logger)
	exporter := export.NewExporter(mem, t.TempDir(), &logger)
	authenticator := auth.NewStatic(cfg.Admin)

	srv := NewHTTPServer(cfg, mem, service, editor, exporter, queue, authenticator, &logger)
	return &testEnv{handler: srv.Handler(), store: mem, queue: queue}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, asAdmin bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if asAdmin {
		req.SetBasicAuth(adminEmail, adminPassword)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedTables(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		x, y, err := models.ParseTableID(id)
		require.NoError(t, err)
		require.NoError(t, e.store.PutTable(context.Background(), models.Table{
			ID: id, X: x, Y: y, Status: models.TableAvailable,
		}))
	}
}

func submitBody(tableIDs ...string) map[string]any {
	return map[string]any{
		"tableIds":  tableIDs,
		"firstName": "Test",
		"lastName":  "User",
		"phone":     "+420 123 456 789",
		"email":     "test@example.com",
	}
}

func TestPublicTableListing(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1", "2-1")

	rec := env.do(t, http.MethodGet, "/api/v1/tables", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tables []models.Table `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Tables, 2)
}

func TestSubmitReservationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1", "2-1")

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", submitBody("1-1", "2-1"), false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.ReservationPending, created.Status)

	table, err := env.store.GetTable(context.Background(), "1-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, table.ReservationID)

	msg, ok := env.queue.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, events.EventReservationCreated, msg.Kind)
	assert.Equal(t, "test@example.com", msg.Recipient)
}

func TestSubmitValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", submitBody(), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := submitBody("1-1")
	bad["email"] = "nope"
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", bad, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/reservations", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reservations", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveRejectFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1", "2-1")

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", submitBody("1-1", "2-1"), false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%s/approve", created.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	table, err := env.store.GetTable(context.Background(), "1-1")
	require.NoError(t, err)
	assert.Equal(t, models.TableReserved, table.Status)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%s/approve", created.ID), nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%s/reject?force=true", created.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	table, err = env.store.GetTable(context.Background(), "1-1")
	require.NoError(t, err)
	assert.Equal(t, models.TableBlocked, table.Status)
	assert.Empty(t, table.ReservationID)
}

func TestDeleteReservationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1")

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", submitBody("1-1"), false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodDelete, "/api/v1/reservations/"+created.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reservations/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTableEditingEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1", "2-1")

	rec := env.do(t, http.MethodPut, "/api/v1/tables/1-1", map[string]string{"status": "permanent"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/tables", map[string]any{
		"tableIds": []string{"1-1", "2-1"},
		"status":   "blocked",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	table, err := env.store.GetTable(context.Background(), "2-1")
	require.NoError(t, err)
	assert.Equal(t, models.TableBlocked, table.Status)

	rec = env.do(t, http.MethodPut, "/api/v1/tables/1-1", map[string]string{"status": "pending"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pending is not an editor status")
}

func TestBulkCreateTables(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/tables", map[string]any{
		"coords": []map[string]int{{"x": 2, "y": 2}, {"x": 3, "y": 2}},
		"status": "available",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	tables, err := env.store.ListTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestGridMaintenanceEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/grid/init", nil, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var initResp struct {
		Created int `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &initResp))
	assert.Equal(t, models.GridWidth*models.GridHeight, initResp.Created)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/grid/dump", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/tables/reset", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	table, err := env.store.GetTable(context.Background(), "0-0")
	require.NoError(t, err)
	assert.Equal(t, models.TableBlocked, table.Status)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/grid", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	tables, err := env.store.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": adminEmail, "password": adminPassword,
	}, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": adminEmail, "password": "wrong",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedTables(t, "1-1")

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", submitBody("1-1"), false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/reservations/export", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/tables", nil, false)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
