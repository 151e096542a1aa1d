/*
handlers_test.go - HTTP-level tests for the webhook and read API

Tests for:
- Shared-secret enforcement (header and query parameter)
- Batch ingestion with partial failures
- Health endpoint
- Directory seeding and attendance reads
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

const testAuthKey = "device-secret"

func newTestServer(t *testing.T) (http.Handler, *store.MemoryDirectory, *store.MemoryAttendance) {
	t.Helper()
	cal, err := attendance.NewBusinessCalendar(attendance.DefaultTimezone, attendance.DefaultOfficeStart)
	require.NoError(t, err)

	dir := store.NewMemoryDirectory()
	require.NoError(t, dir.SaveEmployee(context.Background(), attendance.Employee{
		ID:               "emp-1",
		Name:             "Asha Verma",
		AttendanceNumber: "00000083",
	}))

	days := store.NewMemoryAttendance()
	pipeline := attendance.NewPipeline(dir, days, cal,
		attendance.WithClock(attendance.FixedClock{At: time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC)}),
		attendance.WithLogger(func(string, ...any) {}),
	)
	handler := api.NewHandler(dir, days, pipeline, cal, testAuthKey)
	return api.NewRouter(handler), dir, days
}

func postWebhook(t *testing.T, router http.Handler, body string, authKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/attendance", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authKey != "" {
		req.Header.Set(api.AuthKeyHeader, authKey)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeIngest(t *testing.T, rr *httptest.ResponseRecorder) api.IngestResponse {
	t.Helper()
	var resp api.IngestResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestWebhook_MissingAuthKeyRejected(t *testing.T) {
	router, _, days := newTestServer(t)

	rr := postWebhook(t, router, `{"employeeId": "00000083", "timestamp": "10/10/2025 09:58:00"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Nothing was processed.
	rec, err := days.GetDay(context.Background(), "emp-1", time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestWebhook_WrongAuthKeyRejected(t *testing.T) {
	router, _, _ := newTestServer(t)

	rr := postWebhook(t, router, `{"employeeId": "00000083"}`, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebhook_AuthKeyViaQueryParam(t *testing.T) {
	router, _, _ := newTestServer(t)

	body := `{"employeeId": "00000083", "timestamp": "10/10/2025 09:58:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/attendance?authKey="+testAuthKey, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

// =============================================================================
// WEBHOOK INGESTION
// =============================================================================

func TestWebhook_SingleEvent(t *testing.T) {
	router, _, _ := newTestServer(t)

	rr := postWebhook(t, router, `{"employeeId": "00000083", "timestamp": "10/10/2025 09:58:00"}`, testAuthKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeIngest(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Processed)
	assert.Equal(t, 0, resp.Data.Failed)
	require.Len(t, resp.Data.Records, 1)

	record := resp.Data.Records[0]
	assert.Equal(t, "emp-1", record.EmployeeID)
	assert.Equal(t, "in", record.PunchType)
	assert.Equal(t, 1, record.PunchCount)
	require.NotNil(t, record.IsLate, "in punches carry lateness fields")
	assert.False(t, *record.IsLate)
}

func TestWebhook_BatchPartialFailureStaysHTTP200(t *testing.T) {
	router, _, _ := newTestServer(t)

	body := `[
		{"employeeId": "00000083", "timestamp": "10/10/2025 09:00:00"},
		{"timestamp": "10/10/2025 09:05:00"},
		{"employeeId": "83", "timestamp": "10/10/2025 17:30:00"}
	]`
	rr := postWebhook(t, router, body, testAuthKey)
	require.Equal(t, http.StatusOK, rr.Code, "record failures never change the HTTP status")

	resp := decodeIngest(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Processed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, 1, resp.Data.Errors[0].Index)
	assert.Contains(t, resp.Data.Errors[0].Error, "missing employee code")
	assert.JSONEq(t, `{"timestamp": "10/10/2025 09:05:00"}`, string(resp.Data.Errors[0].Record))

	// Out punches do not carry lateness fields.
	assert.Equal(t, "out", resp.Data.Records[1].PunchType)
	assert.Nil(t, resp.Data.Records[1].IsLate)
}

func TestWebhook_MalformedBodyRejected(t *testing.T) {
	router, _, _ := newTestServer(t)

	rr := postWebhook(t, router, `{not json`, testAuthKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postWebhook(t, router, `[]`, testAuthKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhook_HealthRequiresNoAuth(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/webhook/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
}

// =============================================================================
// DIRECTORY AND READ API
// =============================================================================

func TestCreateEmployee_ValidationAndDefaults(t *testing.T) {
	router, dir, _ := newTestServer(t)

	body := `{"name": "Ravi Kumar", "attendance_number": "00000084"}`
	req := httptest.NewRequest(http.MethodPost, "/api/employees", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var dto api.EmployeeDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
	assert.NotEmpty(t, dto.ID, "missing ID is generated")

	saved, err := dir.FindByAttendanceNumber(context.Background(), "00000084")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Ravi Kumar", saved.Name)

	// Missing name fails validation.
	req = httptest.NewRequest(http.MethodPost, "/api/employees", bytes.NewBufferString(`{"email": "x@example.com"}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetAttendance_RangeQuery(t *testing.T) {
	router, _, _ := newTestServer(t)

	// Ingest a full day through the webhook.
	body := `[
		{"employeeId": "00000083", "timestamp": "10/10/2025 09:58:00"},
		{"employeeId": "00000083", "timestamp": "10/10/2025 17:30:00"}
	]`
	rr := postWebhook(t, router, body, testAuthKey)
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/employees/emp-1/attendance?from=2025-10-01&to=2025-10-31", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		EmployeeID string                 `json:"employee_id"`
		Days       []api.AttendanceDayDTO `json:"days"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "emp-1", resp.EmployeeID)
	require.Len(t, resp.Days, 1)

	day := resp.Days[0]
	assert.Equal(t, "2025-10-10", day.Day)
	assert.Equal(t, "present", day.Status)
	assert.False(t, day.IsLate)
	assert.InDelta(t, 7.53, day.TotalHours, 0.01)
	require.Len(t, day.PunchRecords, 2)
	assert.Equal(t, "in", day.PunchRecords[0].Type)
	assert.Equal(t, "out", day.PunchRecords[1].Type)
}

func TestGetAttendance_UnknownEmployee404(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/employees/nobody/attendance", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
