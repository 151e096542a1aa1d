/*
handlers.go - HTTP API handlers for the attendance ingestion engine

PURPOSE:
  Exposes the ingestion pipeline and the attendance read model over REST.
  Handles HTTP request/response and JSON serialization; all punch
  processing logic lives in the attendance package.

ENDPOINTS:
  Webhook:
    POST   /api/webhook/attendance   Ingest one event or a batch (auth key)
    GET    /api/webhook/health       Liveness acknowledgment (no auth)

  Directory / reads:
    GET    /api/employees                 List directory entries
    POST   /api/employees                 Seed a directory entry
    GET    /api/employees/{id}            Get one entry
    GET    /api/employees/{id}/attendance Attendance days for a date range

ERROR HANDLING:
  Authentication failures are request-level (401, nothing processed).
  Record-level failures inside a batch always come back inside a 200
  response: processed/failed counts plus an errors array. The sender is a
  device agent; a non-200 would make it retransmit the whole batch,
  including the records that already committed.

SEE ALSO:
  - dto.go: Request/response data structures
  - attendance/pipeline.go: The per-record flow
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/attendance-engine/attendance"
)

// defaultQueryDays is the read-API range when the caller gives no bounds.
const defaultQueryDays = 30

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Directory attendance.EmployeeDirectory
	Store     attendance.AttendanceStore
	Pipeline  *attendance.Pipeline
	Calendar  *attendance.BusinessCalendar
	AuthKey   string

	validate *validator.Validate
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(dir attendance.EmployeeDirectory, store attendance.AttendanceStore, pipeline *attendance.Pipeline, cal *attendance.BusinessCalendar, authKey string) *Handler {
	return &Handler{
		Directory: dir,
		Store:     store,
		Pipeline:  pipeline,
		Calendar:  cal,
		AuthKey:   authKey,
		validate:  validator.New(),
	}
}

// =============================================================================
// WEBHOOK HANDLERS
// =============================================================================

// HandleHealth returns a static operational acknowledgment.
// GET /api/webhook/health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "attendance webhook operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleWebhook ingests one punch event or an array of them.
// POST /api/webhook/attendance
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(payload.Events) == 0 {
		writeError(w, http.StatusBadRequest, "Empty event payload", nil)
		return
	}

	events := make([]attendance.RawEvent, len(payload.Events))
	for i, e := range payload.Events {
		events[i] = e.toRawEvent()
	}

	report := h.Pipeline.ProcessBatch(r.Context(), events)

	data := IngestData{
		Processed: report.Processed,
		Failed:    report.Failed,
		Records:   make([]PunchReceiptDTO, 0, len(report.Receipts)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, receipt := range report.Receipts {
		data.Records = append(data.Records, toReceiptDTO(receipt))
	}
	for _, recErr := range report.Errors {
		data.Errors = append(data.Errors, RecordErrorDTO{
			Index:  recErr.Index,
			Record: payload.Events[recErr.Index].Raw,
			Error:  recErr.Err.Error(),
		})
	}

	message := "all records processed"
	if report.Failed > 0 {
		message = "processed with record failures"
	}

	// Record-level failures never change the HTTP status.
	writeJSON(w, http.StatusOK, IngestResponse{
		Success: report.Failed == 0,
		Message: message,
		Data:    data,
	})
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListEmployees returns all directory entries.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Directory.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single directory entry.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Directory.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee seeds a directory entry.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	emp := attendance.Employee{
		ID:               req.ID,
		Name:             req.Name,
		Email:            req.Email,
		AttendanceNumber: req.AttendanceNumber,
		CreatedAt:        time.Now().UTC(),
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Directory.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// ATTENDANCE READ HANDLERS
// =============================================================================

// GetAttendance returns AttendanceDay aggregates for a date range. Used by
// attendance reporting, payroll and dashboard views.
// GET /api/employees/{id}/attendance?from=2006-01-02&to=2006-01-02
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	emp, err := h.Directory.FindByID(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	to := h.Calendar.DayOf(time.Now())
	from := to.AddDate(0, 0, -defaultQueryDays)
	loc := h.Calendar.Location()

	if q := r.URL.Query().Get("from"); q != "" {
		from, err = time.ParseInLocation("2006-01-02", q, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if q := r.URL.Query().Get("to"); q != "" {
		to, err = time.ParseInLocation("2006-01-02", q, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "Invalid range: to before from", nil)
		return
	}

	days, err := h.Store.ListDays(ctx, emp.ID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceDayDTO, len(days))
	for i, d := range days {
		dtos[i] = toAttendanceDayDTO(d)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id": emp.ID,
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"days":        dtos,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
