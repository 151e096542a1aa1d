/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the domain
  model from the external contract. The webhook payload types also absorb
  two quirks of real device export tools:

  1. The body may be a single event object OR an array of event objects.
  2. Each concept arrives under several alternate field names depending on
     firmware (employeeId/employee_id/userId/user_id/empId/emp_code, etc.).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Directory-mutating requests carry validator/v10 struct tags, checked in
  the handlers. Webhook events are deliberately lax: malformed records are
  reported per record, never rejected wholesale.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/types.go: Domain counterparts
*/
package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// WEBHOOK PAYLOAD - Single-or-array envelope with field-name aliases
// =============================================================================

// webhookPayload accepts either one event object or an array of them.
type webhookPayload struct {
	Events []rawPunchEventDTO
}

func (p *webhookPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, &p.Events)
	}

	var single rawPunchEventDTO
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	p.Events = []rawPunchEventDTO{single}
	return nil
}

// rawPunchEventDTO is one inbound device record. Unmarshaling coalesces the
// alternate field names each concept arrives under and keeps the original
// JSON so failed records can be echoed back verbatim.
type rawPunchEventDTO struct {
	EmployeeCode string
	Timestamp    string
	TypeHint     string
	DeviceName   string
	SerialNumber string
	Notes        string
	Raw          json.RawMessage
}

var (
	employeeCodeAliases = []string{"employeeId", "employee_id", "userId", "user_id", "empId", "emp_code"}
	timestampAliases    = []string{"timestamp", "punchTime", "punch_time", "time", "dateTime", "log_date_time", "log_date"}
	deviceNameAliases   = []string{"device_name", "deviceName"}
	serialAliases       = []string{"sr_no", "serialNumber"}
	typeHintAliases     = []string{"punch_type", "type", "status"}
)

func (e *rawPunchEventDTO) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}

	e.Raw = append(json.RawMessage(nil), data...)
	e.EmployeeCode = firstString(fields, employeeCodeAliases)
	e.Timestamp = firstString(fields, timestampAliases)
	e.DeviceName = firstString(fields, deviceNameAliases)
	e.SerialNumber = firstString(fields, serialAliases)
	e.TypeHint = firstString(fields, typeHintAliases)
	e.Notes = firstString(fields, []string{"notes"})
	return nil
}

// firstString returns the first alias present with a non-empty stringifiable
// value. Devices send badge numbers as JSON numbers as often as strings.
func firstString(fields map[string]any, aliases []string) string {
	for _, name := range aliases {
		if v, ok := fields[name]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func (e rawPunchEventDTO) toRawEvent() attendance.RawEvent {
	return attendance.RawEvent{
		EmployeeCode: e.EmployeeCode,
		Timestamp:    e.Timestamp,
		TypeHint:     e.TypeHint,
		DeviceName:   e.DeviceName,
		SerialNumber: e.SerialNumber,
		Notes:        e.Notes,
	}
}

// =============================================================================
// WEBHOOK RESPONSE TYPES
// =============================================================================

// IngestResponse is the webhook envelope. Record-level failures never change
// the HTTP status; they are reported inside Data.
type IngestResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    IngestData `json:"data"`
}

// IngestData is the batch summary.
type IngestData struct {
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Records   []PunchReceiptDTO `json:"records"`
	Errors    []RecordErrorDTO  `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// PunchReceiptDTO is the receipt for one successfully processed record.
// Lateness fields are present for "in" punches only.
type PunchReceiptDTO struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	PunchType    string  `json:"punch_type"`
	Time         string  `json:"time"`
	PunchCount   int     `json:"punch_count"`
	TotalHours   float64 `json:"total_hours"`
	IsLate       *bool   `json:"is_late,omitempty"`
	LateMinutes  *int    `json:"late_minutes,omitempty"`
}

// RecordErrorDTO echoes a failed record with its error.
type RecordErrorDTO struct {
	Index  int             `json:"index"`
	Record json.RawMessage `json:"record,omitempty"`
	Error  string          `json:"error"`
}

func toReceiptDTO(r attendance.Receipt) PunchReceiptDTO {
	hours, _ := r.TotalHours.Float64()
	dto := PunchReceiptDTO{
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		PunchType:    string(r.PunchType),
		Time:         r.Time.Format(time.RFC3339),
		PunchCount:   r.PunchCount,
		TotalHours:   hours,
	}
	if r.PunchType == attendance.PunchIn {
		isLate := r.IsLate
		lateMinutes := r.LateMinutes
		dto.IsLate = &isLate
		dto.LateMinutes = &lateMinutes
	}
	return dto
}

// =============================================================================
// DIRECTORY AND READ API TYPES
// =============================================================================

// EmployeeDTO represents a directory entry in API responses.
type EmployeeDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	AttendanceNumber string `json:"attendance_number,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest seeds a directory entry.
type CreateEmployeeRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	AttendanceNumber string `json:"attendance_number" validate:"omitempty,max=32"`
}

// PunchEventDTO represents one recorded punch.
type PunchEventDTO struct {
	ID           string `json:"id"`
	Time         string `json:"time"`
	Type         string `json:"type"`
	Method       string `json:"method"`
	DeviceName   string `json:"device_name,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AttendanceDayDTO represents the aggregate consumed by reporting, payroll
// and dashboard views.
type AttendanceDayDTO struct {
	EmployeeID    string          `json:"employee_id"`
	Day           string          `json:"day"`
	Status        string          `json:"status"`
	IsLate        bool            `json:"is_late"`
	LateMinutes   int             `json:"late_minutes"`
	IsWeekendWork bool            `json:"is_weekend_work"`
	TotalHours    float64         `json:"total_hours"`
	PunchRecords  []PunchEventDTO `json:"punch_records"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e attendance.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		AttendanceNumber: e.AttendanceNumber,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAttendanceDayDTO(d *attendance.AttendanceDay) AttendanceDayDTO {
	punches := make([]PunchEventDTO, len(d.PunchRecords))
	for i, p := range d.PunchRecords {
		punches[i] = PunchEventDTO{
			ID:           p.ID,
			Time:         p.Time.Format(time.RFC3339),
			Type:         string(p.Type),
			Method:       p.Method,
			DeviceName:   p.DeviceName,
			SerialNumber: p.DeviceSerialNumber,
			Notes:        p.Notes,
		}
	}

	hours, _ := d.TotalHours().Float64()
	return AttendanceDayDTO{
		EmployeeID:    d.EmployeeID,
		Day:           d.Day.Format("2006-01-02"),
		Status:        string(d.Status),
		IsLate:        d.IsLate,
		LateMinutes:   d.LateMinutes,
		IsWeekendWork: d.IsWeekendWork,
		TotalHours:    hours,
		PunchRecords:  punches,
	}
}
