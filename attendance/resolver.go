/*
resolver.go - Device employee code to canonical employee resolution

PURPOSE:
  Different device firmware and export tools emit the same physical badge
  number with or without zero-padding. The resolver tolerates this with
  four deterministic attempts, in order, first match wins:

    1. Exact match against the registered attendance number
    2. Leading zeros stripped ("00000083" -> "83")
    3. Numeric codes left-padded to 8 digits ("83" -> "00000083")
    4. Fallback match against the employee's primary identifier

  No guessing beyond these four. A miss aborts only the one record.

SEE ALSO:
  - store.go: EmployeeDirectory interface
  - pipeline.go: Calls Resolve per record
*/
package attendance

import (
	"context"
	"strings"
)

// attendanceNumberWidth is the zero-padded badge width device exports use.
const attendanceNumberWidth = 8

// Resolver maps raw device employee codes onto directory entries.
type Resolver struct {
	dir EmployeeDirectory
}

// NewResolver creates a resolver over the given directory.
func NewResolver(dir EmployeeDirectory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve tries the four encoding conventions in order and returns the first
// matching employee. A miss returns an EmployeeNotFoundError carrying the
// original code.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Employee, error) {
	code = strings.TrimSpace(code)

	// 1. Exact match.
	emp, err := r.dir.FindByAttendanceNumber(ctx, code)
	if err != nil {
		return nil, err
	}
	if emp != nil {
		return emp, nil
	}

	// 2. Strip leading zeros.
	if stripped := strings.TrimLeft(code, "0"); stripped != "" && stripped != code {
		emp, err = r.dir.FindByAttendanceNumber(ctx, stripped)
		if err != nil {
			return nil, err
		}
		if emp != nil {
			return emp, nil
		}
	}

	// 3. Left-pad numeric codes to the registered width.
	if padded := padAttendanceNumber(code); padded != code {
		emp, err = r.dir.FindByAttendanceNumber(ctx, padded)
		if err != nil {
			return nil, err
		}
		if emp != nil {
			return emp, nil
		}
	}

	// 4. Fall back to the primary identifier.
	emp, err = r.dir.FindByID(ctx, code)
	if err != nil {
		return nil, err
	}
	if emp != nil {
		return emp, nil
	}

	return nil, &EmployeeNotFoundError{Code: code}
}

// padAttendanceNumber left-pads purely numeric codes to the device badge
// width. Non-numeric or already-wide codes are returned unchanged.
func padAttendanceNumber(code string) string {
	if code == "" || len(code) >= attendanceNumberWidth {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", attendanceNumberWidth-len(code)) + code
}
