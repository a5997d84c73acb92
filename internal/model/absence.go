package model

import (
	"fmt"
	"strings"
	"time"
)

// Absence request lifecycle states.
const (
	AbsencePending  = "PENDING"
	AbsenceApproved = "APPROVED"
	AbsenceRejected = "REJECTED"
)

// Absence request types.
const (
	AbsenceVacation = "VACATION"
	AbsenceSick     = "SICK"
	AbsencePersonal = "PERSONAL"
)

// AbsenceRequest mirrors the 'absence_requests' table.
type AbsenceRequest struct {
	ID        uint64
	UserID    uint64
	StartDate time.Time
	EndDate   time.Time
	Type      string
	Status    string
	Reason    string
	DecidedBy *uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParseAbsenceType normalizes and validates an absence type string.
func ParseAbsenceType(s string) (string, error) {
	switch t := strings.ToUpper(strings.TrimSpace(s)); t {
	case AbsenceVacation, AbsenceSick, AbsencePersonal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown absence type %q", s)
	}
}

// ParseAbsenceStatus normalizes and validates an absence status string.
func ParseAbsenceStatus(s string) (string, error) {
	switch t := strings.ToUpper(strings.TrimSpace(s)); t {
	case AbsencePending, AbsenceApproved, AbsenceRejected:
		return t, nil
	default:
		return "", fmt.Errorf("unknown absence status %q", s)
	}
}
