package model

import "time"

// AuditLog mirrors the append-only 'audit_log' table. Details holds a
// JSON object; sensitive fields are masked before the row is written.
type AuditLog struct {
	ID          string // uuid
	ActorID     uint64
	Action      string
	TargetTable string
	TargetID    string
	Details     string
	CreatedAt   time.Time
}
