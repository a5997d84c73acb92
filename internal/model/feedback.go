package model

import "time"

// Polish states for feedback content. An empty status means polishing was
// never requested for the row.
const (
	PolishPolishing = "POLISHING"
	PolishReady     = "READY"
	PolishFailed    = "FAILED"
)

// Feedback visibility values.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// Feedback mirrors the 'feedback' table. PolishedContent and PolishError
// are filled in by the background polish consumer; reads of a row in the
// POLISHING state see the original content until the job lands.
// PolishJobID names the job whose result the row is waiting on; results
// from any other job are discarded.
type Feedback struct {
	ID              uint64
	AuthorID        uint64
	TargetUserID    uint64
	Content         string
	PolishedContent *string
	PolishStatus    *string
	PolishError     *string
	PolishJobID     *string
	Visibility      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
