package events

import "time"

const (
	TypeStudentCreated = "student.created"
	TypeStudentUpdated = "student.updated"
	TypeStudentDeleted = "student.deleted"
)

// StudentPayload carries the roster fields of the affected student.
// Delete events only carry the id.
type StudentPayload struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Major string `json:"major,omitempty"`
}

// RosterEvent is published to NATS after every successful roster mutation.
type RosterEvent struct {
	Type       string         `json:"type"`
	Student    StudentPayload `json:"student"`
	OccurredAt time.Time      `json:"occurredAt"`
}
