package models

import "time"

// ProjectParticipant grants a non-owner user access to a project.
// At most one row exists per (project, user) pair.
type ProjectParticipant struct {
	ID        string
	ProjectID string
	UserID    string
	CreatedAt time.Time
}
