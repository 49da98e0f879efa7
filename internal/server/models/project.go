package models

import "time"

// Project is owned by exactly one user. Non-owner access is granted through
// ProjectParticipant rows. Deleting a project cascades to its documents and
// participant rows; the corresponding blobs are cleaned up separately.
type Project struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	// LogoURL is empty when the project has no logo.
	LogoURL   string
	CreatedAt time.Time
}

// ProjectSummary is the listing shape: project info plus document filenames,
// no document content.
type ProjectSummary struct {
	ID          string
	Name        string
	Description string
	Documents   []string
}
