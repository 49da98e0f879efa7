package models

import "time"

// Document belongs to exactly one project. Filename is unique within the
// project; collisions at upload time are resolved with a "(n)" suffix.
// The content lives in object storage under StorageKey.
type Document struct {
	ID        string
	ProjectID string
	Filename  string
	// StorageKey is the object-storage key, "{project_id}/{filename}".
	StorageKey string
	// FileURL is the public URL derived from the bucket and key.
	FileURL   string
	CreatedAt time.Time
}
