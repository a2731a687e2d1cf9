package model

import "time"

// ArtifactKind separates download artifacts from preview artifacts so their
// identifiers live in distinct namespaces.
type ArtifactKind string

const (
	ArtifactDownload ArtifactKind = "download"
	ArtifactPreview  ArtifactKind = "preview"
)

// Artifact is a generated file waiting to be fetched exactly once.
type Artifact struct {
	ID          string       `json:"id"`
	Kind        ArtifactKind `json:"kind"`
	Path        string       `json:"path"`
	DisplayName string       `json:"display_name"`
	ContentType string       `json:"content_type"`
	CreatedAt   time.Time    `json:"created_at"`
}
