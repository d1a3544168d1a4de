package a2a

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Known artifact type strings, the wire contract between pipeline stages.
// Concrete agents declare one of these as their output type in their
// Capability Card.
const (
	ArtifactImportResult         = "bookmark_import_result"
	ArtifactValidationResult     = "bookmark_validation_result"
	ArtifactEnrichmentResult     = "bookmark_enrichment_result"
	ArtifactCategorizationResult = "bookmark_categorization_result"
	ArtifactEmbeddingResult      = "bookmark_embedding_result"
)

// Artifact is the immutable, typed output of one agent execution,
// addressable by (TaskID, AgentType, Type). Once created it is never
// updated; it is only consumed as input context for the next stage.
type Artifact struct {
	ID        string    `db:"id" json:"id"`
	TaskID    string    `db:"task_id" json:"taskId"`
	AgentType string    `db:"agent_type" json:"agentType"`
	Type      string    `db:"type" json:"type"`
	MimeType  string    `db:"mime_type" json:"mimeType"`
	Data      []byte    `db:"data" json:"data"`
	SizeBytes int       `db:"size_bytes" json:"sizeBytes"`
	Checksum  string    `db:"checksum" json:"checksum"`
	Created   time.Time `db:"created" json:"created"`
}

// Checksum computes the artifact's content digest the same way the store
// does on write, so callers can verify a round trip without reaching into
// the store package.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the artifact's stored checksum matches its data:
// bytes written must equal bytes read.
func (a *Artifact) Verify() bool {
	return a.Checksum == Checksum(a.Data)
}

// ArtifactFilter narrows Get queries on the Artifact Store.
type ArtifactFilter struct {
	TaskID    string
	AgentType string
	Type      string
}
