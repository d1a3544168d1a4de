package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

// ArtifactStore persists immutable typed outputs keyed by
// (task_id, agent_type, type). Writes are all-or-nothing and
// checksum-verified on read.
type ArtifactStore struct {
	db *DB
}

// NewArtifactStore returns an ArtifactStore backed by db.
func NewArtifactStore(db *DB) *ArtifactStore {
	return &ArtifactStore{db: db}
}

// Put writes a new artifact. If one already exists for
// (task_id, agent_type, type) it returns a2a.ErrDuplicateArtifact wrapping
// the existing record's id, so an idempotent producer can fetch and reuse
// it instead of retrying the write.
func (s *ArtifactStore) Put(ctx context.Context, taskID, agentType, artifactType string, data []byte, mimeType string) (*a2a.Artifact, error) {
	artifact := &a2a.Artifact{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		AgentType: agentType,
		Type:      artifactType,
		MimeType:  mimeType,
		Data:      data,
		SizeBytes: len(data),
		Checksum:  a2a.Checksum(data),
		Created:   time.Now(),
	}
	if artifact.MimeType == "" {
		artifact.MimeType = "application/json"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, task_id, agent_type, type, mime_type, data, size_bytes, checksum, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		artifact.ID, artifact.TaskID, artifact.AgentType, artifact.Type, artifact.MimeType,
		artifact.Data, artifact.SizeBytes, artifact.Checksum, artifact.Created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			existing, getErr := s.getOne(ctx, taskID, agentType, artifactType)
			if getErr != nil {
				return nil, fmt.Errorf("put artifact %s/%s/%s: %w", taskID, agentType, artifactType, a2a.ErrDuplicateArtifact)
			}
			return existing, fmt.Errorf("put artifact %s/%s/%s: %w", taskID, agentType, artifactType, a2a.ErrDuplicateArtifact)
		}
		return nil, fmt.Errorf("put artifact %s/%s/%s: %w", taskID, agentType, artifactType, err)
	}
	return artifact, nil
}

func (s *ArtifactStore) getOne(ctx context.Context, taskID, agentType, artifactType string) (*a2a.Artifact, error) {
	var artifact a2a.Artifact
	err := s.db.GetContext(ctx, &artifact, `
		SELECT id, task_id, agent_type, type, mime_type, data, size_bytes, checksum, created
		FROM artifacts WHERE task_id = $1 AND agent_type = $2 AND type = $3`,
		taskID, agentType, artifactType)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Get returns artifacts for a task, optionally filtered by agent type
// and/or artifact type, ordered by creation.
func (s *ArtifactStore) Get(ctx context.Context, filter a2a.ArtifactFilter) ([]*a2a.Artifact, error) {
	query := `SELECT id, task_id, agent_type, type, mime_type, data, size_bytes, checksum, created
		FROM artifacts WHERE task_id = $1`
	args := []any{filter.TaskID}
	idx := 2

	if filter.AgentType != "" {
		query += fmt.Sprintf(" AND agent_type = $%d", idx)
		args = append(args, filter.AgentType)
		idx++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, filter.Type)
		idx++
	}
	query += " ORDER BY created ASC"

	var artifacts []*a2a.Artifact
	if err := s.db.SelectContext(ctx, &artifacts, query, args...); err != nil {
		return nil, fmt.Errorf("get artifacts for task %s: %w", filter.TaskID, err)
	}

	for _, artifact := range artifacts {
		if !artifact.Verify() {
			return nil, fmt.Errorf("artifact %s checksum mismatch: %w", artifact.ID, a2a.ErrSharedResource)
		}
	}
	return artifacts, nil
}

// postgresUniqueViolation is the SQLSTATE Postgres reports for a unique
// constraint conflict, e.g. the (task_id, agent_type, type) index on
// artifacts or the (user_id, url) index on bookmarks.
const postgresUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	return false
}
