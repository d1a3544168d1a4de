// Package embedstore stores and searches bookmark embedding vectors. It
// wraps a chromem-go collection, keeping one document per bookmark keyed
// by bookmark id, and exposes nearest-neighbor lookup for the bookmark
// search surface without requiring pgvector or another Postgres extension.
package embedstore
