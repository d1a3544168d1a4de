package embedstore

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

const collectionName = "bookmark_embeddings"

// Store persists bookmark embedding vectors and answers similarity
// queries. One Store holds every user's bookmarks in a single collection;
// each document carries its owning user id in metadata and QueryVector
// filters on it, the same isolation boundary the rest of the pipeline
// enforces at the query-filter level.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// OpenInMemory creates a non-durable Store, used in tests and one-shot
// CLI invocations where nothing needs to survive process exit.
func OpenInMemory() (*Store, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", collectionName, err)
	}
	return &Store{db: db, collection: collection}, nil
}

// Open creates or loads a persistent Store rooted at path. The collection
// has no embedding func: Put always supplies a precomputed vector from the
// Embedding Agent. dims is not used by Open.
func Open(path string, dims int) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open embedding store at %s: %w", path, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", collectionName, err)
	}

	return &Store{db: db, collection: collection}, nil
}

// Put stores or replaces the embedding for a bookmark, keyed by bookmark
// id with the owning user id carried in metadata so QueryVector can
// filter by user.
func (s *Store) Put(ctx context.Context, bookmarkID, userID string, vector []float32, text string) error {
	doc := chromem.Document{
		ID:        bookmarkID,
		Embedding: vector,
		Content:   text,
		Metadata:  map[string]string{"userId": userID},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("put embedding for bookmark %s: %w", bookmarkID, err)
	}
	return nil
}

// Match is a single nearest-neighbor hit.
type Match struct {
	BookmarkID string
	Similarity float32
}

// QueryVector returns the n bookmarks (for userID) whose embeddings are
// closest to vector, ordered by descending similarity.
func (s *Store) QueryVector(ctx context.Context, userID string, vector []float32, n int) ([]Match, error) {
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, n, map[string]string{"userId": userID}, nil)
	if err != nil {
		return nil, fmt.Errorf("query embeddings for user %s: %w", userID, err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{BookmarkID: r.ID, Similarity: r.Similarity}
	}
	return matches, nil
}

// Delete removes a bookmark's embedding, e.g. when the bookmark itself is
// deleted.
func (s *Store) Delete(ctx context.Context, bookmarkID string) error {
	if err := s.collection.Delete(ctx, nil, nil, bookmarkID); err != nil {
		return fmt.Errorf("delete embedding for bookmark %s: %w", bookmarkID, err)
	}
	return nil
}

// Count returns the number of embeddings currently stored.
func (s *Store) Count() int {
	return s.collection.Count()
}
