// Package search provides an embedding-backed "did you mean this
// condition" helper for rulectl's admin tooling, grounded on the
// teacher's internal/knowledge VectorStore use of chromem-go — scoped
// here to fuzzy matching over a catalogue's condition keys rather than
// semantic search over thoughts.
//
// Not on the hot path of session.Answer/Start: this is purely an
// operator-facing convenience for catalogue authoring.
package search

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"visaexpert/internal/rule"
)

const conditionCollection = "conditions"

// Embedder generates vector embeddings from text, mirroring the
// teacher's embeddings.Embedder but trimmed to the one method this
// package needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is a fuzzy lookup over one catalogue's condition keys.
type Index struct {
	db       *chromem.DB
	embedder Embedder
}

// NewIndex builds an in-memory chromem-go index over every condition
// and action string in cat, embedding each with embedder.
func NewIndex(ctx context.Context, cat *rule.Catalogue, embedder Embedder) (*Index, error) {
	idx := &Index{db: chromem.NewDB(), embedder: embedder}

	collection, err := idx.db.CreateCollection(conditionCollection, nil, chromemEmbeddingFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("search: creating collection: %w", err)
	}

	for key := range collectConditionKeys(cat) {
		if err := collection.AddDocument(ctx, chromem.Document{ID: key, Content: key}); err != nil {
			return nil, fmt.Errorf("search: indexing %q: %w", key, err)
		}
	}

	return idx, nil
}

// Query returns up to limit condition keys closest to query.
func (idx *Index) Query(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	collection := idx.db.GetCollection(conditionCollection, chromemEmbeddingFunc(idx.embedder))
	if collection == nil {
		return nil, fmt.Errorf("search: collection not initialized")
	}
	if n := collection.Count(); n < limit {
		limit = n
	}
	if limit == 0 {
		return nil, nil
	}

	results, err := collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("search: querying %q: %w", query, err)
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out, nil
}

func collectConditionKeys(cat *rule.Catalogue) map[string]bool {
	keys := make(map[string]bool)
	for _, r := range cat.Rules {
		keys[r.Action] = true
		for _, cond := range r.Conditions {
			keys[cond] = true
		}
	}
	return keys
}

func chromemEmbeddingFunc(embedder Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
}
