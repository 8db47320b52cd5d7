// Package text implements the lexical half of hybrid search: an index over
// component-interface fields with per-field boosts, backed by an in-memory
// bleve index. Hits are scored with bleve's default TF-IDF model; BM25
// scoring is not enabled.
package text

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Field boosts applied at query time: a component's name carries the most
// weight, its summary and tagged concepts weigh equally below that, and raw
// signature text weighs least.
const (
	boostName       = 3.0
	boostSummary    = 2.0
	boostConcepts   = 2.0
	boostSignatures = 1.0
)

// Document is the lexically-searchable projection of a ComponentInterface.
type Document struct {
	ChunkID    string
	Namespace  string
	Name       string
	Summary    string
	Concepts   []string
	Signatures string
}

// Result is a single lexical match, ranked by bleve's TF-IDF score.
type Result struct {
	ChunkID string
	Score   float64
}

// Index wraps an in-memory bleve index over Documents.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// New builds an empty text index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "creating bleve index", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "standard"
	textField.Store = false

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = "keyword"
	keywordField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", textField)
	doc.AddFieldMappingsAt("summary", textField)
	doc.AddFieldMappingsAt("concepts", keywordField)
	doc.AddFieldMappingsAt("signatures", textField)
	doc.AddFieldMappingsAt("namespace", keywordField)

	im.DefaultMapping = doc
	return im
}

// Upsert indexes or reindexes a document under its ChunkID.
func (idx *Index) Upsert(doc Document) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.index.Index(doc.ChunkID, toBleveDoc(doc)); err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, fmt.Sprintf("indexing chunk %s", doc.ChunkID), err)
	}
	return nil
}

// Delete removes a chunk's document from the index (a no-op if absent).
func (idx *Index) Delete(chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.index.Delete(chunkID); err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, fmt.Sprintf("deleting chunk %s", chunkID), err)
	}
	return nil
}

func toBleveDoc(doc Document) map[string]any {
	return map[string]any{
		"name":       doc.Name,
		"summary":    doc.Summary,
		"concepts":   doc.Concepts,
		"signatures": doc.Signatures,
		"namespace":  doc.Namespace,
	}
}

// Search runs queryStr across name/summary/concepts/signatures with their
// respective boosts, optionally restricted to a namespace. Results are
// ordered by TF-IDF score, highest first, capped at limit.
func (idx *Index) Search(queryStr string, namespace string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	nameQ := bleve.NewMatchQuery(queryStr)
	nameQ.SetField("name")
	nameQ.SetBoost(boostName)

	summaryQ := bleve.NewMatchQuery(queryStr)
	summaryQ.SetField("summary")
	summaryQ.SetBoost(boostSummary)

	conceptsQ := bleve.NewMatchQuery(queryStr)
	conceptsQ.SetField("concepts")
	conceptsQ.SetBoost(boostConcepts)

	sigQ := bleve.NewMatchQuery(queryStr)
	sigQ.SetField("signatures")
	sigQ.SetBoost(boostSignatures)

	disjunction := bleve.NewDisjunctionQuery(nameQ, summaryQ, conceptsQ, sigQ)

	var finalQuery = bleve.Query(disjunction)
	if namespace != "" {
		nsQ := bleve.NewMatchQuery(namespace)
		nsQ.SetField("namespace")
		finalQuery = bleve.NewConjunctionQuery(disjunction, nsQ)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	res, err := idx.index.Search(req)
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "bleve search", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, Result{ChunkID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Close releases the underlying bleve index.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.index.Close()
}
