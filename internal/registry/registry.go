// Package registry is the composition root: it wires the chunk store,
// normalizer/hasher, interface extractor, graph, dedup engine, text and
// vector indexes, search engine, resolver, and alias store into the
// agent-facing operations the rest of the system calls.
package registry

import (
	"context"
	"database/sql"
	"sort"

	"github.com/cadi-dev/cadi/internal/alias"
	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/chunkstore"
	"github.com/cadi-dev/cadi/internal/config"
	"github.com/cadi-dev/cadi/internal/dedup"
	"github.com/cadi-dev/cadi/internal/embedding"
	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/hashing"
	"github.com/cadi-dev/cadi/internal/index/text"
	"github.com/cadi-dev/cadi/internal/index/vector"
	"github.com/cadi-dev/cadi/internal/interfaces"
	"github.com/cadi-dev/cadi/internal/resolve"
	"github.com/cadi-dev/cadi/internal/search"
)

// Versions is stamped onto every response so callers can detect when a
// re-derivation is required after a normalizer or extractor version bump.
type Versions struct {
	NormalizerVersion string `json:"normalizer_version"`
	ExtractorVersion  string `json:"extractor_version"`
}

// IngestResult is the outcome of one Ingest call.
type IngestResult struct {
	ChunkID      string
	SemanticHash string
	Interface    interfaces.ComponentInterface
	DuplicateOf  string // canonical chunk_id, if this content is a semantic duplicate
	Versions     Versions
}

// ChunkView is the response shape for GetChunk.
type ChunkView struct {
	ChunkID   string
	Interface interfaces.ComponentInterface
	Source    []byte // nil unless requested
	Versions  Versions
}

// ComposeResult is the response shape for ComposeCheck.
type ComposeResult struct {
	Valid     bool
	Order     []string
	Issues    []resolve.Issue
	Gaps      []string
	Truncated bool
}

// DependenciesView is the response shape for Dependencies.
type DependenciesView struct {
	Direct     []string
	Transitive []string
	Edges      []graph.Edge
	Truncated  bool
}

// Registry is the top-level CADI API: the single object agent bridges,
// CLIs, and editor tooling are expected to call into.
type Registry struct {
	cfg *config.Config

	chunks     *chunkstore.Store
	interfaces *interfaces.Store
	graphStore *graph.Store
	graphView  *graph.View
	dedup      *dedup.Engine
	textIndex  *text.Index
	vectorIdx  *vector.Index
	searchEng  *search.Engine
	resolver   *resolve.Resolver
	aliases    *alias.Store
}

// Open builds a Registry atop an already-opened, schema-current database
// and an embedding provider, applying cfg's derivation versions and search
// defaults.
func Open(db *sql.DB, provider embedding.Provider, cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	cachedProvider, err := embedding.WithCache(provider, cfg.Embedding.CacheSize)
	if err != nil {
		return nil, err
	}

	chunks := chunkstore.New(db)
	ifaceStore := interfaces.NewStore(db)
	graphStore := graph.NewStore(db)
	graphView, err := graph.NewView(graphStore)
	if err != nil {
		return nil, err
	}

	textIndex, err := text.New()
	if err != nil {
		return nil, err
	}
	vectorIdx := vector.New(db, cachedProvider)

	return &Registry{
		cfg:        cfg,
		chunks:     chunks,
		interfaces: ifaceStore,
		graphStore: graphStore,
		graphView:  graphView,
		dedup:      dedup.New(db, graphStore),
		textIndex:  textIndex,
		vectorIdx:  vectorIdx,
		searchEng:  search.New(textIndex, vectorIdx, graphView, ifaceStore, chunks),
		resolver:   resolve.New(graphView, cfg.Resolver.MaxVisited),
		aliases:    alias.New(db),
	}, nil
}

func (r *Registry) versions() Versions {
	return Versions{
		NormalizerVersion: r.cfg.Derivation.NormalizerVersion,
		ExtractorVersion:  r.cfg.Derivation.ExtractorVersion,
	}
}

// Ingest runs the full chunk ingest pipeline: normalize, hash, store,
// extract interface, index (lexical + vector), link (dedup). A parse
// failure never aborts ingest — it degrades to a lexical normalization and
// a minimal interface, recorded with degraded=true. Ingest is atomic at
// chunk granularity: any failure after the chunk row is written rolls back
// the interface, text, and vector entries written so far, so a failed
// ingest never leaves orphaned derived state. An embedding provider
// outage is not such a failure — it degrades the chunk (skip vector,
// leave it for a later re-index) rather than rolling back or aborting.
func (r *Registry) Ingest(ctx context.Context, content []byte, language, namespace string) (IngestResult, error) {
	if len(content) == 0 {
		return IngestResult{}, cadierrors.New(cadierrors.InvalidInput, "content must not be empty")
	}
	if max := r.cfg.Storage.MaxContentBytes; max > 0 && len(content) > max {
		return IngestResult{}, cadierrors.New(cadierrors.InvalidInput, "content exceeds configured max_content_bytes")
	}

	semanticHash, parseDegraded := hashing.Derive(language, content)

	chunkID, err := r.chunks.PutWithHash(content, language, namespace, semanticHash)
	if err != nil {
		return IngestResult{}, err
	}

	iface := interfaces.For(language).Extract(chunkID, content)
	iface.Degraded = iface.Degraded || parseDegraded

	if err := r.interfaces.Put(iface); err != nil {
		_ = r.chunks.Delete(chunkID)
		return IngestResult{}, err
	}

	if err := r.textIndex.Upsert(text.Document{
		ChunkID:    chunkID,
		Namespace:  namespace,
		Name:       iface.Name,
		Summary:    iface.Summary,
		Concepts:   iface.Concepts,
		Signatures: iface.Signature,
	}); err != nil {
		_ = r.interfaces.Delete(chunkID)
		_ = r.chunks.Delete(chunkID)
		return IngestResult{}, err
	}

	if err := r.vectorIdx.Upsert(ctx, chunkID, iface.Name+" "+iface.Summary+" "+iface.Signature); err != nil {
		if !cadierrors.Is(err, cadierrors.ProviderUnavailable) {
			_ = r.textIndex.Delete(chunkID)
			_ = r.interfaces.Delete(chunkID)
			_ = r.chunks.Delete(chunkID)
			return IngestResult{}, err
		}
		// Embedding provider outage: skip the vector entry and mark the
		// chunk degraded rather than losing the chunk, interface, and
		// text-index work already committed.
		iface.Degraded = true
		if putErr := r.interfaces.Put(iface); putErr != nil {
			_ = r.textIndex.Delete(chunkID)
			_ = r.interfaces.Delete(chunkID)
			_ = r.chunks.Delete(chunkID)
			return IngestResult{}, putErr
		}
	}

	var duplicateOf string
	if err := r.dedup.OnIngest(chunkID, language, semanticHash); err != nil {
		_ = r.vectorIdx.Delete(chunkID)
		_ = r.textIndex.Delete(chunkID)
		_ = r.interfaces.Delete(chunkID)
		_ = r.chunks.Delete(chunkID)
		return IngestResult{}, err
	}
	if err := r.graphView.Reload(); err != nil {
		_ = r.vectorIdx.Delete(chunkID)
		_ = r.textIndex.Delete(chunkID)
		_ = r.interfaces.Delete(chunkID)
		_ = r.chunks.Delete(chunkID)
		return IngestResult{}, err
	}
	class := r.graphView.EquivalenceClass(chunkID)
	if len(class) > 1 {
		canonical := class[0]
		for _, id := range class[1:] {
			if id < canonical {
				canonical = id
			}
		}
		if canonical != chunkID {
			duplicateOf = canonical
		}
	}

	return IngestResult{
		ChunkID:      chunkID,
		SemanticHash: semanticHash,
		Interface:    iface,
		DuplicateOf:  duplicateOf,
		Versions:     r.versions(),
	}, nil
}

// GetChunk returns chunkID's interface, and its raw source if requested.
func (r *Registry) GetChunk(chunkID string, includeSource bool) (ChunkView, error) {
	iface, err := r.interfaces.Get(chunkID)
	if err != nil {
		return ChunkView{}, err
	}

	view := ChunkView{ChunkID: chunkID, Interface: iface, Versions: r.versions()}
	if includeSource {
		chunk, err := r.chunks.Get(chunkID)
		if err != nil {
			return ChunkView{}, err
		}
		view.Source = chunk.Content
	}
	return view, nil
}

// GetInterface returns chunkID's ComponentInterface.
func (r *Registry) GetInterface(chunkID string) (interfaces.ComponentInterface, error) {
	return r.interfaces.Get(chunkID)
}

// Search runs hybrid search over the registry's indexes.
func (r *Registry) Search(ctx context.Context, query string, opts search.Options) (search.Response, error) {
	return r.searchEng.Search(ctx, query, opts)
}

// ResolveAlias returns the chunk_id an alias currently points at.
func (r *Registry) ResolveAlias(alias string) (string, error) {
	return r.aliases.Resolve(alias)
}

// ComposeCheck validates that chunkIDs form a valid, orderable composition:
// no DEPENDS_ON cycle, no missing transitive inputs, and a dependency-order
// topological sort for the caller to apply chunks in.
func (r *Registry) ComposeCheck(ctx context.Context, chunkIDs []string) (ComposeResult, error) {
	chunks := map[string]interfaces.ComponentInterface{}
	for _, id := range chunkIDs {
		iface, err := r.interfaces.Get(id)
		if err != nil {
			return ComposeResult{}, err
		}
		chunks[id] = iface
	}

	issues := r.resolver.ValidateComposition(ctx, chunks)

	valid := true
	truncated := false
	for _, issue := range issues {
		if issue.Severity == "error" {
			valid = false
		}
		if issue.Message == truncatedIssueMessage {
			truncated = true
		}
	}

	var order []string
	var gaps []string
	if valid {
		order = topologicalOrder(ctx, chunkIDs, r.graphView)
	} else {
		for _, issue := range issues {
			if issue.Severity == "error" {
				gaps = append(gaps, issue.Message)
			}
		}
	}

	return ComposeResult{Valid: valid, Order: order, Issues: issues, Gaps: gaps, Truncated: truncated}, nil
}

const truncatedIssueMessage = "dependency check truncated: node budget or deadline exceeded"

// topologicalOrder sorts ids so that every DEPENDS_ON dependency precedes
// its dependent, breaking ties lexicographically for determinism.
func topologicalOrder(ctx context.Context, ids []string, view *graph.View) []string {
	inSet := map[string]bool{}
	for _, id := range ids {
		inSet[id] = true
	}

	visited := map[string]bool{}
	var order []string

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		result, err := view.Transitive(ctx, id, graph.DependsOn, 1, 0)
		if err == nil {
			deps := append([]string(nil), result.Visited...)
			sort.Strings(deps)
			for _, dep := range deps {
				if inSet[dep] {
					visit(dep)
				}
			}
		}
		order = append(order, id)
	}

	for _, id := range sorted {
		visit(id)
	}
	return order
}

// Dependencies returns chunkID's direct and transitive dependencies under
// DEPENDS_ON, bounded by maxDepth.
func (r *Registry) Dependencies(ctx context.Context, chunkID string, maxDepth int) (DependenciesView, error) {
	closure, err := r.resolver.ResolveAll(ctx, []string{chunkID}, maxDepth)
	if err != nil {
		return DependenciesView{}, err
	}
	return DependenciesView{Direct: closure.Direct, Transitive: closure.Transitive, Edges: closure.Edges, Truncated: closure.Truncated}, nil
}

// FindEquivalents returns every chunk in chunkID's EQUIVALENT_TO class,
// excluding chunkID itself.
func (r *Registry) FindEquivalents(chunkID string) []string {
	class := r.graphView.EquivalenceClass(chunkID)
	var others []string
	for _, id := range class {
		if id != chunkID {
			others = append(others, id)
		}
	}
	return others
}

// DeleteChunk removes a chunk, refusing with ReferenceHeld while edges
// still reference it, and drops its index entries on success.
func (r *Registry) DeleteChunk(chunkID string) error {
	if err := r.chunks.Delete(chunkID); err != nil {
		return err
	}
	if err := r.interfaces.Delete(chunkID); err != nil {
		return err
	}
	if err := r.textIndex.Delete(chunkID); err != nil {
		return err
	}
	if err := r.vectorIdx.Delete(chunkID); err != nil {
		return err
	}
	return nil
}

// Close releases resources held by the registry's indexes. It does not
// close the underlying database connection, which the caller owns.
func (r *Registry) Close() error {
	return cadierrors.Wrap(cadierrors.IOFailure, "closing text index", r.textIndex.Close())
}
