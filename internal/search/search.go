// Package search implements hybrid search: fusing lexical (TF-IDF), semantic
// (cosine), and quality-prior scores into a single ranked list, with hard
// filters and equivalence-class deduplication.
package search

import (
	"context"
	"sort"

	"github.com/gobwas/glob"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/chunkstore"
	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/index/text"
	"github.com/cadi-dev/cadi/internal/index/vector"
	"github.com/cadi-dev/cadi/internal/interfaces"
)

// Weights controls how the three signals combine. Defaults match spec's
// {0.3, 0.5, 0.2} split between text, semantic, and quality.
type Weights struct {
	Text     float64
	Semantic float64
	Quality  float64
}

// DefaultWeights is the weighting used when a caller passes a zero Weights.
var DefaultWeights = Weights{Text: 0.3, Semantic: 0.5, Quality: 0.2}

// Filters are hard predicates applied before scoring.
type Filters struct {
	Language  string
	Role      string
	Namespace string // glob pattern, empty matches everything
}

// Options configures one Search call.
type Options struct {
	Filters           Filters
	Weights           Weights
	Limit             int
	ExpandEquivalents bool
}

// Result is one ranked hit.
type Result struct {
	ChunkID   string
	Score     float64
	Interface interfaces.ComponentInterface
}

// Response is the outcome of a Search call. Degraded is set when the
// embedding provider was unavailable and Results reflects text-only
// scoring rather than the full hybrid fusion.
type Response struct {
	Results  []Result
	Degraded bool
}

// Engine composes the text index, vector index, graph view, and interface
// and chunk stores into hybrid search.
type Engine struct {
	textIndex   *text.Index
	vectorIndex *vector.Index
	graphView   *graph.View
	interfaces  *interfaces.Store
	chunks      *chunkstore.Store
}

// New wires the indexes and backing stores into one Engine.
func New(textIndex *text.Index, vectorIndex *vector.Index, graphView *graph.View, ifaceStore *interfaces.Store, chunkStore *chunkstore.Store) *Engine {
	return &Engine{
		textIndex:   textIndex,
		vectorIndex: vectorIndex,
		graphView:   graphView,
		interfaces:  ifaceStore,
		chunks:      chunkStore,
	}
}

const candidatePoolMultiplier = 4

// Search runs the hybrid fusion algorithm: gather lexical and semantic
// candidates, combine scores, apply hard filters, dedup equivalence
// classes, and return the top Limit results.
func (e *Engine) Search(ctx context.Context, queryText string, opts Options) (Response, error) {
	if queryText == "" {
		return Response{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	weights := opts.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights
	}

	pool := limit * candidatePoolMultiplier

	textResults, err := e.textIndex.Search(queryText, "", pool)
	if err != nil {
		return Response{}, err
	}

	degraded := false
	vectorResults, err := e.vectorIndex.Query(ctx, queryText, pool)
	if err != nil {
		if !cadierrors.Is(err, cadierrors.ProviderUnavailable) {
			return Response{}, err
		}
		// Embedding provider is down: degrade to text-only scoring
		// instead of failing the whole search.
		degraded = true
		vectorResults = nil
	}

	textScores := map[string]float64{}
	var maxText float64
	for _, r := range textResults {
		textScores[r.ChunkID] = r.Score
		if r.Score > maxText {
			maxText = r.Score
		}
	}

	semanticScores := map[string]float64{}
	for _, m := range vectorResults {
		// cosine distance in [0, 2] -> similarity in [0, 1]
		semanticScores[m.ChunkID] = 1 - m.Distance/2
	}

	// Edge case: zero embeddings (or a degraded provider) -> fall back to
	// text-only scoring with weights renormalized over the remaining
	// signals.
	if len(semanticScores) == 0 {
		total := weights.Text + weights.Quality
		if total > 0 {
			weights.Text /= total
			weights.Quality /= total
		}
		weights.Semantic = 0
	}

	candidates := map[string]bool{}
	for id := range textScores {
		candidates[id] = true
	}
	for id := range semanticScores {
		candidates[id] = true
	}

	var nsGlob glob.Glob
	if opts.Filters.Namespace != "" {
		nsGlob, err = glob.Compile(opts.Filters.Namespace, '/')
		if err != nil {
			return Response{}, err
		}
	}

	var scored []Result
	for chunkID := range candidates {
		iface, err := e.interfaces.Get(chunkID)
		if err != nil {
			continue
		}
		if opts.Filters.Role != "" && iface.Role != opts.Filters.Role {
			continue
		}
		if opts.Filters.Language != "" || nsGlob != nil {
			chunk, err := e.chunks.Get(chunkID)
			if err != nil {
				continue
			}
			if opts.Filters.Language != "" && chunk.Language != opts.Filters.Language {
				continue
			}
			if nsGlob != nil && !nsGlob.Match(chunk.Namespace) {
				continue
			}
		}

		textScore := normalize(textScores[chunkID], maxText)
		semanticScore := semanticScores[chunkID]
		qualityScore := iface.Quality.AvgScore

		combined := weights.Text*textScore + weights.Semantic*semanticScore + weights.Quality*qualityScore
		scored = append(scored, Result{ChunkID: chunkID, Score: combined, Interface: iface})
	}

	if !opts.ExpandEquivalents {
		scored = dedupEquivalents(scored, e.graphView)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ChunkID < scored[j].ChunkID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return Response{Results: scored, Degraded: degraded}, nil
}

func normalize(score, max float64) float64 {
	if max == 0 {
		return 0
	}
	return score / max
}

// dedupEquivalents keeps only the highest-scored representative per
// EQUIVALENT_TO class, breaking ties by the lexicographically lowest
// chunk_id in the class (the canonical representative per spec §4.7).
func dedupEquivalents(results []Result, view *graph.View) []Result {
	bestByClass := map[string]Result{}

	for _, r := range results {
		key := canonicalKey(view.EquivalenceClass(r.ChunkID))

		current, ok := bestByClass[key]
		if !ok || r.Score > current.Score || (r.Score == current.Score && r.ChunkID < current.ChunkID) {
			bestByClass[key] = r
		}
	}

	deduped := make([]Result, 0, len(bestByClass))
	for _, r := range bestByClass {
		deduped = append(deduped, r)
	}
	return deduped
}

func canonicalKey(class []string) string {
	min := class[0]
	for _, id := range class[1:] {
		if id < min {
			min = id
		}
	}
	return min
}
