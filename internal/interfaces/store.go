package interfaces

import (
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Store persists and retrieves ComponentInterfaces, keyed by chunk_id.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open, schema-current database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var interfaceColumns = []string{
	"chunk_id", "name", "signature", "summary", "role",
	"inputs_json", "output", "methods_json", "endpoints_json",
	"dependencies_json", "side_effects_json", "usage_examples_json",
	"compatible_with_json", "concepts_json",
	"quality_usage_count", "quality_test_coverage", "quality_avg_score",
	"degraded", "confidence", "normalizer_version", "extractor_version",
}

// Put writes iface, replacing any prior interface recorded for the same
// chunk — extraction is a pure function, so a re-extract always wins.
func (s *Store) Put(iface ComponentInterface) error {
	inputsJSON, err := json.Marshal(iface.Inputs)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling inputs", err)
	}
	methodsJSON, err := json.Marshal(iface.Methods)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling methods", err)
	}
	endpointsJSON, err := json.Marshal(iface.Endpoints)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling endpoints", err)
	}
	dependenciesJSON, err := json.Marshal(iface.Dependencies)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling dependencies", err)
	}
	sideEffectsJSON, err := json.Marshal(iface.SideEffects)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling side effects", err)
	}
	usageExamplesJSON, err := json.Marshal(iface.UsageExamples)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling usage examples", err)
	}
	compatibleWithJSON, err := json.Marshal(iface.CompatibleWith)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling compatible_with", err)
	}
	conceptsJSON, err := json.Marshal(iface.Concepts)
	if err != nil {
		return cadierrors.Wrap(cadierrors.InvalidInput, "marshaling concepts", err)
	}

	_, err = sq.Insert("interfaces").
		Columns(interfaceColumns...).
		Values(
			iface.ChunkID, iface.Name, iface.Signature, iface.Summary, iface.Role,
			string(inputsJSON), iface.Output, string(methodsJSON), string(endpointsJSON),
			string(dependenciesJSON), string(sideEffectsJSON), string(usageExamplesJSON),
			string(compatibleWithJSON), string(conceptsJSON),
			iface.Quality.UsageCount, iface.Quality.TestCoverage, iface.Quality.AvgScore,
			iface.Degraded, iface.Confidence, iface.NormalizerVersion, iface.ExtractorVersion,
		).
		Suffix(`ON CONFLICT(chunk_id) DO UPDATE SET
			name=excluded.name, signature=excluded.signature, summary=excluded.summary,
			role=excluded.role, inputs_json=excluded.inputs_json, output=excluded.output,
			methods_json=excluded.methods_json, endpoints_json=excluded.endpoints_json,
			dependencies_json=excluded.dependencies_json, side_effects_json=excluded.side_effects_json,
			usage_examples_json=excluded.usage_examples_json, compatible_with_json=excluded.compatible_with_json,
			concepts_json=excluded.concepts_json, quality_usage_count=excluded.quality_usage_count,
			quality_test_coverage=excluded.quality_test_coverage, quality_avg_score=excluded.quality_avg_score,
			degraded=excluded.degraded, confidence=excluded.confidence,
			normalizer_version=excluded.normalizer_version, extractor_version=excluded.extractor_version`).
		RunWith(s.db).
		Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "writing interface", err)
	}
	return nil
}

// Delete removes chunkID's interface, if present. Deleting a nonexistent
// interface is a no-op.
func (s *Store) Delete(chunkID string) error {
	_, err := sq.Delete("interfaces").Where(sq.Eq{"chunk_id": chunkID}).RunWith(s.db).Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "deleting interface", err)
	}
	return nil
}

// Get loads the ComponentInterface recorded for chunkID.
func (s *Store) Get(chunkID string) (ComponentInterface, error) {
	row := sq.Select(interfaceColumns...).
		From("interfaces").
		Where(sq.Eq{"chunk_id": chunkID}).
		RunWith(s.db).
		QueryRow()
	return scanInterface(row, chunkID)
}

func scanInterface(row sq.RowScanner, chunkID string) (ComponentInterface, error) {
	var iface ComponentInterface
	var inputsJSON, methodsJSON, endpointsJSON, dependenciesJSON string
	var sideEffectsJSON, usageExamplesJSON, compatibleWithJSON, conceptsJSON string

	err := row.Scan(
		&iface.ChunkID, &iface.Name, &iface.Signature, &iface.Summary, &iface.Role,
		&inputsJSON, &iface.Output, &methodsJSON, &endpointsJSON,
		&dependenciesJSON, &sideEffectsJSON, &usageExamplesJSON,
		&compatibleWithJSON, &conceptsJSON,
		&iface.Quality.UsageCount, &iface.Quality.TestCoverage, &iface.Quality.AvgScore,
		&iface.Degraded, &iface.Confidence, &iface.NormalizerVersion, &iface.ExtractorVersion,
	)
	if err == sql.ErrNoRows {
		return ComponentInterface{}, cadierrors.New(cadierrors.NotFound, "interface not found: "+chunkID)
	}
	if err != nil {
		return ComponentInterface{}, cadierrors.Wrap(cadierrors.IOFailure, "scanning interface", err)
	}

	for _, pair := range []struct {
		raw string
		out any
	}{
		{inputsJSON, &iface.Inputs},
		{methodsJSON, &iface.Methods},
		{endpointsJSON, &iface.Endpoints},
		{dependenciesJSON, &iface.Dependencies},
		{sideEffectsJSON, &iface.SideEffects},
		{usageExamplesJSON, &iface.UsageExamples},
		{compatibleWithJSON, &iface.CompatibleWith},
		{conceptsJSON, &iface.Concepts},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.out); err != nil {
			return ComponentInterface{}, cadierrors.Wrap(cadierrors.IOFailure, "unmarshaling interface field", err)
		}
	}
	return iface, nil
}
