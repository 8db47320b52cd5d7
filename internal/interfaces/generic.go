package interfaces

import (
	"regexp"
	"strings"

	"github.com/cadi-dev/cadi/internal/normalize"
)

// declarationPatterns recognizes a top-level callable/type declaration by
// name only, for languages normalize has no tree-sitter grammar for (or
// whose source fails to parse cleanly). It is the last-resort fallback,
// not the primary extraction path.
var declarationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_]\w*)`),
	regexp.MustCompile(`(?m)^\s*fn\s+([A-Za-z_]\w*)`),
	regexp.MustCompile(`(?m)^\s*(?:public|private|protected)?\s*(?:static\s+)?class\s+([A-Za-z_]\w*)`),
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_]\w*)`),
}

// genericExtractor is the fallback for any language without a dedicated
// Go-style Extractor. It walks the tree-sitter AST normalize already
// builds for that language (per-declaration, the same per-language-adapter
// depth the Go extractor gets) and only degrades to a bare name match, or
// to the minimal unparsed interface, when that AST isn't available.
type genericExtractor struct {
	language string
}

func (g genericExtractor) Extract(chunkID string, content []byte) ComponentInterface {
	decls, imports, ok := normalize.ParseDeclarations(g.language, content)
	if !ok {
		return g.extractByNameOnly(chunkID, content)
	}
	if len(decls) == 0 {
		return g.extractByNameOnly(chunkID, content)
	}

	var methods []Method
	var primary *normalize.Declaration
	onlyTypes := true
	for i := range decls {
		d := &decls[i]
		if d.Kind == "function" || d.Kind == "method" {
			onlyTypes = false
			methods = append(methods, Method{Name: d.Name, Params: d.Params, Return: d.ReturnType})
			if primary == nil {
				primary = d
			}
		}
	}
	if primary == nil {
		primary = &decls[0]
	}

	role := InferRole(content, onlyTypes)
	output := primary.ReturnType
	if output == "" {
		output = "unknown"
	}

	return ComponentInterface{
		ChunkID:           chunkID,
		Name:              primary.Name,
		Signature:         primary.Name + primary.Params,
		Summary:           role + " " + primary.Name,
		Role:              role,
		Inputs:            splitParams(primary.Params),
		Output:            output,
		Methods:           methods,
		Endpoints:         DetectEndpoints(content),
		Dependencies:      imports,
		SideEffects:       DetectSideEffects(content),
		Concepts:          Concepts(primary.Name, content),
		Degraded:          false,
		Confidence:        0.9,
		NormalizerVersion: normalize.Version,
		ExtractorVersion:  ExtractorVersion,
	}
}

// extractByNameOnly is the degraded path: no tree-sitter grammar for the
// language, or the source didn't parse cleanly. It still names the
// primary symbol when a declaration keyword pattern matches, but can't
// offer methods, inputs, or dependencies without a real parse.
func (g genericExtractor) extractByNameOnly(chunkID string, content []byte) ComponentInterface {
	name := ""
	for _, re := range declarationPatterns {
		if m := re.FindSubmatch(content); m != nil {
			name = string(m[1])
			break
		}
	}

	if name == "" {
		return degradedInterface(chunkID, g.language, content)
	}

	role := InferRole(content, false)
	return ComponentInterface{
		ChunkID:           chunkID,
		Name:              name,
		Signature:         name,
		Summary:           role + " " + name,
		Role:              role,
		Methods:           []Method{{Name: name}},
		Endpoints:         DetectEndpoints(content),
		SideEffects:       DetectSideEffects(content),
		Concepts:          Concepts(name, content),
		Degraded:          true,
		Confidence:        0.6,
		NormalizerVersion: normalize.Version,
		ExtractorVersion:  ExtractorVersion,
	}
}

// splitParams breaks a raw "(a, b: T, c)" parameter-list span into one
// Input per top-level comma-separated entry, tracking bracket depth so
// generics and nested types aren't split apart. It's a best-effort lexical
// split, not a per-grammar parse — good enough for the interface summary
// and for cross-language compatibility matching, not for re-emitting code.
func splitParams(raw string) []Input {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var inputs []Input
	depth := 0
	start := 0
	flush := func(end int) {
		part := strings.TrimSpace(raw[start:end])
		if part == "" {
			return
		}
		inputs = append(inputs, Input{TypeSignature: part, Required: true})
	}
	for i, r := range raw {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(raw))
	return inputs
}

// degradedInterface is the minimal interface emitted when no declaration
// can be named at all — role "component", confidence below the spec's 0.5
// threshold, degraded set, and the enclosing ingest still succeeds.
func degradedInterface(chunkID, language string, content []byte) ComponentInterface {
	return ComponentInterface{
		ChunkID:           chunkID,
		Name:              "chunk",
		Signature:         "",
		Summary:           "unparsed " + language + " chunk",
		Role:              RoleComponent,
		SideEffects:       DetectSideEffects(content),
		Degraded:          true,
		Confidence:        0.2,
		NormalizerVersion: normalize.Version,
		ExtractorVersion:  ExtractorVersion,
	}
}
