package interfaces

import (
	"regexp"
	"strings"
)

// sideEffectPatterns maps a coarse source-text signature to the side-effect
// tag it implies. Applied language-agnostically over raw chunk text — good
// enough for the coarse analysis the spec calls for, not a dataflow proof.
var sideEffectPatterns = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{SideEffectNetwork, regexp.MustCompile(`(?i)\b(http\.|net\.|socket|fetch\(|axios|requests\.|Dial\()`)},
	{SideEffectFilesystem, regexp.MustCompile(`(?i)\b(os\.(Open|ReadFile|WriteFile|Create|Remove)|ioutil\.|open\(|fs\.(readFile|writeFile)|File\.)`)},
	{SideEffectClock, regexp.MustCompile(`(?i)\b(time\.Now|Date\.now|datetime\.now|System\.currentTimeMillis)`)},
	{SideEffectRandomness, regexp.MustCompile(`(?i)\b(rand\.|random\.|Math\.random|SecureRandom)`)},
	{SideEffectProcess, regexp.MustCompile(`(?i)\b(os/exec|subprocess\.|exec\.Command|child_process|ProcessBuilder)`)},
	{SideEffectGPU, regexp.MustCompile(`(?i)\b(cuda|cgo.*gpu|onnxruntime|torch\.cuda)`)},
}

// DetectSideEffects scans raw source text for the pattern dictionary's
// coarse signatures, returning the matched tags or {none} if nothing fires.
func DetectSideEffects(source []byte) []string {
	text := string(source)
	var tags []string
	for _, p := range sideEffectPatterns {
		if p.pattern.MatchString(text) {
			tags = append(tags, p.tag)
		}
	}
	if len(tags) == 0 {
		return []string{SideEffectNone}
	}
	return tags
}

// routingPatterns matches a known routing vocabulary of HTTP verb + path
// literal across common frameworks in the pack (net/http, gorilla/mux style
// .HandleFunc, gin/echo style .GET/.POST, Express-style app.get/app.post).
var routingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.(Get|Post|Put|Delete|Patch|Head|Options)\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
	regexp.MustCompile(`(?i)HandleFunc\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
}

// DetectEndpoints scans source text for route-registration call patterns.
func DetectEndpoints(source []byte) []Endpoint {
	text := string(source)
	var endpoints []Endpoint
	for _, re := range routingPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			switch len(m) {
			case 3:
				endpoints = append(endpoints, Endpoint{HTTPMethod: strings.ToUpper(m[1]), Path: m[2]})
			case 2:
				endpoints = append(endpoints, Endpoint{HTTPMethod: "ANY", Path: m[1]})
			}
		}
	}
	return endpoints
}

// dataLayerPattern matches persistence-call vocabulary used to infer the
// data-layer role.
var dataLayerPattern = regexp.MustCompile(`(?i)\b(SELECT |INSERT INTO|UPDATE |DELETE FROM|\.Query\(|\.Exec\(|db\.|sql\.|Repository|session\.(query|add|commit))`)

// InferRole applies the structural cues the spec calls out: routing calls
// imply api-handler, persistence calls imply data-layer, a chunk made only
// of type/interface declarations implies types, otherwise component.
func InferRole(source []byte, onlyTypeDecls bool) string {
	if len(DetectEndpoints(source)) > 0 {
		return RoleAPIHandler
	}
	if onlyTypeDecls {
		return RoleTypes
	}
	if dataLayerPattern.Match(source) {
		return RoleDataLayer
	}
	return RoleComponent
}

// controlledVocabulary is the concept-tag dictionary concepts are matched
// against, grouped by the sort of component they describe.
var controlledVocabulary = []string{
	"handler", "service", "repository", "client", "server", "middleware",
	"parser", "validator", "cache", "queue", "worker", "scheduler",
	"auth", "config", "logger", "router", "adapter", "factory", "builder",
	"store", "index", "graph", "embedding", "search", "resolver",
}

// Concepts tokenizes name and scans source text for controlled-vocabulary
// hits, returning the deduplicated set used for lexical search.
func Concepts(name string, source []byte) []string {
	seen := map[string]bool{}
	var out []string
	add := func(tok string) {
		tok = strings.ToLower(tok)
		if len(tok) < 2 || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}

	for _, tok := range splitIdentifier(name) {
		add(tok)
	}

	text := strings.ToLower(string(source))
	for _, word := range controlledVocabulary {
		if strings.Contains(text, word) {
			add(word)
		}
	}
	return out
}

// splitIdentifier splits a camelCase/PascalCase/snake_case identifier into
// lowercase tokens.
func splitIdentifier(name string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			flush()
		case r >= 'A' && r <= 'Z':
			if i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				flush()
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
