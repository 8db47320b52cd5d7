package normalize

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Declaration is one top-level callable or type found by ParseDeclarations.
type Declaration struct {
	Name       string
	Kind       string // "function", "method", or "type"
	Params     string // raw parameter-list text, as written
	ReturnType string // raw return-type text, empty if the grammar has none
	Imports    []string
}

// declarationKinds maps a tree-sitter grammar's node kind to the coarse
// category ParseDeclarations reports it as, per language. Only top-level
// (or class-body) declarations that carry a "name" field are listed —
// expression-level closures and anonymous functions are not declarations.
var declarationKinds = map[string]map[string]string{
	"python": {
		"function_definition": "function",
		"class_definition":    "type",
	},
	"typescript": {
		"function_declaration": "function",
		"method_definition":    "method",
		"class_declaration":    "type",
		"interface_declaration": "type",
	},
	"rust": {
		"function_item": "function",
		"struct_item":   "type",
		"enum_item":     "type",
		"trait_item":    "type",
	},
	"java": {
		"method_declaration":     "method",
		"constructor_declaration": "method",
		"class_declaration":      "type",
		"interface_declaration":  "type",
	},
	"c": {
		"function_definition": "function",
		"struct_specifier":    "type",
	},
	"php": {
		"function_definition": "function",
		"method_declaration":  "method",
		"class_declaration":   "type",
	},
	"ruby": {
		"method": "method",
		"class":  "type",
	},
}

// importKinds names the node kind each grammar uses for a module import
// statement, and the field (if any) holding the imported path; when field
// is empty the whole node's text is used.
var importKinds = map[string]struct {
	kind  string
	field string
}{
	"python":     {"import_from_statement", "module_name"},
	"typescript": {"import_statement", "source"},
	"rust":       {"use_declaration", "argument"},
	"java":       {"import_declaration", ""},
	"c":          {"preproc_include", "path"},
	"php":        {"namespace_use_declaration", ""},
	"ruby":       {"call", ""}, // require/require_relative are plain calls; best-effort only
}

// languageKey maps an extraction-facing language tag to the tree-sitter
// grammar key it shares a parser with (javascript/typescript share a
// grammar binding, as do cpp/c), matching the registry in normalize.go.
func languageKey(language string) string {
	switch language {
	case "javascript":
		return "typescript"
	case "cpp":
		return "c"
	default:
		return language
	}
}

// ParseDeclarations walks source's tree-sitter AST for language and returns
// every recognized declaration, nested ones included, plus the file's
// import targets.
// ok is false when language has no grammar registered or source fails to
// parse cleanly — callers should fall back to a lexical treatment in that
// case, the same contract Normalize's Degraded flag carries.
func ParseDeclarations(language string, source []byte) (decls []Declaration, imports []string, ok bool) {
	key := languageKey(language)
	loader := languageLoaders[key]
	if loader == nil {
		return nil, nil, false
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(loader()); err != nil {
		return nil, nil, false
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, nil, false
	}

	kinds := declarationKinds[key]
	imp := importKinds[key]
	seenImport := map[string]bool{}

	walk(root, func(n *sitter.Node) {
		if category, isDecl := kinds[n.Kind()]; isDecl {
			name := n.ChildByFieldName("name")
			if name == nil {
				return
			}
			d := Declaration{
				Name: string(source[name.StartByte():name.EndByte()]),
				Kind: category,
			}
			if params := n.ChildByFieldName("parameters"); params != nil {
				d.Params = string(source[params.StartByte():params.EndByte()])
			}
			if ret := n.ChildByFieldName("return_type"); ret != nil {
				d.ReturnType = string(source[ret.StartByte():ret.EndByte()])
			}
			decls = append(decls, d)
			return
		}

		if imp.kind != "" && n.Kind() == imp.kind {
			target := n
			if imp.field != "" {
				if f := n.ChildByFieldName(imp.field); f != nil {
					target = f
				}
			}
			text := string(source[target.StartByte():target.EndByte()])
			if !seenImport[text] {
				seenImport[text] = true
				imports = append(imports, text)
			}
		}
	})

	return decls, imports, true
}
