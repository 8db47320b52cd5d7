package normalize

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tsc "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tsjava "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tsphp "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var languageLoaders = map[string]func() *sitter.Language{
	"python":     func() *sitter.Language { return sitter.NewLanguage(tspython.Language()) },
	"typescript": func() *sitter.Language { return sitter.NewLanguage(tstypescript.LanguageTypescript()) },
	"rust":       func() *sitter.Language { return sitter.NewLanguage(tsrust.Language()) },
	"java":       func() *sitter.Language { return sitter.NewLanguage(tsjava.Language()) },
	"c":          func() *sitter.Language { return sitter.NewLanguage(tsc.Language()) },
	"php":        func() *sitter.Language { return sitter.NewLanguage(tsphp.LanguagePHP()) },
	"ruby":       func() *sitter.Language { return sitter.NewLanguage(tsruby.Language()) },
}

// Local-binding node kinds per grammar: nodes whose "name", "pattern" or
// "declarator" field (or, lacking those, whose identifier children)
// introduces a parameter or local variable, gathered from the grammars'
// node-type vocabularies for parameters and variable declarators.
var (
	pythonLocalBindingKinds = map[string]bool{
		"parameter":          true,
		"typed_parameter":    true,
		"default_parameter":  true,
		"identifier_pattern": true,
	}
	typescriptLocalBindingKinds = map[string]bool{
		"required_parameter": true,
		"optional_parameter": true,
		"variable_declarator": true,
	}
	rustLocalBindingKinds = map[string]bool{
		"parameter":      true,
		"let_declaration": true,
	}
	javaLocalBindingKinds = map[string]bool{
		"formal_parameter":     true,
		"variable_declarator":  true,
	}
	cLocalBindingKinds = map[string]bool{
		"parameter_declaration": true,
		"init_declarator":       true,
	}
	phpLocalBindingKinds = map[string]bool{
		"simple_parameter": true,
	}
	rubyLocalBindingKinds = map[string]bool{
		"method_parameters": true,
		"identifier":        false, // ruby locals are bare assignments; left unrenamed (degraded precision, not degraded flag)
	}
)
