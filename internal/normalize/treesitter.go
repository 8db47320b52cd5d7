package normalize

import (
	"bytes"
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterNormalizer canonicalizes source for one language using a
// tree-sitter grammar: strip comment nodes, alpha-rename identifiers bound
// by a local-declaration context, collapse trailing whitespace per line.
//
// Renaming here is a best-effort syntactic pass, not full scope resolution:
// it renames identifier text wherever it appears as the declared name of a
// parameter or local-variable node, and every bare identifier elsewhere in
// the tree with the same text. This degrades gracefully (false positives
// only widen what gets renamed together, they never under-rename) for the
// common case of non-overlapping local names within one chunk.
type treeSitterNormalizer struct {
	lang         string
	language     func() *sitter.Language
	bindingKinds map[string]bool
}

func newTreeSitterNormalizer(lang string, bindingKinds map[string]bool) treeSitterNormalizer {
	return treeSitterNormalizer{
		lang:         lang,
		language:     languageLoaders[lang],
		bindingKinds: bindingKinds,
	}
}

func (t treeSitterNormalizer) Normalize(source []byte) Result {
	loader := t.language
	if loader == nil {
		return lexicalNormalizer{}.Normalize(source)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(loader()); err != nil {
		return lexicalNormalizer{}.Normalize(source)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return lexicalNormalizer{}.Normalize(source)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return lexicalNormalizer{}.Normalize(source)
	}

	type span struct {
		start, end uint
		replace    []byte // nil means "drop" (comments)
	}
	var spans []span

	localNames := map[string]bool{}
	walk(root, func(n *sitter.Node) {
		if isCommentKind(n.Kind()) {
			spans = append(spans, span{uint(n.StartByte()), uint(n.EndByte()), nil})
			return
		}
		if t.bindingKinds[n.Kind()] || n.Kind() == "parameters" {
			var bound []*sitter.Node
			for _, field := range []string{"name", "pattern", "declarator"} {
				if c := n.ChildByFieldName(field); c != nil {
					bound = []*sitter.Node{c}
					break
				}
			}
			if bound == nil {
				for i := uint(0); i < n.NamedChildCount(); i++ {
					bound = append(bound, n.NamedChild(i))
				}
			}
			for _, name := range bound {
				if name != nil && (name.Kind() == "identifier" || name.Kind() == "variable_name") {
					localNames[string(source[name.StartByte():name.EndByte()])] = true
				}
			}
		}
	})

	rename := map[string]string{}
	ordered := make([]string, 0, len(localNames))
	for n := range localNames {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)
	for i, n := range ordered {
		rename[n] = fmt.Sprintf("%%%d", i)
	}

	if len(rename) > 0 {
		walk(root, func(n *sitter.Node) {
			if n.Kind() != "identifier" && n.Kind() != "field_identifier" && n.Kind() != "variable_name" {
				return
			}
			text := string(source[n.StartByte():n.EndByte()])
			if newName, ok := rename[text]; ok {
				spans = append(spans, span{uint(n.StartByte()), uint(n.EndByte()), []byte(newName)})
			}
		})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out bytes.Buffer
	pos := uint(0)
	for _, s := range spans {
		if s.start < pos {
			continue // overlapping span, keep the earlier one
		}
		out.Write(source[pos:s.start])
		if s.replace != nil {
			out.Write(s.replace)
		}
		pos = s.end
	}
	out.Write(source[pos:])

	lines := bytes.Split(out.Bytes(), []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t\r")
	}
	final := bytes.Join(lines, []byte("\n"))
	final = bytes.TrimRight(final, "\n")

	return Result{Bytes: final, Degraded: false}
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(uint(i)), visit)
	}
}

func isCommentKind(kind string) bool {
	switch kind {
	case "comment", "line_comment", "block_comment", "documentation_comment":
		return true
	}
	return false
}
