package normalize

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"sort"
)

// goNormalizer canonicalizes Go source using go/parser and go/ast: strip
// comments, alpha-rename locals per function scope, sort order-independent
// top-level declarations, and print with go/format for a stable layout.
type goNormalizer struct{}

func (goNormalizer) Normalize(source []byte) Result {
	fset := token.NewFileSet()
	// Parsing without ast.ParseComments drops all comment nodes, which is
	// the cheapest way to strip comments and doc nodes.
	file, err := parser.ParseFile(fset, "chunk.go", source, 0)
	if err != nil {
		return lexicalNormalizer{}.Normalize(source)
	}

	renameLocals(file)
	sortIndependentDecls(file)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return lexicalNormalizer{}.Normalize(source)
	}
	return Result{Bytes: buf.Bytes(), Degraded: false}
}

// renameLocals walks each function body and assigns deterministic positional
// names (%0, %1, …) to locals introduced by parameters, := and var. Module-
// external names (imports, package-level declarations) are left untouched.
func renameLocals(file *ast.File) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		renameFuncLocals(fn)
	}
}

func renameFuncLocals(fn *ast.FuncDecl) {
	next := 0
	names := map[*ast.Object]string{}

	assign := func(obj *ast.Object) string {
		if obj == nil {
			return ""
		}
		if n, ok := names[obj]; ok {
			return n
		}
		n := fmt.Sprintf("%%%d", next)
		next++
		names[obj] = n
		return n
	}

	if fn.Recv != nil {
		for _, f := range fn.Recv.List {
			for _, n := range f.Names {
				if n.Name != "_" && n.Obj != nil {
					n.Name = assign(n.Obj)
				}
			}
		}
	}
	if fn.Type.Params != nil {
		for _, f := range fn.Type.Params.List {
			for _, n := range f.Names {
				if n.Name != "_" && n.Obj != nil {
					n.Name = assign(n.Obj)
				}
			}
		}
	}
	if fn.Type.Results != nil {
		for _, f := range fn.Type.Results.List {
			for _, n := range f.Names {
				if n.Name != "_" && n.Obj != nil {
					n.Name = assign(n.Obj)
				}
			}
		}
	}

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok || ident.Name == "_" || ident.Obj == nil {
			return true
		}
		// Only rename identifiers bound within this function: Obj.Decl is
		// the declaring node, which for locals lives inside fn.Body or
		// fn.Type (parameters, handled above).
		decl, ok := ident.Obj.Decl.(ast.Node)
		if !ok || decl.Pos() < fn.Pos() || decl.Pos() >= fn.End() {
			return true
		}
		switch ident.Obj.Kind {
		case ast.Var, ast.Con:
			ident.Name = assign(ident.Obj)
		}
		return true
	})
}

// sortIndependentDecls sorts top-level type/const/var/func declarations by
// name, leaving init funcs and declarations with call-bearing initializers
// (order-observable side effects) in their original relative position.
func sortIndependentDecls(file *ast.File) {
	type entry struct {
		decl ast.Decl
		key  string
		pin  bool
	}

	entries := make([]entry, len(file.Decls))
	for i, d := range file.Decls {
		entries[i] = entry{decl: d, key: declKey(d), pin: hasObservableOrder(d)}
	}

	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].pin != sorted[j].pin {
			return false
		}
		return sorted[i].key < sorted[j].key
	})

	// Re-thread pinned entries back into their original index, filling the
	// remaining slots with the sorted movable entries in order.
	result := make([]ast.Decl, len(entries))
	movable := make([]ast.Decl, 0, len(entries))
	for _, e := range sorted {
		if !e.pin {
			movable = append(movable, e.decl)
		}
	}
	mi := 0
	for i, e := range entries {
		if e.pin {
			result[i] = e.decl
		} else {
			result[i] = movable[mi]
			mi++
		}
	}
	file.Decls = result
}

func declKey(d ast.Decl) string {
	switch v := d.(type) {
	case *ast.FuncDecl:
		return "1:" + v.Name.Name
	case *ast.GenDecl:
		if len(v.Specs) == 0 {
			return "0:"
		}
		switch s := v.Specs[0].(type) {
		case *ast.TypeSpec:
			return "0:" + s.Name.Name
		case *ast.ValueSpec:
			if len(s.Names) > 0 {
				return "0:" + s.Names[0].Name
			}
		}
	}
	return "9:"
}

func hasObservableOrder(d ast.Decl) bool {
	fn, ok := d.(*ast.FuncDecl)
	if ok && fn.Name.Name == "init" {
		return true
	}
	gd, ok := d.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return false
	}
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, val := range vs.Values {
			if containsCall(val) {
				return true
			}
		}
	}
	return false
}

func containsCall(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if _, ok := n.(*ast.CallExpr); ok {
			found = true
			return false
		}
		return true
	})
	return found
}
