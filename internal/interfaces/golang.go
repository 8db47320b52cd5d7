package interfaces

import (
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"

	"github.com/cadi-dev/cadi/internal/normalize"
)

// goExtractor derives a ComponentInterface from a Go chunk using go/ast,
// mirroring the teacher's declaration-walk shape but producing a role and
// interface summary instead of graph nodes.
type goExtractor struct{}

func (goExtractor) Extract(chunkID string, content []byte) ComponentInterface {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "chunk.go", content, parser.ParseComments)
	if err != nil {
		return degradedInterface(chunkID, "go", content)
	}

	var (
		primaryName string
		primarySig  string
		methods     []Method
		onlyTypes   = true
		deps        = map[string]bool{}
	)

	for _, imp := range file.Imports {
		deps[strings.Trim(imp.Path.Value, `"`)] = true
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			onlyTypes = false
			sig := formatFuncSignature(fset, d)
			m := Method{Name: d.Name.Name, Params: fieldListString(fset, d.Type.Params), Return: fieldListString(fset, d.Type.Results)}
			methods = append(methods, m)
			if ast.IsExported(d.Name.Name) && primaryName == "" {
				primaryName = d.Name.Name
				primarySig = sig
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if primaryName == "" && ast.IsExported(ts.Name.Name) {
					primaryName = ts.Name.Name
					primarySig = "type " + ts.Name.Name
				}
				if iface, ok := ts.Type.(*ast.InterfaceType); ok && iface.Methods != nil {
					for _, m := range iface.Methods.List {
						for _, n := range m.Names {
							methods = append(methods, Method{Name: n.Name})
						}
					}
				}
			}
		}
	}

	if primaryName == "" {
		primaryName = "chunk"
	}

	role := InferRole(content, onlyTypes)
	var inputs []Input
	var output string
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != primaryName {
			continue
		}
		inputs = paramsToInputs(fset, fn.Type.Params)
		output = fieldListString(fset, fn.Type.Results)
	}

	depList := make([]string, 0, len(deps))
	for d := range deps {
		depList = append(depList, d)
	}

	return ComponentInterface{
		ChunkID:           chunkID,
		Name:              primaryName,
		Signature:         primarySig,
		Summary:           role + " " + primaryName,
		Role:              role,
		Inputs:            inputs,
		Output:            output,
		Methods:           methods,
		Endpoints:         DetectEndpoints(content),
		Dependencies:      depList,
		SideEffects:       DetectSideEffects(content),
		UsageExamples:     nil,
		CompatibleWith:    nil,
		Concepts:          Concepts(primaryName, content),
		Quality:           Quality{},
		Degraded:          false,
		Confidence:        1.0,
		NormalizerVersion: normalize.Version,
		ExtractorVersion:  ExtractorVersion,
	}
}

func formatFuncSignature(fset *token.FileSet, fn *ast.FuncDecl) string {
	sig := "func "
	if fn.Recv != nil {
		sig += "(" + fieldListString(fset, fn.Recv) + ") "
	}
	sig += fn.Name.Name + "(" + fieldListString(fset, fn.Type.Params) + ")"
	if out := fieldListString(fset, fn.Type.Results); out != "" {
		sig += " " + out
	}
	return sig
}

func fieldListString(fset *token.FileSet, fl *ast.FieldList) string {
	if fl == nil {
		return ""
	}
	var parts []string
	for _, f := range fl.List {
		typeStr := exprString(fset, f.Type)
		if len(f.Names) == 0 {
			parts = append(parts, typeStr)
			continue
		}
		for range f.Names {
			parts = append(parts, typeStr)
		}
	}
	return strings.Join(parts, ", ")
}

func paramsToInputs(fset *token.FileSet, fl *ast.FieldList) []Input {
	if fl == nil {
		return nil
	}
	var inputs []Input
	for _, f := range fl.List {
		typeStr := exprString(fset, f.Type)
		if len(f.Names) == 0 {
			inputs = append(inputs, Input{TypeSignature: typeStr, Required: true})
			continue
		}
		for _, n := range f.Names {
			inputs = append(inputs, Input{Name: n.Name, TypeSignature: typeStr, Required: true})
		}
	}
	return inputs
}

func exprString(fset *token.FileSet, expr ast.Expr) string {
	var sb strings.Builder
	if err := format.Node(&sb, fset, expr); err != nil {
		return "unknown"
	}
	return sb.String()
}
