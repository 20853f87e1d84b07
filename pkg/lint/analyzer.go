// Package lint provides static analysis checks for the characterization API.
//
// This analyzer detects common mistakes when driving an algorithm:
//   - ComputeNextTestInputs calls whose requested inputs are discarded
//   - ComputeFailureInducingCombinations calls whose result is discarded
//   - NewTupleList called with a non-positive literal id
//   - NewCombination called without values
//
// Usage:
//
//	go install github.com/example/faultchar/cmd/faultchar-lint@latest
//	faultchar-lint ./...
package lint

import (
	"go/ast"
	"go/constant"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is the faultchar lint analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "faultlint",
	Doc:      "checks for common characterization API mistakes",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.ExprStmt:
			checkDiscardedCall(pass, n)
		case *ast.AssignStmt:
			checkBlankAssignment(pass, n)
		case *ast.CallExpr:
			checkConstructorCall(pass, n)
		}
	})

	return nil, nil
}

// checkDiscardedCall reports refinement calls used as statements.
func checkDiscardedCall(pass *analysis.Pass, stmt *ast.ExprStmt) {
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		return
	}
	switch name := methodName(call); name {
	case "ComputeNextTestInputs":
		pass.Reportf(call.Pos(), "result of %s discarded - requested test inputs are never executed", name)
	case "ComputeFailureInducingCombinations":
		pass.Reportf(call.Pos(), "result of %s discarded", name)
	}
}

// checkBlankAssignment reports `_, err = alg.ComputeNextTestInputs(...)`.
func checkBlankAssignment(pass *analysis.Pass, stmt *ast.AssignStmt) {
	if len(stmt.Rhs) != 1 || len(stmt.Lhs) == 0 {
		return
	}
	call, ok := stmt.Rhs[0].(*ast.CallExpr)
	if !ok || methodName(call) != "ComputeNextTestInputs" {
		return
	}
	if ident, ok := stmt.Lhs[0].(*ast.Ident); ok && ident.Name == "_" {
		pass.Reportf(ident.Pos(), "test inputs requested by ComputeNextTestInputs assigned to blank identifier")
	}
}

// checkConstructorCall checks calls like domain.NewTupleList(0, ...).
func checkConstructorCall(pass *analysis.Pass, call *ast.CallExpr) {
	var name string
	switch fn := call.Fun.(type) {
	case *ast.SelectorExpr:
		pkg, ok := fn.X.(*ast.Ident)
		if !ok || pkg.Name != "domain" {
			return
		}
		name = fn.Sel.Name
	case *ast.Ident:
		// Calls from within the domain package itself
		if !strings.HasSuffix(pass.Pkg.Path(), "domain") {
			return
		}
		name = fn.Name
	default:
		return
	}

	switch name {
	case "NewTupleList":
		checkPositiveID(pass, call)
	case "NewCombination":
		if len(call.Args) == 0 {
			pass.Reportf(call.Pos(), "NewCombination called without values - use EmptyCombination(n) for an empty combination")
		}
	}
}

// checkPositiveID reports a constant first argument that is not positive.
func checkPositiveID(pass *analysis.Pass, call *ast.CallExpr) {
	if len(call.Args) == 0 {
		return
	}
	tv, ok := pass.TypesInfo.Types[call.Args[0]]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.Int {
		return
	}
	if constant.Compare(tv.Value, token.LEQ, constant.MakeInt64(0)) {
		pass.Reportf(call.Args[0].Pos(), "NewTupleList called with non-positive id %s - ids must be positive", tv.Value)
	}
}

// methodName returns the selector name of a method call, or "".
func methodName(call *ast.CallExpr) string {
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
		return sel.Sel.Name
	}
	return ""
}
