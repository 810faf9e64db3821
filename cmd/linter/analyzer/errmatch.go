package analyzer

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// ErrMatch reports code that classifies errors by their message text
// instead of errors.Is or errors.As.
var ErrMatch = &analysis.Analyzer{
	Name:     "errmatch",
	Doc:      "reports matching on err.Error() text; use errors.Is or errors.As",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runErrMatch,
}

var stringMatchers = map[string]bool{
	"Contains":    true,
	"HasPrefix":   true,
	"HasSuffix":   true,
	"EqualFold":   true,
	"Index":       true,
	"ContainsAny": true,
}

var errorType = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

func runErrMatch(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
		(*ast.BinaryExpr)(nil),
		(*ast.SwitchStmt)(nil),
	}

	insp.Preorder(nodeFilter, func(node ast.Node) {
		switch n := node.(type) {
		case *ast.CallExpr:
			if isStringsMatcher(pass, n) {
				for _, arg := range n.Args {
					if isErrorText(pass, arg) {
						pass.Reportf(n.Pos(), "error matched by message text; use errors.Is or errors.As")
						return
					}
				}
			}
		case *ast.BinaryExpr:
			if n.Op != token.EQL && n.Op != token.NEQ {
				return
			}
			if isErrorText(pass, n.X) || isErrorText(pass, n.Y) {
				pass.Reportf(n.Pos(), "error compared by message text; use errors.Is or errors.As")
			}
		case *ast.SwitchStmt:
			if n.Tag != nil && isErrorText(pass, n.Tag) {
				pass.Reportf(n.Pos(), "switch on error message text; use errors.Is or errors.As")
			}
		}
	})

	return nil, nil
}

func isStringsMatcher(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !stringMatchers[sel.Sel.Name] {
		return false
	}

	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	return ok && pkgName.Imported().Path() == "strings"
}

// isErrorText reports whether expr is a call of Error() on a value of error type.
func isErrorText(pass *analysis.Pass, expr ast.Expr) bool {
	call, ok := ast.Unparen(expr).(*ast.CallExpr)
	if !ok || len(call.Args) != 0 {
		return false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Error" {
		return false
	}

	t := pass.TypesInfo.TypeOf(sel.X)
	return t != nil && types.Implements(t, errorType)
}
