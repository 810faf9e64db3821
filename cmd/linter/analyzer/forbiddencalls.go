package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// terminating lists package functions that stop the process. They are only
// allowed inside func main, where shutdown is owned.
var terminating = map[string]map[string]string{
	"log": {
		"Fatal":  "log.Fatal",
		"Fatalf": "log.Fatalf",
	},
	"os": {
		"Exit": "os.Exit",
	},
	"github.com/rs/zerolog/log": {
		"Fatal": "zerolog log.Fatal",
		"Panic": "zerolog log.Panic",
	},
}

// ForbiddenCalls reports panic anywhere and process-terminating calls
// outside func main.
var ForbiddenCalls = &analysis.Analyzer{
	Name:     "forbiddencalls",
	Doc:      "reports usage of panic, log.Fatal, and os.Exit outside main function",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runForbiddenCalls,
}

func runForbiddenCalls(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := node.(*ast.CallExpr)

		switch fn := call.Fun.(type) {
		case *ast.Ident:
			if fn.Name == "panic" && pass.TypesInfo.Uses[fn] == types.Universe.Lookup("panic") {
				pass.Reportf(call.Pos(), "panic is forbidden")
			}
		case *ast.SelectorExpr:
			name, ok := terminatingName(pass, fn)
			if ok && !insideMain(stack) {
				pass.Reportf(call.Pos(), "%s is forbidden outside main function", name)
			}
		}
		return true
	})

	return nil, nil
}

func terminatingName(pass *analysis.Pass, sel *ast.SelectorExpr) (string, bool) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", false
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return "", false
	}

	name, ok := terminating[pkgName.Imported().Path()][sel.Sel.Name]
	return name, ok
}

// insideMain reports whether the innermost enclosing function declaration is
// the package-level func main. Closures inside main count as main.
func insideMain(stack []ast.Node) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if decl, ok := stack[i].(*ast.FuncDecl); ok {
			return decl.Recv == nil && decl.Name.Name == "main"
		}
	}
	return false
}
