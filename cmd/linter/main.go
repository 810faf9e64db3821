// Command linter runs the project's custom static checks.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/MikhailRaia/slug-shortener/cmd/linter/analyzer"
)

func main() {
	multichecker.Main(
		analyzer.ForbiddenCalls,
		analyzer.ErrMatch,
	)
}
