// Command faultchar-lint runs static analysis on characterization API usage.
//
// Usage:
//
//	faultchar-lint ./...
//
// This tool detects common mistakes when using the characterization packages:
//   - Discarded results of ComputeNextTestInputs and ComputeFailureInducingCombinations
//   - Non-positive literal ids passed to NewTupleList
//   - NewCombination called without values
//
// For details, see the pkg/lint documentation.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/example/faultchar/pkg/lint"
)

func main() {
	singlechecker.Main(lint.Analyzer)
}
