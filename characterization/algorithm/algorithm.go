// Package algorithm defines the refinement protocol shared by every fault
// characterization algorithm.
//
// A driver owns one Algorithm per characterization session. It feeds the
// results of executed test inputs to ComputeNextTestInputs, executes whatever
// inputs the algorithm requests, and repeats until the algorithm requests
// nothing. It then reads the conclusions once with
// ComputeFailureInducingCombinations:
//
//	next, err := alg.ComputeNextTestInputs(initialResults)
//	for err == nil && len(next) > 0 {
//	    batch := execute(next)
//	    next, err = alg.ComputeNextTestInputs(batch)
//	}
//	combinations, err := alg.ComputeFailureInducingCombinations()
//
// Algorithms never execute anything themselves and are not safe for
// concurrent use.
package algorithm

import (
	"fmt"
	"sort"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/idd"
	"github.com/example/faultchar/characterization/suspicious"
)

// Algorithm is the iterative contract every characterization algorithm implements.
type Algorithm interface {
	// ComputeNextTestInputs consumes a non-empty batch of results and returns
	// new full combinations the caller must execute and feed back. An empty
	// slice means nothing more is needed and the read-out may follow.
	ComputeNextTestInputs(newResults *domain.ResultSet) ([]domain.Combination, error)

	// ComputeFailureInducingCombinations returns the discovered partial
	// combinations. Repeated calls without new results return equal lists.
	ComputeFailureInducingCombinations() ([]domain.Combination, error)
}

var (
	_ Algorithm = (*idd.ImprovedDeltaDebugging)(nil)
	_ Algorithm = (*suspicious.Algorithm)(nil)
)

// Options tunes the algorithms created by New.
type Options struct {
	// BENProbesPerRound is passed to BEN. Zero selects the BEN default.
	BENProbesPerRound int
}

// Names returns the names accepted by New in sorted order.
func Names() []string {
	names := []string{"aifl", "ben", "idd"}
	sort.Strings(names)
	return names
}

// New creates the algorithm with the given name.
func New(name string, config domain.Configuration, opts Options) (Algorithm, error) {
	var (
		alg Algorithm
		err error
	)
	switch name {
	case "idd":
		alg, err = idd.New(config)
	case "aifl":
		alg, err = suspicious.NewAIFL(config)
	case "ben":
		alg, err = suspicious.NewBEN(config, opts.BENProbesPerRound)
	default:
		return nil, fmt.Errorf("%w: %q (known: %v)", domain.ErrUnknownAlgorithm, name, Names())
	}
	if err != nil {
		return nil, err
	}
	return alg, nil
}

