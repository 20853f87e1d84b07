package idd

import "github.com/example/faultchar/characterization/domain"

// phase is the tagged state of the isolator. Each variant carries only the
// data that is meaningful while the machine is in it.
type phase interface {
	String() string
}

// initialization selects the next unexplained failed input.
type initialization struct{}

func (initialization) String() string { return "INITIALIZATION" }

// isolation awaits the result of a bisection probe that altered first.
type isolation struct {
	run *isolationRun

	// first is the half rotated away by the outstanding probe.
	first []int
	// second is the half held at the failed input's values.
	second []int
}

func (*isolation) String() string { return "ISOLATION" }

// check awaits the result of a probe that altered every position outside
// run.related.
type check struct {
	run *isolationRun
}

func (*check) String() string { return "CHECK" }

// finished means every failed input is explained by a discovered combination.
type finished struct{}

func (finished) String() string { return "FINISHED" }

// isolationRun is the working data of one failed input's isolation.
// All position lists are sorted ascending.
type isolationRun struct {
	failed     domain.Combination
	related    []int
	suspicious []int
	unrelated  []int
}
