// Package modelfile loads test models written in YAML, where parameters and
// values are referred to by name.
//
//	strength: 2
//	parameters:
//	  - name: os
//	    values: [linux, windows, darwin]
//	  - name: db
//	    values: [sqlite, postgres]
//	forbidden:
//	  - id: 1
//	    parameters: [os, db]
//	    tuples:
//	      - [darwin, postgres]
//	initial:
//	  - {os: linux, db: sqlite}
package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/faultchar/characterization/domain"
)

// File is the YAML document.
type File struct {
	Strength   int                 `yaml:"strength"`
	Parameters []Parameter         `yaml:"parameters"`
	Forbidden  []TupleList         `yaml:"forbidden,omitempty"`
	Errors     []TupleList         `yaml:"errors,omitempty"`
	Initial    []map[string]string `yaml:"initial,omitempty"`
}

// Parameter is a named parameter with named values.
type Parameter struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// TupleList is a tuple catalog over named parameters. An id of 0 is
// assigned automatically.
type TupleList struct {
	ID              int        `yaml:"id,omitempty"`
	Parameters      []string   `yaml:"parameters"`
	Tuples          [][]string `yaml:"tuples"`
	MarkedAsCorrect bool       `yaml:"marked_as_correct,omitempty"`
}

// Model is a loaded model together with the names used to write it.
type Model struct {
	Model          *domain.TestModel
	ParameterNames []string
	ValueNames     [][]string

	// Initial is the optional initial test suite.
	Initial []domain.Combination

	paramIndex map[string]int
	valueIndex []map[string]int
}

// Load reads and parses a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses a model document. Unknown fields are rejected.
func Parse(data []byte) (*Model, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty model file", domain.ErrInvalidModel)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModel, err)
	}
	return f.Build()
}

// Build resolves names and constructs the domain model.
func (f *File) Build() (*Model, error) {
	if len(f.Parameters) == 0 {
		return nil, fmt.Errorf("%w: no parameters", domain.ErrInvalidModel)
	}

	m := &Model{
		ParameterNames: make([]string, len(f.Parameters)),
		ValueNames:     make([][]string, len(f.Parameters)),
		paramIndex:     make(map[string]int, len(f.Parameters)),
		valueIndex:     make([]map[string]int, len(f.Parameters)),
	}
	sizes := make([]int, len(f.Parameters))
	for i, p := range f.Parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: parameter %d has no name", domain.ErrInvalidModel, i)
		}
		if _, dup := m.paramIndex[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", domain.ErrInvalidModel, p.Name)
		}
		m.paramIndex[p.Name] = i
		m.ParameterNames[i] = p.Name
		m.ValueNames[i] = append([]string(nil), p.Values...)
		m.valueIndex[i] = make(map[string]int, len(p.Values))
		for j, v := range p.Values {
			if _, dup := m.valueIndex[i][v]; dup {
				return nil, fmt.Errorf("%w: parameter %q has duplicate value %q",
					domain.ErrInvalidModel, p.Name, v)
			}
			m.valueIndex[i][v] = j
		}
		sizes[i] = len(p.Values)
	}

	ids := newIDAllocator(f.Forbidden, f.Errors)
	forbidden, err := m.tupleLists("forbidden", f.Forbidden, ids)
	if err != nil {
		return nil, err
	}
	errorLists, err := m.tupleLists("errors", f.Errors, ids)
	if err != nil {
		return nil, err
	}

	model, err := domain.NewTestModel(f.Strength, sizes, forbidden, errorLists)
	if err != nil {
		return nil, err
	}
	m.Model = model

	for i, row := range f.Initial {
		c, err := m.Combination(row)
		if err != nil {
			return nil, fmt.Errorf("initial test input %d: %w", i, err)
		}
		m.Initial = append(m.Initial, c)
	}
	return m, nil
}

func (m *Model) tupleLists(kind string, lists []TupleList, ids *idAllocator) ([]*domain.TupleList, error) {
	out := make([]*domain.TupleList, 0, len(lists))
	for i, l := range lists {
		params := make([]int, len(l.Parameters))
		for j, name := range l.Parameters {
			p, ok := m.paramIndex[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d]: unknown parameter %q", domain.ErrInvalidModel, kind, i, name)
			}
			params[j] = p
		}
		tuples := make([][]int, len(l.Tuples))
		for t, tuple := range l.Tuples {
			if len(tuple) != len(params) {
				return nil, fmt.Errorf("%w: %s[%d]: tuple %d has %d values, want %d",
					domain.ErrInvalidModel, kind, i, t, len(tuple), len(params))
			}
			tuples[t] = make([]int, len(tuple))
			for j, value := range tuple {
				v, ok := m.valueIndex[params[j]][value]
				if !ok {
					return nil, fmt.Errorf("%w: %s[%d]: parameter %q has no value %q",
						domain.ErrInvalidModel, kind, i, l.Parameters[j], value)
				}
				tuples[t][j] = v
			}
		}
		list, err := domain.NewTupleList(ids.next(l.ID), params, tuples, l.MarkedAsCorrect)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		out = append(out, list)
	}
	return out, nil
}

// Combination resolves a name-keyed assignment. Parameters left out are
// unassigned.
func (m *Model) Combination(assignment map[string]string) (domain.Combination, error) {
	values := make([]int, len(m.ParameterNames))
	for i := range values {
		values[i] = domain.NoValue
	}
	for name, value := range assignment {
		p, ok := m.paramIndex[name]
		if !ok {
			return domain.Combination{}, fmt.Errorf("%w: unknown parameter %q", domain.ErrInvalidArgument, name)
		}
		v, ok := m.valueIndex[p][value]
		if !ok {
			return domain.Combination{}, fmt.Errorf("%w: parameter %q has no value %q",
				domain.ErrInvalidArgument, name, value)
		}
		values[p] = v
	}
	return domain.NewCombination(values...), nil
}

// Format renders a combination by name, e.g. "os=windows db=postgres".
// Unassigned positions are omitted; an empty combination renders as "*".
func (m *Model) Format(c domain.Combination) string {
	var parts []string
	for i := 0; i < c.Len() && i < len(m.ParameterNames); i++ {
		v := c.At(i)
		if v == domain.NoValue {
			continue
		}
		value := fmt.Sprint(v)
		if v < len(m.ValueNames[i]) {
			value = m.ValueNames[i][v]
		}
		parts = append(parts, m.ParameterNames[i]+"="+value)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// idAllocator hands out ids for tuple lists written without one, skipping
// every id used explicitly in the file.
type idAllocator struct {
	used map[int]bool
	last int
}

func newIDAllocator(groups ...[]TupleList) *idAllocator {
	a := &idAllocator{used: make(map[int]bool)}
	for _, lists := range groups {
		for _, l := range lists {
			if l.ID != 0 {
				a.used[l.ID] = true
			}
		}
	}
	return a
}

func (a *idAllocator) next(explicit int) int {
	if explicit != 0 {
		return explicit
	}
	for {
		a.last++
		if !a.used[a.last] {
			a.used[a.last] = true
			return a.last
		}
	}
}
