package domain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoValue marks an unassigned position in a partial combination.
const NoValue = -1

// MaxValue is the largest value index a combination can hold. No parameter
// domain may be larger than MaxValue, so a stored MaxValue is never valid.
const MaxValue = math.MaxInt32 - 1

// bytesPerValue is the width of one encoded position.
const bytesPerValue = 4

// Combination is an immutable assignment of one value index per parameter.
//
// Positions holding NoValue are unassigned; a combination without such positions
// is full. Combination is comparable, so two combinations with the same values
// are == and can be used directly as map keys.
type Combination struct {
	// data holds uint32(value+1) big-endian per position.
	data string
}

// NewCombination creates a combination from the given value indices.
// Any negative value is treated as NoValue; values above MaxValue are stored
// as MaxValue.
func NewCombination(values ...int) Combination {
	buf := make([]byte, len(values)*bytesPerValue)
	for i, v := range values {
		putValue(buf, i, v)
	}
	return Combination{data: string(buf)}
}

// EmptyCombination returns a combination of n positions, all unassigned.
func EmptyCombination(n int) Combination {
	if n <= 0 {
		return Combination{}
	}
	// uint32(NoValue+1) == 0, so the zero buffer is all-unassigned.
	return Combination{data: string(make([]byte, n*bytesPerValue))}
}

func putValue(buf []byte, i, v int) {
	switch {
	case v < 0:
		v = NoValue
	case v > MaxValue:
		v = MaxValue
	}
	binary.BigEndian.PutUint32(buf[i*bytesPerValue:], uint32(v+1))
}

// Len returns the number of positions (parameters).
func (c Combination) Len() int {
	return len(c.data) / bytesPerValue
}

// At returns the value index at position i, or NoValue if unassigned.
func (c Combination) At(i int) int {
	off := i * bytesPerValue
	raw := uint32(c.data[off])<<24 | uint32(c.data[off+1])<<16 | uint32(c.data[off+2])<<8 | uint32(c.data[off+3])
	return int(raw) - 1
}

// IsSet returns true if position i holds a value.
func (c Combination) IsSet(i int) bool {
	return c.At(i) != NoValue
}

// Values returns a fresh copy of the value indices.
func (c Combination) Values() []int {
	values := make([]int, c.Len())
	for i := range values {
		values[i] = c.At(i)
	}
	return values
}

// With returns a copy of c with position i set to v.
func (c Combination) With(i, v int) Combination {
	buf := []byte(c.data)
	putValue(buf, i, v)
	return Combination{data: string(buf)}
}

// AssignedCount returns the number of assigned positions.
func (c Combination) AssignedCount() int {
	count := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsSet(i) {
			count++
		}
	}
	return count
}

// AssignedPositions returns the assigned positions in ascending order.
func (c Combination) AssignedPositions() []int {
	positions := make([]int, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsSet(i) {
			positions = append(positions, i)
		}
	}
	return positions
}

// IsFull returns true if every position is assigned.
func (c Combination) IsFull() bool {
	return c.AssignedCount() == c.Len()
}

// IsEmpty returns true if no position is assigned.
func (c Combination) IsEmpty() bool {
	return c.AssignedCount() == 0
}

// Contains returns true if sub is a sub-combination of c: both have the same
// length and c agrees with sub on every position sub assigns.
func (c Combination) Contains(sub Combination) bool {
	if c.Len() != sub.Len() {
		return false
	}
	for i := 0; i < sub.Len(); i++ {
		if v := sub.At(i); v != NoValue && c.At(i) != v {
			return false
		}
	}
	return true
}

// Project returns a partial combination keeping only the given positions.
func (c Combination) Project(positions []int) Combination {
	buf := make([]byte, len(c.data))
	for _, p := range positions {
		if p >= 0 && p < c.Len() {
			putValue(buf, p, c.At(p))
		}
	}
	return Combination{data: string(buf)}
}

// String renders the combination as "[1, -, 0]".
func (c Combination) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < c.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if v := c.At(i); v == NoValue {
			b.WriteByte('-')
		} else {
			b.WriteString(strconv.Itoa(v))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// MarshalJSON encodes the combination as an array, with null for NoValue.
func (c Combination) MarshalJSON() ([]byte, error) {
	values := make([]*int, c.Len())
	for i := range values {
		if v := c.At(i); v != NoValue {
			values[i] = &v
		}
	}
	return json.Marshal(values)
}

// UnmarshalJSON decodes an array produced by MarshalJSON.
func (c *Combination) UnmarshalJSON(data []byte) error {
	var values []*int
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	ints := make([]int, len(values))
	for i, v := range values {
		switch {
		case v == nil:
			ints[i] = NoValue
		case *v < 0:
			return fmt.Errorf("%w: negative value %d at position %d", ErrInvalidArgument, *v, i)
		case *v > MaxValue:
			return fmt.Errorf("%w: value %d at position %d exceeds %d", ErrInvalidArgument, *v, i, MaxValue)
		default:
			ints[i] = *v
		}
	}
	*c = NewCombination(ints...)
	return nil
}
