// Package model is a minimal host model: an ordered set of named
// parameters with value, range and default buffers.
package model

import (
	"fmt"
	"math"

	"github.com/san-kum/sway/internal/dynamo"
)

// Unbounded is the range given to parameters created on first lookup.
const Unbounded = math.MaxFloat32

type Model struct {
	ids     []string
	index   map[string]int
	values  []float64
	minimum []float64
	maximum []float64
	deflt   []float64
	saved   []float64
}

func New() *Model {
	return &Model{index: make(map[string]int)}
}

// AddParameter declares a parameter, or redefines the range of an existing
// one. The value starts at def.
func (m *Model) AddParameter(id string, min, max, def float64) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: empty id", dynamo.ErrUnknownParameter)
	}
	if min > max {
		return 0, fmt.Errorf("parameter %s: minimum %g above maximum %g", id, min, max)
	}
	if i, ok := m.index[id]; ok {
		m.minimum[i], m.maximum[i], m.deflt[i], m.values[i] = min, max, def, def
		return i, nil
	}
	return m.add(id, min, max, def), nil
}

func (m *Model) add(id string, min, max, def float64) int {
	i := len(m.ids)
	m.ids = append(m.ids, id)
	m.index[id] = i
	m.values = append(m.values, def)
	m.minimum = append(m.minimum, min)
	m.maximum = append(m.maximum, max)
	m.deflt = append(m.deflt, def)
	return i
}

func (m *Model) ParameterCount() int { return len(m.ids) }

// ParameterIndex returns the index of id. Unknown ids are appended as
// unbounded parameters at 0 so the returned index stays valid.
func (m *Model) ParameterIndex(id string) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	return m.add(id, -Unbounded, Unbounded, 0)
}

// Lookup is ParameterIndex without creating anything.
func (m *Model) Lookup(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

func (m *Model) IDs() []string {
	return append([]string(nil), m.ids...)
}

func (m *Model) Parameters() dynamo.Parameters {
	return dynamo.Parameters{
		Values:  m.values,
		Minimum: m.minimum,
		Maximum: m.maximum,
		Default: m.deflt,
	}
}

func (m *Model) ParameterValue(i int) float64 { return m.values[i] }

func (m *Model) ParameterValueByID(id string) float64 {
	return m.values[m.ParameterIndex(id)]
}

func (m *Model) SetParameterValueByID(id string, value float64) {
	m.values[m.ParameterIndex(id)] = value
}

// AddParameterValueByID adds value*weight to the parameter's current value.
func (m *Model) AddParameterValueByID(id string, value, weight float64) {
	i := m.ParameterIndex(id)
	m.values[i] += value * weight
}

// Reset puts every parameter back to its default.
func (m *Model) Reset() {
	copy(m.values, m.deflt)
}

// SaveParameters snapshots the current values.
func (m *Model) SaveParameters() {
	m.saved = append(m.saved[:0], m.values...)
}

// LoadParameters restores the last snapshot. Parameters added since then
// keep their values.
func (m *Model) LoadParameters() {
	copy(m.values, m.saved)
}
