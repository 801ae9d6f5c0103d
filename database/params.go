package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ParamMarker prefixes every bound parameter name.
	ParamMarker = "@"

	// FileContentParam is the parameter name always bound as binary.
	FileContentParam = "FileContent"

	// MessageOutput and ResultOutput are the output slots every stored
	// procedure call reserves for the normalized response.
	MessageOutput = "@msg"
	ResultOutput  = "@result"

	// MessageOutputSize caps the message output in characters.
	MessageOutputSize = 1000
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindBinary
	KindBool
	KindDate
	KindDecimal
	KindTable
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindDecimal:
		return "decimal"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is a parameter value tagged with its kind. The zero Value is null.
type Value struct {
	kind     Kind
	i        int64
	s        string
	b        []byte
	flag     bool
	t        time.Time
	d        decimal.Decimal
	rows     any
	typeName string
}

// Null returns a null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Binary returns a binary value.
func Binary(v []byte) Value { return Value{kind: KindBinary, b: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, flag: v} }

// Date returns a date/time value.
func Date(v time.Time) Value { return Value{kind: KindDate, t: v} }

// Decimal returns an exact decimal value.
func Decimal(v decimal.Decimal) Value { return Value{kind: KindDecimal, d: v} }

// Table returns a table-valued parameter. rows must be a slice of structs,
// one struct per row, whose fields match the columns of the database type
// named by typeName.
func Table(typeName string, rows any) Value {
	return Value{kind: KindTable, rows: rows, typeName: typeName}
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bytes returns the binary payload, nil for other kinds.
func (v Value) Bytes() []byte {
	if v.kind != KindBinary {
		return nil
	}
	return v.b
}

// Rows returns the rows of a table value.
func (v Value) Rows() any { return v.rows }

// TypeName returns the database type name of a table value.
func (v Value) TypeName() string { return v.typeName }

// Interface returns the underlying Go value: nil, int64, string, []byte,
// bool, time.Time, decimal.Decimal, or the table rows.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindBinary:
		return v.b
	case KindBool:
		return v.flag
	case KindDate:
		return v.t
	case KindDecimal:
		return v.d
	case KindTable:
		return v.rows
	default:
		return nil
	}
}

// Param is a named stored procedure or query parameter.
type Param struct {
	Name  string
	Value Value
}

// P is shorthand for Param{Name: name, Value: v}.
func P(name string, v Value) Param {
	return Param{Name: name, Value: v}
}

// Direction tells whether a bound parameter is sent or read back.
type Direction int

const (
	Input Direction = iota
	Output
)

// BoundParam is a parameter after marshaling.
type BoundParam struct {
	// Name carries the parameter marker exactly once.
	Name      string
	Value     Value
	Direction Direction
	// Size is the maximum length of an output value, zero when unbounded.
	Size int
}

// BareName returns the name without the parameter marker.
func (p BoundParam) BareName() string {
	return strings.TrimPrefix(p.Name, ParamMarker)
}

// Bag is an ordered set of bound parameters plus the output values read
// back after execution.
type Bag struct {
	params  []BoundParam
	outputs map[string]any
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{outputs: make(map[string]any)}
}

// Params returns the bound parameters in insertion order.
func (b *Bag) Params() []BoundParam {
	if b == nil {
		return nil
	}
	out := make([]BoundParam, len(b.params))
	copy(out, b.params)
	return out
}

// Len returns the number of bound parameters.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.params)
}

// Lookup finds a bound parameter by name, with or without the marker.
func (b *Bag) Lookup(name string) (BoundParam, bool) {
	if b == nil {
		return BoundParam{}, false
	}
	name = ParamMarker + strings.TrimPrefix(name, ParamMarker)
	for _, p := range b.params {
		if p.Name == name {
			return p, true
		}
	}
	return BoundParam{}, false
}

// AddOutput reserves an output slot of the given kind.
func (b *Bag) AddOutput(name string, kind Kind, size int) error {
	normalized, err := NormalizeName(name)
	if err != nil {
		return err
	}
	b.params = append(b.params, BoundParam{
		Name:      normalized,
		Value:     Value{kind: kind},
		Direction: Output,
		Size:      size,
	})
	return nil
}

// SetOutput stores the value read back for an output slot.
func (b *Bag) SetOutput(name string, v any) {
	if b.outputs == nil {
		b.outputs = make(map[string]any)
	}
	b.outputs[ParamMarker+strings.TrimPrefix(name, ParamMarker)] = v
}

// OutputInt returns an integer output value. ok is false when the slot is
// absent or null.
func (b *Bag) OutputInt(name string) (int64, bool) {
	if b == nil {
		return 0, false
	}
	switch v := b.outputs[ParamMarker+strings.TrimPrefix(name, ParamMarker)].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// OutputString returns a string output value. ok is false when the slot is
// absent or null.
func (b *Bag) OutputString(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	switch v := b.outputs[ParamMarker+strings.TrimPrefix(name, ParamMarker)].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// NormalizeName prefixes name with the parameter marker unless it already
// carries it.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.TrimPrefix(name, ParamMarker) == "" {
		return "", fmt.Errorf("%w: parameter name is required", ErrInvalidParameter)
	}
	if strings.HasPrefix(name, ParamMarker) {
		return name, nil
	}
	return ParamMarker + name, nil
}

// BuildInputBag marshals params without reserving the response outputs.
//
// Rules, per parameter in order: the name is normalized; FileContent
// (case-insensitive) is always bound as binary, empty when the value is
// null or not binary; a table value requires a type name; anything else
// is passed through with its kind.
func BuildInputBag(params []Param) (*Bag, error) {
	bag := NewBag()
	for _, p := range params {
		name, err := NormalizeName(p.Name)
		if err != nil {
			return nil, err
		}

		switch {
		case strings.EqualFold(strings.TrimPrefix(name, ParamMarker), FileContentParam):
			content := p.Value.Bytes()
			if content == nil {
				content = []byte{}
			}
			bag.params = append(bag.params, BoundParam{Name: name, Value: Binary(content)})
		case p.Value.Kind() == KindTable:
			if strings.TrimSpace(p.Value.TypeName()) == "" {
				return nil, fmt.Errorf("%w: TVP type name is required for table parameter %s", ErrInvalidParameter, name)
			}
			if p.Value.Rows() == nil {
				return nil, fmt.Errorf("%w: table parameter %s has no rows value", ErrInvalidParameter, name)
			}
			bag.params = append(bag.params, BoundParam{Name: name, Value: p.Value})
		default:
			bag.params = append(bag.params, BoundParam{Name: name, Value: p.Value})
		}
	}
	return bag, nil
}

// BuildParameterBag marshals params and appends the @msg and @result
// output slots used by every stored procedure call.
func BuildParameterBag(params []Param) (*Bag, error) {
	bag, err := BuildInputBag(params)
	if err != nil {
		return nil, err
	}
	if err := bag.AddOutput(MessageOutput, KindString, MessageOutputSize); err != nil {
		return nil, err
	}
	if err := bag.AddOutput(ResultOutput, KindInt, 0); err != nil {
		return nil, err
	}
	return bag, nil
}
