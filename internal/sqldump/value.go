// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package sqldump

import (
	"strconv"
)

// ValueType tags which field of a Value is live.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeString
	TypeInteger
	TypeFloat
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is one field of an SQL tuple. The zero Value is NULL.
type Value struct {
	typ ValueType
	str string
	i   int64
	f   float64
}

// Row is one tuple of an INSERT statement, in column order.
type Row []Value

func StringValue(s string) Value { return Value{typ: TypeString, str: s} }
func IntegerValue(i int64) Value { return Value{typ: TypeInteger, i: i} }
func FloatValue(f float64) Value { return Value{typ: TypeFloat, f: f} }
func NullValue() Value           { return Value{} }
func (v Value) Type() ValueType  { return v.typ }
func (v Value) IsNull() bool     { return v.typ == TypeNull }
func (v Value) IsString() bool   { return v.typ == TypeString }
func (v Value) IsInteger() bool  { return v.typ == TypeInteger }
func (v Value) IsFloat() bool    { return v.typ == TypeFloat }

// Str returns the string payload; ok is false for any other type.
func (v Value) Str() (s string, ok bool) {
	return v.str, v.typ == TypeString
}

// Int returns the integer payload; ok is false for any other type.
func (v Value) Int() (i int64, ok bool) {
	return v.i, v.typ == TypeInteger
}

// Float returns the float payload; ok is false for any other type.
func (v Value) Float() (f float64, ok bool) {
	return v.f, v.typ == TypeFloat
}

// Any returns the payload as string, int64, float64 or nil.
func (v Value) Any() any {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeInteger:
		return v.i
	case TypeFloat:
		return v.f
	default:
		return nil
	}
}

// String renders the value for tabular output. Strings are unquoted, NULL is
// the bare word NULL and floats use the shortest exact form.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "NULL"
	}
}

// Strings renders every field with Value.String.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}
