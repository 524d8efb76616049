package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Kind discriminates the Value variants.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindTable
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindTable:
		return "table"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a closed sum over Scalar, Table and Array. The unexported marker
// method keeps other packages from adding variants, so a switch on Kind is
// exhaustive.
type Value interface {
	Kind() Kind
	// Interface returns the plain Go representation (string, int64, float64,
	// bool, time values, map[string]any or []any).
	Interface() any
	sealed()
}

// KindOf reports the kind of v. A nil Value counts as an empty scalar, which
// is how decoders that emit null members are treated.
func KindOf(v Value) Kind {
	if v == nil {
		return KindScalar
	}
	return v.Kind()
}

func interfaceOf(v Value) any {
	if v == nil {
		return nil
	}
	return v.Interface()
}

// Scalar holds a primitive: string, integer, float, boolean, date/time or nil.
type Scalar struct {
	raw any
}

// NewScalar wraps a primitive value.
func NewScalar(raw any) Scalar {
	return Scalar{raw: raw}
}

func (Scalar) Kind() Kind       { return KindScalar }
func (s Scalar) Interface() any { return s.raw }
func (Scalar) sealed()          {}

// Table is a nested group.
type Table struct {
	Group Group
}

// NewTable wraps a nested group.
func NewTable(group Group) Table {
	if group == nil {
		group = Group{}
	}
	return Table{Group: group}
}

func (Table) Kind() Kind       { return KindTable }
func (t Table) Interface() any { return t.Group.Interface() }
func (Table) sealed()          {}

// Array is an ordered list of values.
type Array struct {
	Items []Value
}

// NewArray wraps a list of values.
func NewArray(items ...Value) Array {
	return Array{Items: items}
}

func (Array) Kind() Kind { return KindArray }

func (a Array) Interface() any {
	out := make([]any, 0, len(a.Items))
	for _, item := range a.Items {
		out = append(out, interfaceOf(item))
	}
	return out
}

func (Array) sealed() {}

// ValueOf converts a decoded document value into a Value. Maps become
// tables, slices become arrays and everything else is a scalar.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case Value:
		return v
	case map[string]any:
		return NewTable(GroupOf(v))
	case map[any]any:
		group := make(Group, len(v))
		for key, item := range v {
			group[fmt.Sprint(key)] = ValueOf(item)
		}
		return NewTable(group)
	case []map[string]any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, ValueOf(item))
		}
		return NewArray(items...)
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, ValueOf(item))
		}
		return NewArray(items...)
	default:
		return NewScalar(v)
	}
}

// GroupOf converts a decoded map into a Group.
func GroupOf(raw map[string]any) Group {
	group := make(Group, len(raw))
	for key, item := range raw {
		group[key] = ValueOf(item)
	}
	return group
}

const inlineKey = "v"

// Stringify renders a value the way templates consume it. String scalars
// render their content unquoted and nil renders empty; every other value uses
// the TOML inline text produced by go-toml, e.g. 1, 2.5, true,
// 1979-05-27T07:32:00Z, [1, 2] or {x = 1}.
func Stringify(v Value) string {
	if v == nil {
		return ""
	}
	if v.Kind() == KindScalar {
		switch raw := v.Interface().(type) {
		case nil:
			return ""
		case string:
			return raw
		}
	}
	return encodeInline(v.Interface())
}

func encodeInline(raw any) string {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetTablesInline(true)
	if err := enc.Encode(map[string]any{inlineKey: raw}); err != nil {
		return fmt.Sprint(raw)
	}

	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "{") && strings.HasSuffix(out, "}") {
		out = strings.TrimSpace(out[1 : len(out)-1])
	}
	out = strings.TrimPrefix(out, inlineKey)
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "=")
	return strings.TrimSpace(out)
}

// DebugString summarises a group for log records without dumping values.
func (g Group) DebugString() string {
	counts := map[Kind]int{}
	for _, value := range g {
		counts[KindOf(value)]++
	}
	kinds := make([]string, 0, len(counts))
	for kind, n := range counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ",")
}
