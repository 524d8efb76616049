package config_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tmptoml/pkg/config"
)

func TestStringify(t *testing.T) {
	cases := []struct {
		name  string
		value config.Value
		want  string
	}{
		{name: "string is unquoted", value: config.NewScalar("bar"), want: "bar"},
		{name: "empty string", value: config.NewScalar(""), want: ""},
		{name: "nil scalar", value: config.NewScalar(nil), want: ""},
		{name: "nil value", value: nil, want: ""},
		{name: "integer", value: config.NewScalar(int64(1)), want: "1"},
		{name: "negative integer", value: config.NewScalar(int64(-42)), want: "-42"},
		{name: "float", value: config.NewScalar(2.5), want: "2.5"},
		{name: "boolean", value: config.NewScalar(true), want: "true"},
		{
			name:  "integer array",
			value: config.ValueOf([]any{int64(1), int64(2), int64(3)}),
			want:  "[1, 2, 3]",
		},
		{
			name:  "string array keeps quotes",
			value: config.ValueOf([]any{"a", "b"}),
			want:  "['a', 'b']",
		},
		{
			name:  "empty array",
			value: config.NewArray(),
			want:  "[]",
		},
		{
			name:  "table is inline",
			value: config.ValueOf(map[string]any{"x": int64(1)}),
			want:  "{x = 1}",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := config.Stringify(tc.value); got != tc.want {
				t.Fatalf("stringify mismatch\nwant: %q\n got: %q", tc.want, got)
			}
		})
	}
}

func TestValueOf(t *testing.T) {
	value := config.ValueOf(map[string]any{
		"name":  "web",
		"ports": []any{int64(80), int64(443)},
		"prod":  map[string]any{"replicas": int64(3)},
		"yaml":  map[any]any{1: "one"},
		"tables": []map[string]any{
			{"id": int64(1)},
		},
	})

	table, ok := value.(config.Table)
	if !ok {
		t.Fatalf("expected table, got %T", value)
	}

	kinds := map[string]config.Kind{}
	for key, member := range table.Group {
		kinds[key] = member.Kind()
	}
	want := map[string]config.Kind{
		"name":   config.KindScalar,
		"ports":  config.KindArray,
		"prod":   config.KindTable,
		"yaml":   config.KindTable,
		"tables": config.KindArray,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	yamlTable := table.Group["yaml"].(config.Table)
	if got := config.Stringify(yamlTable.Group["1"]); got != "one" {
		t.Fatalf("expected non-string keys to be stringified, got %q", got)
	}

	if diff := cmp.Diff([]string{"prod", "yaml"}, table.Group.TableKeys()); diff != "" {
		t.Fatalf("table keys mismatch (-want +got):\n%s", diff)
	}
}

func TestValueOfPassesValuesThrough(t *testing.T) {
	scalar := config.NewScalar("x")
	if got := config.ValueOf(scalar); got != config.Value(scalar) {
		t.Fatalf("expected Value to pass through unchanged, got %#v", got)
	}
}

func TestGroupInterfaceRoundTrip(t *testing.T) {
	raw := map[string]any{
		"a": "b",
		"n": int64(1),
		"t": map[string]any{"x": []any{"y"}},
	}
	if diff := cmp.Diff(raw, config.GroupOf(raw).Interface()); diff != "" {
		t.Fatalf("interface mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupDebugString(t *testing.T) {
	group := config.GroupOf(map[string]any{
		"a": "x",
		"b": int64(1),
		"c": []any{},
		"d": map[string]any{},
	})
	if got, want := group.DebugString(), "array=1,scalar=2,table=1"; got != want {
		t.Fatalf("debug string mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[config.Kind]string{
		config.KindScalar: "scalar",
		config.KindTable:  "table",
		config.KindArray:  "array",
		config.Kind(0):    "unknown",
	} {
		if got := kind.String(); got != want {
			t.Fatalf("kind %d: want %q, got %q", int(kind), want, got)
		}
	}
}
