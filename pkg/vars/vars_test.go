package vars_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/testsupport"
	"github.com/goliatone/go-tmptoml/pkg/vars"
)

func sampleTree() config.Tree {
	return config.Tree{
		"a": config.GroupOf(map[string]any{
			"foo":   "bar",
			"count": int64(2),
			"list":  []any{int64(1), int64(2)},
			"b":     map[string]any{"baz": "qux", "n": int64(5)},
			"other": map[string]any{"leak": "nope"},
			"note":  "text",
		}),
		"empty": config.Group{},
	}
}

func TestResolve(t *testing.T) {
	tree := sampleTree()

	primary, secondary, err := vars.Resolve(tree, "a", "b")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(primary) != 6 {
		t.Fatalf("expected primary with 6 members, got %d", len(primary))
	}
	if secondary.Kind() != config.KindTable {
		t.Fatalf("expected table secondary, got %s", secondary.Kind())
	}

	_, scalar, err := vars.Resolve(tree, "a", "note")
	if err != nil {
		t.Fatalf("resolve scalar secondary: %v", err)
	}
	if scalar.Kind() != config.KindScalar {
		t.Fatalf("expected scalar secondary, got %s", scalar.Kind())
	}
}

func TestResolveNotFound(t *testing.T) {
	tree := sampleTree()

	cases := []struct {
		name      string
		group     string
		secondary string
		wantID    string
	}{
		{name: "missing group", group: "zzz", secondary: "b", wantID: "zzz"},
		{name: "missing secondary", group: "a", secondary: "zzz", wantID: "zzz"},
		{name: "empty group has no members", group: "empty", secondary: "b", wantID: "b"},
		{name: "empty ids", group: "", secondary: "", wantID: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := vars.Resolve(tree, tc.group, tc.secondary)
			var notFound *vars.GroupNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected GroupNotFoundError, got %v", err)
			}
			if notFound.ID != tc.wantID {
				t.Fatalf("expected id %q, got %q", tc.wantID, notFound.ID)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	primary, _, err := vars.Resolve(sampleTree(), "a", "b")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got := vars.Flatten(primary, "b")
	goldenPath := filepath.Join("testdata", "flatten.golden.json")
	testsupport.WriteGolden(t, goldenPath, got)

	want := vars.Variables(testsupport.MustLoadVariables(t, goldenPath))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenTopLevelScalarWins(t *testing.T) {
	primary := config.GroupOf(map[string]any{
		"host": "top",
		"b":    map[string]any{"host": "nested", "extra": "x"},
	})

	// Repeat to cover several map iteration orders.
	for i := 0; i < 50; i++ {
		got := vars.Flatten(primary, "b")
		want := vars.Variables{"host": "top", "extra": "x"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("iteration %d: collision mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestFlattenNonTableSecondary(t *testing.T) {
	primary := config.GroupOf(map[string]any{
		"foo":  "bar",
		"note": "text",
		"sub":  map[string]any{"ignored": "x"},
	})

	got := vars.Flatten(primary, "note")
	want := vars.Variables{"foo": "bar", "note": "text"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenAbsentSecondaryMatchesNonTable(t *testing.T) {
	primary, _ := sampleTree().Group("a")

	absent := vars.Flatten(primary, "absent")
	for _, secondary := range []string{"note", "foo", "list", ""} {
		if diff := cmp.Diff(absent, vars.Flatten(primary, secondary)); diff != "" {
			t.Fatalf("secondary %q differs from an absent one (-absent +got):\n%s", secondary, diff)
		}
	}
	for _, key := range []string{"baz", "n", "leak"} {
		if _, ok := absent[key]; ok {
			t.Fatalf("absent secondary should add no subgroup members, found %q", key)
		}
	}
}

func TestFlattenNilMembers(t *testing.T) {
	primary := config.Group{
		"foo":  config.NewScalar("bar"),
		"gone": nil,
		"b":    config.NewTable(config.Group{"x": nil, "y": config.NewScalar(int64(1))}),
	}

	got := vars.Flatten(primary, "b")
	want := vars.Variables{"foo": "bar", "gone": "", "x": "", "y": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, primary.TableKeys()); diff != "" {
		t.Fatalf("table keys mismatch (-want +got):\n%s", diff)
	}
	if got := primary.DebugString(); got != "scalar=2,table=1" {
		t.Fatalf("unexpected debug string %q", got)
	}
	if got := primary.Interface()["gone"]; got != nil {
		t.Fatalf("expected nil member to convert to nil, got %v", got)
	}
}

func TestFlattenIsIdempotent(t *testing.T) {
	primary, _, err := vars.Resolve(sampleTree(), "a", "b")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	first := vars.Flatten(primary, "b")
	second := vars.Flatten(primary, "b")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("flatten not idempotent (-first +second):\n%s", diff)
	}
}

func TestFlattenEmptySubgroup(t *testing.T) {
	primary := config.GroupOf(map[string]any{
		"b": map[string]any{},
	})
	if got := vars.Flatten(primary, "b"); len(got) != 0 {
		t.Fatalf("expected no variables, got %v", got)
	}
}

func TestResolveAndFlatten(t *testing.T) {
	got, err := vars.ResolveAndFlatten(sampleTree(), "a", "other")
	if err != nil {
		t.Fatalf("resolve and flatten: %v", err)
	}
	if got["leak"] != "nope" {
		t.Fatalf("expected selected subgroup member, got %v", got)
	}
	if _, ok := got["baz"]; ok {
		t.Fatalf("sibling subgroup members must not leak: %v", got)
	}

	if _, err := vars.ResolveAndFlatten(sampleTree(), "nope", "b"); err == nil {
		t.Fatal("expected error for missing group")
	}
}

func TestVariablesKeysAndContext(t *testing.T) {
	v := vars.Variables{"b": "2", "a": "1"}
	if diff := cmp.Diff([]string{"a", "b"}, v.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a": "1", "b": "2"}, v.Context()); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}
