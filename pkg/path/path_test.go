package path

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitJoin(t *testing.T) {
	tests := []struct {
		key  string
		segs []string
	}{
		{"", nil},
		{"name", []string{"name"}},
		{"address.city", []string{"address", "city"}},
		{"items.0.sku", []string{"items", "0", "sku"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if diff := cmp.Diff(tt.segs, Split(tt.key)); diff != "" {
				t.Errorf("Split(%q) (-want +got):\n%s", tt.key, diff)
			}
			if got := Join(tt.segs...); got != tt.key {
				t.Errorf("Join = %q, want %q", got, tt.key)
			}
		})
	}

	if got := Join("", "a", "", "b"); got != "a.b" {
		t.Errorf("Join skipping empties = %q, want %q", got, "a.b")
	}
}

func TestBuild(t *testing.T) {
	flat := map[string]any{
		"value":        "top",
		"nested.value": "inner",
		"items.0.sku":  "A1",
		"items.1.sku":  "B2",
		"sparse.1":     "x",
	}

	want := map[string]any{
		"value":  "top",
		"nested": map[string]any{"value": "inner"},
		"items": []any{
			map[string]any{"sku": "A1"},
			map[string]any{"sku": "B2"},
		},
		"sparse": map[string]any{"1": "x"},
	}

	if diff := cmp.Diff(want, Build(flat)); diff != "" {
		t.Errorf("Build (-want +got):\n%s", diff)
	}
}

func TestBuildPrefixConflictKeepsObject(t *testing.T) {
	flat := map[string]any{
		"a":   "leaf",
		"a.b": 1,
	}
	want := map[string]any{"a": map[string]any{"b": 1}}
	if diff := cmp.Diff(want, Build(flat)); diff != "" {
		t.Errorf("Build (-want +got):\n%s", diff)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	flat := map[string]any{
		"value":        "",
		"nested.value": "x",
		"list.0":       1,
		"list.1":       2,
	}
	if diff := cmp.Diff(flat, Flatten(Build(flat))); diff != "" {
		t.Errorf("Flatten(Build) (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	nested := Build(map[string]any{
		"user.name":     "ada",
		"user.tags.0":   "admin",
		"user.tags.1":   "ops",
		"settings.dark": true,
	})

	tests := []struct {
		key    string
		want   any
		wantOK bool
	}{
		{"user.name", "ada", true},
		{"user.tags.1", "ops", true},
		{"user.tags.2", nil, false},
		{"settings.dark", true, true},
		{"settings.dark.x", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		got, ok := Get(nested, tt.key)
		if ok != tt.wantOK || !cmp.Equal(got, tt.want) {
			t.Errorf("Get(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
