package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]any{
		"label": "cat",
		"index": 7,
		"page":  2,
		"file":  "cat.png",
	}
	cases := []struct {
		tmpl string
		want string
	}{
		{"${label}", "cat"},
		{"${index}. ${label}", "7. cat"},
		{"${page:2}-${index:03}", "02-007"},
		{"[${label:5}]", "[  cat]"},
		{"${ label }", "cat"},
		{"${unknown} ${label}", "${unknown} cat"},
		{"${label:x}", "${label:x}"},
		{"no placeholders", "no placeholders"},
	}
	for _, c := range cases {
		if got := Interpolate(c.tmpl, vars); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.tmpl, got, c.want)
		}
	}
}

func TestInterpolateWithoutVars(t *testing.T) {
	if got := Interpolate("${label}", nil); got != "${label}" {
		t.Fatalf("expected placeholder kept, got %q", got)
	}
}

func TestKeys(t *testing.T) {
	got := Keys("${page}/${index:3} ${label} ${page}")
	want := []string{"page", "index", "label"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Keys mismatch (-want +got):\n%s", diff)
	}
}
