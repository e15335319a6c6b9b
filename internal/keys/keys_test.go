package keys

import (
	"strings"
	"testing"
)

type query struct {
	Name  string
	Limit int
	Tags  map[string]string
}

func TestDeriveDeterministic(t *testing.T) {
	args := query{Name: "ada", Limit: 10, Tags: map[string]string{"a": "1", "b": "2", "c": "3"}}

	first, err := Derive("swrcache", "User", "42", "profile", args)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := Derive("swrcache", "User", "42", "profile", args)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		if got != first {
			t.Fatalf("key changed between calls: %q vs %q", got, first)
		}
	}
}

func TestDeriveMapOrderInsensitive(t *testing.T) {
	a := map[string]any{"x": 1, "y": "two", "z": []int{3}}
	b := map[string]any{"z": []int{3}, "y": "two", "x": 1}

	ka, err := Derive("ns", "T", "", "op", a)
	if err != nil {
		t.Fatal(err)
	}
	kb, err := Derive("ns", "T", "", "op", b)
	if err != nil {
		t.Fatal(err)
	}
	if ka != kb {
		t.Fatalf("equal maps produced different keys: %q vs %q", ka, kb)
	}
}

func TestDeriveDistinguishesInputs(t *testing.T) {
	base, _ := Derive("ns", "T", "1", "op", []any{1, "a"})
	cases := map[string]func() (string, error){
		"args":      func() (string, error) { return Derive("ns", "T", "1", "op", []any{1, "b"}) },
		"arg order": func() (string, error) { return Derive("ns", "T", "1", "op", []any{"a", 1}) },
		"owner id":  func() (string, error) { return Derive("ns", "T", "2", "op", []any{1, "a"}) },
		"owner":     func() (string, error) { return Derive("ns", "U", "1", "op", []any{1, "a"}) },
		"operation": func() (string, error) { return Derive("ns", "T", "1", "op2", []any{1, "a"}) },
		"namespace": func() (string, error) { return Derive("ns2", "T", "1", "op", []any{1, "a"}) },
	}
	for name, fn := range cases {
		k, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if k == base {
			t.Fatalf("%s: expected different key, both %q", name, k)
		}
	}
}

func TestDeriveLayout(t *testing.T) {
	k, err := Derive("swrcache", "Report", "", "totals", nil)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(k, "/")
	if len(parts) != 5 {
		t.Fatalf("expected 5 segments, got %d (%q)", len(parts), k)
	}
	if parts[0] != "swrcache" || parts[1] != "Report" || parts[2] != "" || parts[3] != "totals" {
		t.Fatalf("unexpected layout %q", k)
	}
	if len(parts[4]) != 64 {
		t.Fatalf("expected hex sha256 segment, got %q", parts[4])
	}
}

func TestDeriveEscapesSlashes(t *testing.T) {
	a, _ := Derive("ns", "T", "a/b", "op", 1)
	b, _ := Derive("ns", "T/a", "b", "op", 1)
	if a == b {
		t.Fatalf("slash in segment must not shift segments: %q", a)
	}
	if strings.Count(a, "/") != 4 {
		t.Fatalf("expected exactly 4 separators in %q", a)
	}
}

func TestDeriveUnsupportedArgs(t *testing.T) {
	if _, err := Derive("ns", "T", "", "op", make(chan int)); err == nil {
		t.Fatalf("expected encode error for channel argument")
	}
}

func TestDeriveIgnoresUnexportedFields(t *testing.T) {
	type page struct {
		Path   string
		cursor int
	}
	a, err := Derive("ns", "T", "", "op", page{Path: "/a", cursor: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Derive("ns", "T", "", "op", page{Path: "/a", cursor: 2})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("unexported fields must not affect the key: %q vs %q", a, b)
	}
}
