package service

import (
	"sort"
	"testing"
)

func TestResolveKnownAliases(t *testing.T) {
	r, err := NewEquivalenceResolver()
	if err != nil {
		t.Fatalf("NewEquivalenceResolver: %v", err)
	}

	cases := []struct {
		in   string
		want []string
	}{
		{"ELBOW", []string{"ELB", "ELBO", "ELBOW", "ELL"}},
		{"elb", []string{"ELB", "ELBO", "ELBOW", "ELL"}},
		{"FLG", []string{"FLAN", "FLANGE", "FLG", "FLN"}},
		{"con", []string{"CON", "CONN", "ECC", "RED", "REDU", "REDUCER"}},
		{"PIP", []string{"PIP", "PIPE"}},
		{"TEE", []string{"TEE"}},
	}

	for _, tc := range cases {
		got := r.Resolve(tc.in)
		sort.Strings(got)
		if len(got) != len(tc.want) {
			t.Fatalf("Resolve(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Resolve(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestResolveUnknownTypeMatchesItself(t *testing.T) {
	r, err := NewEquivalenceResolver()
	if err != nil {
		t.Fatalf("NewEquivalenceResolver: %v", err)
	}

	got := r.Resolve("  gasket ")
	if len(got) != 1 || got[0] != "GASKET" {
		t.Fatalf("Resolve(gasket) = %v, want [GASKET]", got)
	}
}

func TestCanonical(t *testing.T) {
	r, err := NewEquivalenceResolver()
	if err != nil {
		t.Fatalf("NewEquivalenceResolver: %v", err)
	}

	if got := r.Canonical("ell"); got != "ELBOW" {
		t.Fatalf("Canonical(ell) = %q, want ELBOW", got)
	}
	if got := r.Canonical("ECC"); got != "REDUCER" {
		t.Fatalf("Canonical(ECC) = %q, want REDUCER", got)
	}
	if got := r.Canonical("valve"); got != "VALVE" {
		t.Fatalf("Canonical(valve) = %q, want VALVE", got)
	}
}

func TestDuplicateAliasRejected(t *testing.T) {
	_, err := newEquivalenceResolver(map[string][]string{
		"ELBOW": {"ELB", "ELL"},
		"BEND":  {"ELL"},
	})
	if err == nil {
		t.Fatal("expected construction error on a duplicate alias")
	}
}
