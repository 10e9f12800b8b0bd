package keys

import "testing"

func TestNamespacer(t *testing.T) {
	cases := []struct {
		name     string
		prefix   string
		logical  string
		physical string
	}{
		{"no prefix", "", "a", "a"},
		{"prefix", "p", "a", "p:a"},
		{"key with colon", "app", "user:1", "app:user:1"},
		{"empty key", "p", "", "p:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := New(tc.prefix)
			if got := n.Physical(tc.logical); got != tc.physical {
				t.Fatalf("Physical(%q) = %q want %q", tc.logical, got, tc.physical)
			}
			if got := n.Strip(tc.physical); got != tc.logical {
				t.Fatalf("Strip(%q) = %q want %q", tc.physical, got, tc.logical)
			}
		})
	}
}

func TestStripOutsideNamespaceIsNoop(t *testing.T) {
	n := New("p")
	for _, k := range []string{"other", "q:a", "xp:a", "a:p:b"} {
		if got := n.Strip(k); got != k {
			t.Fatalf("Strip(%q) = %q want unchanged", k, got)
		}
	}
}

func TestIncludes(t *testing.T) {
	if !New("").Includes("anything") {
		t.Fatalf("empty prefix must include every key")
	}
	n := New("app")
	if !n.Includes("app:a") || !n.Includes("myapp-a") {
		t.Fatalf("expected substring inclusion")
	}
	if n.Includes("other") {
		t.Fatalf("unexpected inclusion")
	}
}
