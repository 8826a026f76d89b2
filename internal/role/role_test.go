package role

import (
	"strings"
	"testing"
)

func TestExtractLocalPart(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"tsubasa@example.com", "tsubasa"},
		{"random.user@example.com", "random.user"},
		{"a@b@c", "a"},
		{"@example.com", ""},
		{"nobody", "nobody"},
		{"", ""},
		{"trailing@", "trailing"},
	}
	for _, c := range cases {
		if got := ExtractLocalPart(c.in); got != c.want {
			t.Fatalf("ExtractLocalPart(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractLocalPart_BeforeFirstAt(t *testing.T) {
	for _, s := range []string{"x@y", "long.name+tag@host@other", "@@", "é@ü"} {
		i := strings.Index(s, "@")
		if got := ExtractLocalPart(s); got != s[:i] {
			t.Fatalf("ExtractLocalPart(%q) = %q, want %q", s, got, s[:i])
		}
	}
}

func TestResolve_Default(t *testing.T) {
	r := NewDefaultResolver()
	cases := map[string]string{
		"admin":   Admin,
		"tsubasa": Admin,
		"guest":   Admin,
		"test":    Admin,
		"nobody":  "nobody",
		"Admin":   "Admin",
		"":        "",
	}
	for in, want := range cases {
		if got := r.Resolve(in); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAddress_Composed(t *testing.T) {
	r := NewDefaultResolver()
	if got := r.ResolveAddress("tsubasa@example.com"); got != Admin {
		t.Fatalf("tsubasa: got %q", got)
	}
	if got := r.ResolveAddress("random.user@example.com"); got != "random.user" {
		t.Fatalf("random.user: got %q", got)
	}
	if got := r.ResolveAddress("guest"); got != Admin {
		t.Fatalf("address without @: got %q", got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewDefaultResolver()
	for _, x := range []string{"admin", "tsubasa", "nobody", "random.user", ""} {
		once := r.Resolve(x)
		if twice := r.Resolve(once); twice != once {
			t.Fatalf("Resolve not idempotent for %q: %q then %q", x, once, twice)
		}
	}
}

func TestNewResolver_CopiesInput(t *testing.T) {
	in := []string{"alice", "", "bob", "alice"}
	r := NewResolver(in...)
	in[0] = "mallory"
	if r.IsAdmin("mallory") || !r.IsAdmin("alice") {
		t.Fatalf("resolver must not alias its input")
	}
	got := r.Admins()
	if strings.Join(got, ",") != "alice,bob" {
		t.Fatalf("Admins = %v", got)
	}
	got[0] = "mallory"
	if r.Admins()[0] != "alice" {
		t.Fatalf("Admins must return a copy")
	}
}

func TestNewResolver_Empty(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve("admin"); got != "admin" {
		t.Fatalf("got %q", got)
	}
	if r.IsAdmin("admin") {
		t.Fatalf("empty allow-list must not grant admin")
	}
	var nilR *Resolver
	if nilR.IsAdmin("admin") || nilR.Admins() != nil {
		t.Fatalf("nil resolver must be empty")
	}
}

func TestDefaultAdmins_FreshCopy(t *testing.T) {
	got := DefaultAdmins()
	got[0] = "mallory"
	if DefaultAdmins()[0] != "tsubasa" {
		t.Fatalf("DefaultAdmins must return a copy")
	}
	r := NewDefaultResolver()
	if r.IsAdmin("mallory") || !r.IsAdmin("tsubasa") {
		t.Fatalf("default resolver affected by caller mutation: %v", r.Admins())
	}
	if strings.Join(DefaultAdmins(), ",") != "tsubasa,admin,guest,test" {
		t.Fatalf("DefaultAdmins order: %v", DefaultAdmins())
	}
}
