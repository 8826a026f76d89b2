package role

import "strings"

// Admin is the role granted to allow-listed usernames.
const Admin = "admin"

var defaultAdmins = [...]string{"tsubasa", "admin", "guest", "test"}

// DefaultAdmins returns a fresh copy of the allow-list shipped with the site.
func DefaultAdmins() []string {
	out := make([]string, len(defaultAdmins))
	copy(out, defaultAdmins[:])
	return out
}

// Resolver maps the local part of an address to a role.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	admins []string
	set    map[string]struct{}
}

// NewResolver builds a resolver over a copy of the given usernames.
// Matching is exact and case-sensitive; empty names are skipped.
func NewResolver(admins ...string) *Resolver {
	r := &Resolver{
		admins: make([]string, 0, len(admins)),
		set:    make(map[string]struct{}, len(admins)),
	}
	for _, a := range admins {
		if a == "" {
			continue
		}
		if _, dup := r.set[a]; dup {
			continue
		}
		r.set[a] = struct{}{}
		r.admins = append(r.admins, a)
	}
	return r
}

// NewDefaultResolver returns a resolver over DefaultAdmins().
func NewDefaultResolver() *Resolver {
	return NewResolver(defaultAdmins[:]...)
}

// ExtractLocalPart returns everything before the first '@'.
// An address without '@' is returned unchanged.
func ExtractLocalPart(address string) string {
	local, _, _ := strings.Cut(address, "@")
	return local
}

// Resolve returns Admin if local is allow-listed, otherwise local itself.
func (r *Resolver) Resolve(local string) string {
	if r.IsAdmin(local) {
		return Admin
	}
	return local
}

// ResolveAddress resolves the role for a full address.
func (r *Resolver) ResolveAddress(address string) string {
	return r.Resolve(ExtractLocalPart(address))
}

// IsAdmin reports whether local is allow-listed.
func (r *Resolver) IsAdmin(local string) bool {
	if r == nil {
		return false
	}
	_, ok := r.set[local]
	return ok
}

// Admins returns the allow-list in configured order.
func (r *Resolver) Admins() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.admins))
	copy(out, r.admins)
	return out
}
