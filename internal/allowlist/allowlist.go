// Package allowlist loads the admin allow-list from a configurable source
// and turns it into an immutable role.Resolver.
package allowlist

import (
	"context"
	"fmt"
	"strings"

	"orderingRoles/internal/role"
)

// Source yields the admin usernames in configured order.
type Source interface {
	Load(ctx context.Context) ([]string, error)
}

// Static is a fixed in-process allow-list.
type Static []string

// Load returns a copy of the list.
func (s Static) Load(context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// Build loads src once and returns a resolver over the normalized result.
func Build(ctx context.Context, src Source) (*role.Resolver, error) {
	if src == nil {
		return nil, fmt.Errorf("allow-list source is nil")
	}
	names, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load allow-list: %w", err)
	}
	return role.NewResolver(Normalize(names)...), nil
}

// Normalize trims entries, drops empties and keeps the first of any duplicates.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
