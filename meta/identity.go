package meta

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Identity is a parsed unit identity of the form
//
//	Name[, Key=Value]...
//
// e.g. "Acme.Widgets, Version=1.2.0, Culture=neutral".
type Identity struct {
	Name    string
	Version *semver.Version
	Attrs   map[string]string
}

// ParseIdentity splits a unit identity into its name (the first token) and
// its attributes. A Version attribute that is not valid semver is kept in
// Attrs but leaves Version nil.
func ParseIdentity(s string) Identity {
	parts := strings.Split(s, ",")
	id := Identity{Name: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if id.Attrs == nil {
			id.Attrs = make(map[string]string)
		}
		id.Attrs[k] = v
		if strings.EqualFold(k, "version") {
			if ver, err := semver.NewVersion(v); err == nil {
				id.Version = ver
			}
		}
	}
	return id
}

// Satisfies reports whether a unit declaring version have can stand in for
// this identity. Identities without a version accept anything; units without
// a parseable version are accepted too.
func (id Identity) Satisfies(have string) bool {
	if id.Version == nil || have == "" {
		return true
	}
	v, err := semver.NewVersion(have)
	if err != nil {
		return true
	}
	return !v.LessThan(id.Version)
}

// String formats the identity with its version, if any.
func (id Identity) String() string {
	if id.Version == nil {
		return id.Name
	}
	return id.Name + ", Version=" + id.Version.String()
}
