// Package pathmap maps namespaces to output directories.
package pathmap

import (
	"path/filepath"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// GlobalDir is the directory reserved for types without a namespace.
const GlobalDir = "global_"

// Mapper places each namespace in a directory chain beneath Root.
type Mapper struct {
	Root string
	// Reserved names the directory for the global namespace. Empty means GlobalDir.
	Reserved string
}

// New returns a Mapper rooted at root using the default reserved name.
func New(root string) Mapper {
	return Mapper{Root: root, Reserved: GlobalDir}
}

func (m Mapper) reserved() string {
	if m.Reserved == "" {
		return GlobalDir
	}
	return m.Reserved
}

// Validate fails with ErrInvalidNamespace when a segment of ns cannot name a
// directory (two namespaces would otherwise share one), and with
// ErrReservedNamespace when the leading segment equals the reserved
// directory name.
func (m Mapper) Validate(ns meta.Namespace) error {
	if ns.IsGlobal() {
		return nil
	}
	if seg, bad := meta.BadSegment(ns.String()); bad {
		err := errors.Wrapf(errors.ErrInvalidNamespace, "namespace %q has segment %q", ns.String(), seg)
		return errors.WithHint(err, "namespace segments must be non-empty and free of path separators and :*?\"<>|")
	}
	segs := ns.Segments()
	if segs[0] == m.reserved() {
		err := errors.Wrapf(errors.ErrReservedNamespace, "the namespace %q is reserved", m.reserved())
		return errors.WithHintf(err, "rename namespace %q or configure a different stub.global_dir", ns.String())
	}
	return nil
}

// Dir returns the directory stubs for ns are written to.
func (m Mapper) Dir(ns meta.Namespace) (string, error) {
	if ns.IsGlobal() {
		return filepath.Join(m.Root, m.reserved()), nil
	}
	if err := m.Validate(ns); err != nil {
		return "", err
	}
	return filepath.Join(append([]string{m.Root}, ns.Segments()...)...), nil
}
