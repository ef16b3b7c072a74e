package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stubtest "github.com/teranos/stubgen/internal/testing"
	"github.com/teranos/stubgen/meta"
)

func names(types []meta.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name()
	}
	return out
}

func TestRemoveDirtyNamespace_EmptyIsSentinel(t *testing.T) {
	r := New()

	ns, types, ok := r.RemoveDirtyNamespace()
	assert.False(t, ok)
	assert.True(t, ns.IsGlobal())
	assert.Nil(t, types)
}

func TestAddDependency_Idempotent(t *testing.T) {
	r := New()
	gadget := stubtest.NewType("Acme.Widgets.Gadget", "Acme.Widgets")

	assert.True(t, r.AddDependency(gadget))
	assert.False(t, r.AddDependency(gadget))
	// A distinct handle with the same identity is the same member.
	assert.False(t, r.AddDependency(stubtest.NewType("Acme.Widgets.Gadget", "Acme.Widgets")))
	assert.False(t, r.AddDependency(nil))

	assert.Equal(t, 1, r.Pending())
	assert.Equal(t, 1, r.Len())

	ns, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	assert.Equal(t, "Acme.Widgets", ns.String())
	assert.Equal(t, []string{"Gadget"}, names(types))

	_, _, ok = r.RemoveDirtyNamespace()
	assert.False(t, ok)
}

func TestAddDependency_SameNameDifferentUnitIsDistinct(t *testing.T) {
	r := New()
	r.AddDependency(stubtest.NewType("Acme.Gadget", "Acme.A"))
	r.AddDependency(stubtest.NewType("Acme.Gadget", "Acme.B"))

	_, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	assert.Len(t, types, 2)
}

func TestWorklist_FIFOAndIdempotentQueue(t *testing.T) {
	r := New()
	r.AddDependency(stubtest.NewType("B.One", "u"))
	r.AddDependency(stubtest.NewType("A.One", "u"))
	r.AddDependency(stubtest.NewType("B.Two", "u"))
	r.AddDependency(stubtest.NewType("Global", "u"))

	assert.Equal(t, 3, r.Pending())

	var order []string
	for {
		ns, _, ok := r.RemoveDirtyNamespace()
		if !ok {
			break
		}
		order = append(order, ns.String())
	}
	assert.Equal(t, []string{"B", "A", ""}, order)
}

func TestClearCurrent_NewMembersStartFreshCycle(t *testing.T) {
	r := New()
	r.AddDependency(stubtest.NewType("Acme.One", "u"))
	assert.Equal(t, 1, r.Fresh(meta.NewNamespace("Acme")))

	ns, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	require.Len(t, types, 1)
	assert.False(t, r.Emitted(ns))

	r.ClearCurrent(ns)
	assert.True(t, r.Emitted(ns))
	assert.Equal(t, 0, r.Fresh(ns))
	assert.Equal(t, 0, r.Pending())

	// Re-adding a known member does not re-dirty an emitted namespace.
	r.AddDependency(stubtest.NewType("Acme.One", "u"))
	assert.Equal(t, 0, r.Pending())

	// A new member does, and the snapshot carries the full membership.
	r.AddDependency(stubtest.NewType("Acme.Two", "u"))
	assert.Equal(t, 1, r.Fresh(ns))
	ns2, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	assert.Equal(t, ns, ns2)
	assert.Equal(t, []string{"One", "Two"}, names(types))
}

func TestAddDependency_DuringDrainRequeuesPoppedNamespace(t *testing.T) {
	r := New()
	r.AddDependency(stubtest.NewType("Acme.One", "u"))

	ns, _, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	r.ClearCurrent(ns)

	// Discovered while rendering ns itself.
	r.AddDependency(stubtest.NewType("Acme.Nested", "u"))
	r.AddDependency(stubtest.NewType("Other.Thing", "u"))

	ns, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)
	assert.Equal(t, "Acme", ns.String())
	assert.Equal(t, []string{"One", "Nested"}, names(types))

	ns, _, ok = r.RemoveDirtyNamespace()
	require.True(t, ok)
	assert.Equal(t, "Other", ns.String())
}

func TestClearCurrent_UnknownNamespaceIsNoop(t *testing.T) {
	r := New()
	r.ClearCurrent(meta.NewNamespace("Nope"))
	assert.False(t, r.Emitted(meta.NewNamespace("Nope")))
	assert.Empty(t, r.Namespaces())
}

func TestRemoveDirtyNamespace_SnapshotIsIndependent(t *testing.T) {
	r := New()
	r.AddDependency(stubtest.NewType("Acme.One", "u"))
	_, types, ok := r.RemoveDirtyNamespace()
	require.True(t, ok)

	r.AddDependency(stubtest.NewType("Acme.Two", "u"))
	assert.Len(t, types, 1, "snapshot must not observe later additions")
}
