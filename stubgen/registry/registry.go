// Package registry tracks which types each namespace must declare and which
// namespaces still need to be (re)written.
//
// The registry is the frontier of a closure computation: explicitly requested
// types are added first, then every type a renderer discovers while writing a
// namespace is added as well. A namespace is queued ("dirty") whenever it gains
// a member it did not have, so draining the queue visits every namespace of
// the transitive closure and rewrites a namespace whenever it grew after its
// last write.
//
// A Registry belongs to one generation session and is not safe for concurrent
// use.
package registry

import (
	"github.com/teranos/stubgen/meta"
)

// Registry maps namespaces to member types and keeps a FIFO worklist of
// dirty namespaces. The zero value is not usable; call New.
type Registry struct {
	spaces map[meta.Namespace]*space

	// queue holds dirty namespaces in the order they became dirty;
	// queued mirrors it so insertion is idempotent.
	queue  []meta.Namespace
	queued map[meta.Namespace]bool
}

type space struct {
	members map[meta.Key]meta.Type
	order   []meta.Key
	// fresh holds members added since the namespace was last emitted.
	fresh   []meta.Key
	emitted bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		spaces: make(map[meta.Namespace]*space),
		queued: make(map[meta.Namespace]bool),
	}
}

// AddDependency records t as a member of its namespace. It returns true when
// t was not yet a member, in which case the namespace is marked dirty.
// Adding a known member again changes nothing.
func (r *Registry) AddDependency(t meta.Type) bool {
	if t == nil {
		return false
	}

	ns := t.Namespace()
	sp := r.spaces[ns]
	if sp == nil {
		sp = &space{members: make(map[meta.Key]meta.Type)}
		r.spaces[ns] = sp
	}

	key := meta.KeyOf(t)
	if _, ok := sp.members[key]; ok {
		return false
	}
	sp.members[key] = t
	sp.order = append(sp.order, key)
	sp.fresh = append(sp.fresh, key)

	r.markDirty(ns)
	return true
}

func (r *Registry) markDirty(ns meta.Namespace) {
	if r.queued[ns] {
		return
	}
	r.queued[ns] = true
	r.queue = append(r.queue, ns)
}

// RemoveDirtyNamespace pops the oldest dirty namespace and returns it with a
// snapshot of all its current members in insertion order. ok is false when
// no namespace is dirty.
func (r *Registry) RemoveDirtyNamespace() (ns meta.Namespace, types []meta.Type, ok bool) {
	if len(r.queue) == 0 {
		return meta.Global, nil, false
	}

	ns = r.queue[0]
	r.queue[0] = meta.Global
	r.queue = r.queue[1:]
	delete(r.queued, ns)

	sp := r.spaces[ns]
	types = make([]meta.Type, 0, len(sp.order))
	for _, key := range sp.order {
		types = append(types, sp.members[key])
	}
	return ns, types, true
}

// ClearCurrent resets the accumulation bookkeeping of ns at emission time.
// Members added afterwards start a new dirty cycle and cause ns to be
// emitted again with its full member set.
func (r *Registry) ClearCurrent(ns meta.Namespace) {
	sp := r.spaces[ns]
	if sp == nil {
		return
	}
	sp.fresh = nil
	sp.emitted = true
}

// Emitted reports whether ClearCurrent has been called for ns.
func (r *Registry) Emitted(ns meta.Namespace) bool {
	sp := r.spaces[ns]
	return sp != nil && sp.emitted
}

// Fresh returns how many members ns gained since it was last emitted.
func (r *Registry) Fresh(ns meta.Namespace) int {
	if sp := r.spaces[ns]; sp != nil {
		return len(sp.fresh)
	}
	return 0
}

// Pending returns the number of dirty namespaces.
func (r *Registry) Pending() int {
	return len(r.queue)
}

// Len returns the number of member types across all namespaces.
func (r *Registry) Len() int {
	n := 0
	for _, sp := range r.spaces {
		n += len(sp.members)
	}
	return n
}

// Namespaces returns every namespace that has at least one member, in no
// particular order.
func (r *Registry) Namespaces() []meta.Namespace {
	out := make([]meta.Namespace, 0, len(r.spaces))
	for ns := range r.spaces {
		out = append(out, ns)
	}
	return out
}

// Registrar is the part of the registry a renderer sees: it registers the
// types it finds referenced while rendering.
type Registrar interface {
	AddDependency(t meta.Type) bool
}

var _ Registrar = (*Registry)(nil)
