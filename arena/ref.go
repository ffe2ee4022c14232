package arena

// Ref is a handle tagged with the arena generation it was issued in.
//
// A Node alone cannot tell whether the arena was cleared since it was issued.
// Holders that outlive a reuse cycle keep a Ref and go through Resolve.
type Ref struct {
	Gen  uint32
	Node Node
}

// Ref returns a generation-tagged reference to the live node n.
func (a *Arena[T]) Ref(n Node) Ref {
	a.slot(n, "ref")
	return Ref{Gen: a.gen, Node: n}
}

// Resolve returns the value behind r. Unlike Get it does not panic: a
// reference from an earlier generation yields ErrStaleRef and a handle that is
// no longer live yields an *InvalidHandleError.
func (a *Arena[T]) Resolve(r Ref) (T, error) {
	var zero T
	if r.Gen != a.gen {
		return zero, ErrStaleRef
	}
	if !a.Contains(r.Node) {
		return zero, &InvalidHandleError{
			Op:     "resolve",
			Node:   r.Node,
			Len:    len(a.items),
			Vacant: uint64(r.Node) < uint64(len(a.items)),
		}
	}
	return a.items[int(r.Node)], nil
}
