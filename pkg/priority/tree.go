// Package priority implements the HTTP/2 stream priority tree and its
// weighted fair-queueing scheduler (RFC 7540 §5.3). It tracks the
// dependency graph between the streams multiplexed over one connection and,
// given which streams currently have data ready to send, produces a fair,
// weighted, ordered sequence of stream ids to service next.
//
// The tree is a pure in-memory data structure: no I/O, no goroutines, no
// persistence. It is not safe for concurrent use; a caller sharing a Tree
// across goroutines must serialise every call, including Next, under a
// single lock.
package priority

// DefaultWeight is the weight RFC 7540 §5.3.5 assigns a stream that has not
// been given an explicit priority.
const DefaultWeight = 16

// Tree is the connection-wide container for a set of HTTP/2 streams and
// their priority relationships. The zero value is not usable; construct one
// with NewTree.
type Tree struct {
	root    *node
	streams map[uint32]*node
}

// NewTree creates an empty tree containing only the synthetic root stream
// (id 0), which is always inactive and is never returned by Next.
func NewTree() *Tree {
	root := newNode(0, 1)
	root.active = false
	return &Tree{
		root:    root,
		streams: map[uint32]*node{0: root},
	}
}

// InsertStream adds a new stream to the tree.
//
// dependsOn names the stream the new one depends on; 0 means "depends on
// the root", and an id not present in the tree fails with ErrMissingStream.
// If exclusive is true, the new stream is inserted between dependsOn and all
// of dependsOn's current children.
//
// weight is the decoded weight, 1..256; InsertStream does not validate it,
// mirroring HTTP/2's tolerance for any value the wire encoding can carry.
func (t *Tree) InsertStream(id uint32, dependsOn uint32, weight int, exclusive bool) error {
	if _, exists := t.streams[id]; exists {
		return duplicateStreamError(id)
	}

	n := newNode(id, weight)

	if exclusive {
		parent, ok := t.streams[dependsOn]
		if !ok {
			return missingStreamError(dependsOn)
		}
		parent.addChildExclusive(n)
		t.streams[id] = n
		return nil
	}

	parent := t.root
	if dependsOn != 0 {
		p, ok := t.streams[dependsOn]
		if !ok {
			return missingStreamError(dependsOn)
		}
		parent = p
	}

	parent.addChild(n)
	t.streams[id] = n
	return nil
}

// Reprioritise updates the weight and dependency of a stream already in the
// tree, applying the RFC 7540 §5.3.3 cycle-breaking rule when the requested
// new parent is one of the stream's own descendants.
func (t *Tree) Reprioritise(id uint32, dependsOn uint32, weight int, exclusive bool) error {
	current, ok := t.streams[id]
	if !ok {
		return missingStreamError(id)
	}

	// RFC 7540 §5.3.1: a stream cannot depend on itself. The tree resolves
	// this the same way it resolves "no dependency given": depend on the
	// root. Rejecting the request outright is left to callers that want to
	// enforce the RFC's stricter PROTOCOL_ERROR (see pkg/http2).
	if dependsOn == id {
		dependsOn = 0
	}

	newParent := t.root
	if dependsOn != 0 {
		p, ok := t.streams[dependsOn]
		if !ok {
			return missingStreamError(dependsOn)
		}
		newParent = p
	}

	cyclic, err := t.isDescendant(newParent, current)
	if err != nil {
		return err
	}

	current.weight = weight

	oldParent := current.parent
	if cyclic {
		// The new parent currently depends (transitively) on the stream
		// being reprioritised. RFC 7540 §5.3.3: the new parent is first
		// moved to take the reprioritised stream's old place.
		newParent.parent.removeChild(newParent, false)
		oldParent.addChild(newParent)
	}

	oldParent.removeChild(current, false)

	if exclusive {
		newParent.addChildExclusive(current)
	} else {
		newParent.addChild(current)
	}

	return nil
}

// isDescendant reports whether candidate is a descendant of current, i.e.
// whether making current depend on candidate would create a cycle. It walks
// candidate's ancestor chain up to the root, bounded by the number of
// streams currently in the tree so a corrupted tree cannot spin forever.
func (t *Tree) isDescendant(candidate, current *node) (bool, error) {
	if candidate == t.root || candidate == current {
		return false, nil
	}

	ancestor := candidate.parent
	bound := len(t.streams)
	for hops := 0; ; hops++ {
		if ancestor == t.root {
			return false, nil
		}
		if ancestor == current {
			return true, nil
		}
		if hops >= bound {
			return false, priorityLoopError(candidate.id)
		}
		ancestor = ancestor.parent
	}
}

// RemoveStream removes a stream from the tree. The removed stream's
// children are re-homed onto its former parent, matching the HTTP/2 rule
// that dependents of a closed stream move up a level.
func (t *Tree) RemoveStream(id uint32) error {
	n, ok := t.streams[id]
	if !ok {
		return missingStreamError(id)
	}

	n.parent.removeChild(n, true)
	delete(t.streams, id)
	return nil
}

// Block marks a stream as having no data ready to send.
func (t *Tree) Block(id uint32) error {
	n, ok := t.streams[id]
	if !ok {
		return missingStreamError(id)
	}
	n.active = false
	return nil
}

// Unblock marks a stream as having data ready to send.
func (t *Tree) Unblock(id uint32) error {
	n, ok := t.streams[id]
	if !ok {
		return missingStreamError(id)
	}
	n.active = true
	return nil
}

// Has reports whether id is currently present in the tree.
func (t *Tree) Has(id uint32) bool {
	_, ok := t.streams[id]
	return ok
}

// Next returns the id of the stream that should be serviced next, chosen by
// walking the tree from the root and, at each level, picking the
// smallest-virtual-time active child (descending through inactive children
// that have an active descendant). It returns ErrDeadlock if no stream in
// the tree is currently active.
func (t *Tree) Next() (uint32, error) {
	id, ok := t.root.schedule()
	if !ok {
		return 0, ErrDeadlock
	}
	return id, nil
}
