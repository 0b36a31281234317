package priority

import "container/heap"

// maxWeight is the largest legal HTTP/2 stream weight (RFC 7540 §5.3.2) and
// also the per-round credit that the virtual-time step is normalised
// against: a stream of weight w advances by 256/w per service, so it is
// scheduled w/256 times as often as a stream of weight 256.
const maxWeight = 256

// node is one stream's entry in the priority tree. It plays two roles at
// once: as a scheduler, it owns queue, the min-heap of its own children
// ordered by virtual time; as an entry, it carries the vt/deficit bookkeeping
// its *parent* uses to place it within that heap. Both roles are needed
// simultaneously because scheduling recurses down the tree.
type node struct {
	id       uint32
	weight   int
	active   bool
	parent   *node
	children map[uint32]*node
	queue    childHeap

	// lastWeight is this node's virtual-time cursor: the vt of the most
	// recently scheduled child, used as the starting vt for new children.
	lastWeight uint64

	// vt and deficit are this node's bookkeeping as an entry in its
	// parent's queue. vt is its current virtual time; deficit is the
	// remainder carried from the last integer-division step so that
	// long-run service share stays exactly proportional to weight.
	vt      uint64
	deficit int
}

func newNode(id uint32, weight int) *node {
	return &node{
		id:       id,
		weight:   weight,
		active:   true,
		children: make(map[uint32]*node),
		queue:    childHeap{},
	}
}

// childHeap is a container/heap min-heap of *node, ordered by (vt, id).
// The id tie-break makes scheduling deterministic and reproducible.
type childHeap []*node

func (h childHeap) Len() int { return len(h) }

func (h childHeap) Less(i, j int) bool {
	if h[i].vt != h[j].vt {
		return h[i].vt < h[j].vt
	}
	return h[i].id < h[j].id
}

func (h childHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *childHeap) Push(x any) {
	*h = append(*h, x.(*node))
}

func (h *childHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// addChild attaches c as a new child of n. c enters scheduling at n's
// current virtual-time cursor, so it is served on the next round rather
// than starved by time n's existing children have already accumulated.
func (n *node) addChild(c *node) {
	c.parent = n
	n.children[c.id] = c
	c.vt = n.lastWeight
	heap.Push(&n.queue, c)
}

// addChildExclusive inserts c between n and all of n's current children:
// c becomes n's only child, and everything that used to depend on n now
// depends on c instead.
func (n *node) addChildExclusive(c *node) {
	old := n.children
	n.children = make(map[uint32]*node, len(old)+1)
	n.queue = childHeap{}
	n.lastWeight = 0
	n.addChild(c)

	for _, oldChild := range old {
		c.addChild(oldChild)
	}
}

// removeChild detaches c from n. If stripChildren is true, c's own children
// are transplanted onto n directly, entering n's queue at n's current
// virtual-time cursor; c's bookkeeping is cleared once the transplant is
// done so that c no longer claims children it has given up.
func (n *node) removeChild(c *node, stripChildren bool) {
	delete(n.children, c.id)

	rebuilt := make(childHeap, 0, len(n.queue))
	for n.queue.Len() > 0 {
		entry := heap.Pop(&n.queue).(*node)
		if entry.id == c.id {
			continue
		}
		rebuilt = append(rebuilt, entry)
	}
	n.queue = rebuilt
	heap.Init(&n.queue)

	if stripChildren {
		grandchildren := c.children
		c.children = make(map[uint32]*node)
		c.queue = childHeap{}
		for _, grandchild := range grandchildren {
			n.addChild(grandchild)
		}
	}
}

// schedule returns the stream id of the next descendant to service.
// The caller must not invoke schedule on an active node: an active node
// is itself the answer and has no reason to look at its children.
// Every child popped during the search is charged one turn and re-enqueued
// once the search ends, whether or not an active descendant was found.
func (n *node) schedule() (uint32, bool) {
	var popped []*node
	defer func() {
		for _, entry := range popped {
			heap.Push(&n.queue, entry)
		}
	}()

	for n.queue.Len() > 0 {
		entry := heap.Pop(&n.queue).(*node)
		vt := entry.vt

		var (
			result uint32
			found  bool
		)
		if entry.active {
			result, found = entry.id, true
		} else {
			result, found = entry.schedule()
		}

		n.lastWeight = vt
		weight := entry.weight
		if weight < 1 {
			// Defensive clamp: the tree accepts out-of-range weights as-is
			// (callers own validation), but a zero or negative weight must
			// not turn scheduling into a division by zero.
			weight = 1
		}
		step := (maxWeight + entry.deficit) / weight
		entry.deficit = (maxWeight + entry.deficit) % weight
		entry.vt = vt + uint64(step)
		popped = append(popped, entry)

		if found {
			return result, true
		}
	}
	return 0, false
}
