// Package http2 drives a pkg/priority.Tree from the connection-level events
// an HTTP/2 implementation needs to feed it: opening a stream, applying a
// PRIORITY frame or the priority block on a HEADERS frame, flipping a
// stream's writability, and asking which stream to write next. It owns no
// bytes and performs no I/O — frame parsing beyond the priority fields,
// HPACK, flow control, and the rest of RFC 7540 belong to the frame
// dispatch loop that would sit around this package.
package http2

import (
	"fmt"
	"sync"

	"github.com/yourusername/h2priority/pkg/priority"
)

// driverStream is the registry entry this package keeps per open stream. It
// carries only identity: every piece of priority bookkeeping (weight,
// parent, active state) lives in the tree, not here, so the registry and
// the tree can never drift out of sync with each other.
type driverStream struct {
	id uint32
}

// Connection is the connection-level driver described in package doc: it
// holds one priority.Tree per HTTP/2 connection, feeds it PRIORITY frames
// and the inline priority block on HEADERS frames, and exposes the next
// stream to write in terms of stream ids. It owns no bytes and performs no
// I/O; byte framing, HPACK, flow control and the rest of RFC 7540 belong to
// the frame-dispatch loop this package does not implement.
type Connection struct {
	mu       sync.Mutex
	isClient bool

	tree    *priority.Tree
	streams map[uint32]*driverStream

	config              *ConnectionConfig
	priorityRateLimiter *rateLimiter
}

// NewConnection creates a new HTTP/2 connection driver. isClient is recorded
// on the connection; OpenStream does not check stream id parity against it.
func NewConnection(isClient bool) *Connection {
	config := DefaultConnectionConfig()

	return &Connection{
		isClient:            isClient,
		tree:                priority.NewTree(),
		streams:             make(map[uint32]*driverStream),
		config:              config,
		priorityRateLimiter: newRateLimiter(config.MaxPriorityUpdatesPerSecond, config.PriorityRateLimitWindow),
	}
}

// SetConfig replaces the connection configuration, resetting the PRIORITY
// rate limiter to match the new window.
func (c *Connection) SetConfig(config *ConnectionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = config
	c.priorityRateLimiter = newRateLimiter(config.MaxPriorityUpdatesPerSecond, config.PriorityRateLimitWindow)
	return nil
}

// OpenStream registers a new stream with the tree at RFC 7540 §5.3.5's
// default priority: weight 16, dependent on stream 0, non-exclusive. The
// stream is not writable until MarkWritable is called for it. Fails if the
// driver already knows id.
func (c *Connection) OpenStream(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.streams[id]; exists {
		return fmt.Errorf("%w: %d", ErrStreamAlreadyOpen, id)
	}

	if err := c.tree.InsertStream(id, 0, priority.DefaultWeight, false); err != nil {
		return err
	}
	if err := c.tree.Block(id); err != nil {
		return err
	}

	c.streams[id] = &driverStream{id: id}
	return nil
}

// HandlePriorityFrame applies the dependency/weight/exclusive triple of an
// RFC 7540 PRIORITY frame to id, the stream named by the frame's own header
// (distinct from p.StreamDependency, the *new parent* the frame requests).
// A PRIORITY frame MAY arrive for a stream the driver has not yet opened
// (an "idle" stream per RFC 7540 §5.3.4), in which case it is opened with
// the parameters the frame carries rather than the default priority. The
// tree's typed error is returned unchanged so the caller can map it to the
// correct RFC 7540 connection/stream error code.
func (c *Connection) HandlePriorityFrame(id uint32, p PriorityParam) error {
	return c.handlePriority(id, p)
}

// HandleHeadersPriority applies the optional priority block carried on the
// HEADERS frame opening stream id. It must be called once, before the
// stream's header block is handed to the (out-of-scope) frame body path.
func (c *Connection) HandleHeadersPriority(id uint32, p PriorityParam) error {
	return c.handlePriority(id, p)
}

func (c *Connection) handlePriority(id uint32, p PriorityParam) error {
	// RFC 7540 §5.3.1: a stream cannot depend on itself. Caught here, ahead
	// of the rate limiter, because it is a protocol violation rather than
	// ordinary traffic the limiter should count against the peer. (The tree
	// itself is more permissive — see priority.Tree.Reprioritise — so the
	// strict RFC rejection lives at this driver boundary instead.)
	if id == p.StreamDependency {
		return fmt.Errorf("%w: %d", ErrStreamSelfDependency, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.priorityRateLimiter.allow() {
		return ErrRateLimitExceeded
	}

	weight := p.DecodedWeight()

	if _, open := c.streams[id]; !open {
		if err := c.tree.InsertStream(id, p.StreamDependency, weight, p.Exclusive); err != nil {
			return err
		}
		c.streams[id] = &driverStream{id: id}
		return nil
	}

	return c.tree.Reprioritise(id, p.StreamDependency, weight, p.Exclusive)
}

// MarkWritable records that id now has bytes ready to send.
func (c *Connection) MarkWritable(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Unblock(id)
}

// MarkDrained records that id's send buffer has emptied.
func (c *Connection) MarkDrained(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Block(id)
}

// CloseStream removes id from the tree and the driver's registry.
func (c *Connection) CloseStream(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tree.RemoveStream(id); err != nil {
		return err
	}
	delete(c.streams, id)
	return nil
}

// NextWritable returns the id of the stream that should be serviced next.
// ok is false if every stream in the tree is currently blocked (or the tree
// has no streams), rather than returning a typed error, since callers poll
// this in a loop rather than treating "nothing to write right now" as
// exceptional.
func (c *Connection) NextWritable() (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.tree.Next()
	if err != nil {
		return 0, false
	}
	return id, true
}

// ActiveStreams returns the number of streams the driver currently has
// open, regardless of their writability.
func (c *Connection) ActiveStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.streams)
}

// HasStream reports whether id is currently open on this connection.
func (c *Connection) HasStream(id uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.streams[id]
	return ok
}
