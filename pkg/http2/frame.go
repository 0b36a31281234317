package http2

import "encoding/binary"

// FrameType identifies the frame types this driver needs to recognise on
// the wire (RFC 7540 §4.1). DATA, SETTINGS, PING, GOAWAY, WINDOW_UPDATE,
// PUSH_PROMISE, CONTINUATION and RST_STREAM are handled by the frame
// dispatch loop this package does not implement (see package doc).
type FrameType uint8

const (
	FrameHeaders  FrameType = 0x1
	FramePriority FrameType = 0x2
)

// String returns the RFC 7540 §11.2 name of the frame type, or "OTHER" for
// any type this driver does not itself act on.
func (t FrameType) String() string {
	switch t {
	case FrameHeaders:
		return "HEADERS"
	case FramePriority:
		return "PRIORITY"
	default:
		return "OTHER"
	}
}

// Flags are the HEADERS frame flags this driver needs to decide whether a
// priority block is present (RFC 7540 §6.2).
type Flags uint8

const (
	FlagHeadersPriority Flags = 0x20
)

// Has reports whether flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// FrameHeader is the 9-byte header common to every HTTP/2 frame.
type FrameHeader struct {
	Length   uint32
	Type     FrameType
	Flags    Flags
	StreamID uint32
}

// ParseFrameHeader decodes a 9-byte HTTP/2 frame header. The driver uses it
// only to learn the frame's type and stream id well enough to decide
// whether to hand the payload to ParsePriorityParam; it performs no
// allocation.
func ParseFrameHeader(b [9]byte) FrameHeader {
	return FrameHeader{
		Length:   uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]),
		Type:     FrameType(b[3]),
		Flags:    Flags(b[4]),
		StreamID: binary.BigEndian.Uint32(b[5:9]) & 0x7fffffff,
	}
}

// priorityParamLen is the wire length of the E + Stream Dependency + Weight
// triple, whether it appears as the entire PRIORITY frame payload or as the
// leading 5 bytes of a HEADERS frame payload that carries FlagHeadersPriority.
const priorityParamLen = 5

// PriorityParam is the decoded form of the dependency/weight/exclusive
// triple carried by a PRIORITY frame, or by a HEADERS frame that sets
// FlagHeadersPriority (RFC 7540 §6.2, §6.3). Weight here is still the
// wire-encoded byte (0..255); callers add 1 before handing it to the
// priority tree, which works in the decoded range 1..256.
type PriorityParam struct {
	StreamDependency uint32
	Weight           uint8
	Exclusive        bool
}

// ParsePriorityParam decodes the 5-byte E/StreamDependency/Weight triple
// from the front of payload, returning the remainder (empty for a PRIORITY
// frame, the header block for a HEADERS frame).
func ParsePriorityParam(payload []byte) (PriorityParam, []byte, error) {
	if len(payload) < priorityParamLen {
		return PriorityParam{}, nil, ErrInvalidPriority
	}

	raw := binary.BigEndian.Uint32(payload[0:4])
	p := PriorityParam{
		Exclusive:        raw>>31 == 1,
		StreamDependency: raw & 0x7fffffff,
		Weight:           payload[4],
	}
	return p, payload[priorityParamLen:], nil
}

// DecodedWeight returns the decoded weight in 1..256 that pkg/priority
// expects, undoing the wire's weight-minus-one encoding.
func (p PriorityParam) DecodedWeight() int {
	return int(p.Weight) + 1
}
