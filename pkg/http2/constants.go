package http2

// ConnectionStreamID is the stream id reserved for connection-level frames;
// it never names an entry in the priority tree.
const ConnectionStreamID = 0

// MaxStreamID is the largest legal HTTP/2 stream id (2^31-1, RFC 7540 §5.1.1).
const MaxStreamID = 1<<31 - 1
