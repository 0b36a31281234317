package http2

import (
	"bytes"
	"testing"
)

func TestParseFrameHeader(t *testing.T) {
	tests := []struct {
		name  string
		input [9]byte
		want  FrameHeader
	}{
		{
			name:  "HEADERS frame with priority",
			input: [9]byte{0x00, 0x00, 0x14, 0x01, 0x25, 0x00, 0x00, 0x00, 0x03},
			want: FrameHeader{
				Length:   20,
				Type:     FrameHeaders,
				Flags:    FlagHeadersPriority | 0x05,
				StreamID: 3,
			},
		},
		{
			name:  "PRIORITY frame",
			input: [9]byte{0x00, 0x00, 0x05, 0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
			want: FrameHeader{
				Length:   5,
				Type:     FramePriority,
				StreamID: 1,
			},
		},
		{
			name:  "other frame type",
			input: [9]byte{0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: FrameHeader{
				Type: FrameType(0x06),
			},
		},
		{
			name:  "reserved bit of stream id is ignored",
			input: [9]byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x80, 0x00, 0x00, 0x01},
			want: FrameHeader{
				Type:     FramePriority,
				StreamID: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFrameHeader(tt.input)
			if got != tt.want {
				t.Errorf("ParseFrameHeader() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		t    FrameType
		want string
	}{
		{FrameHeaders, "HEADERS"},
		{FramePriority, "PRIORITY"},
		{FrameType(0x09), "OTHER"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFlagsHas(t *testing.T) {
	f := FlagHeadersPriority | 0x04
	if !f.Has(FlagHeadersPriority) {
		t.Error("expected FlagHeadersPriority set")
	}
	if f.Has(0x08) {
		t.Error("did not expect 0x08 set")
	}
}

func TestParsePriorityParam(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    PriorityParam
		rest    []byte
		wantErr bool
	}{
		{
			name:    "non-exclusive",
			payload: []byte{0x00, 0x00, 0x00, 0x05, 0x0f},
			want:    PriorityParam{StreamDependency: 5, Weight: 15, Exclusive: false},
			rest:    []byte{},
		},
		{
			name:    "exclusive",
			payload: []byte{0x80, 0x00, 0x00, 0x03, 0xff},
			want:    PriorityParam{StreamDependency: 3, Weight: 255, Exclusive: true},
			rest:    []byte{},
		},
		{
			name:    "headers frame payload has header block trailing",
			payload: []byte{0x00, 0x00, 0x00, 0x01, 0x0f, 0xde, 0xad},
			want:    PriorityParam{StreamDependency: 1, Weight: 15},
			rest:    []byte{0xde, 0xad},
		},
		{
			name:    "too short",
			payload: []byte{0x00, 0x00, 0x00, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, err := ParsePriorityParam(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePriorityParam() = %+v, want %+v", got, tt.want)
			}
			if !bytes.Equal(rest, tt.rest) {
				t.Errorf("rest = %v, want %v", rest, tt.rest)
			}
		})
	}
}

func TestPriorityParamDecodedWeight(t *testing.T) {
	tests := []struct {
		wire    uint8
		decoded int
	}{
		{0, 1},
		{15, 16},
		{255, 256},
	}
	for _, tt := range tests {
		p := PriorityParam{Weight: tt.wire}
		if got := p.DecodedWeight(); got != tt.decoded {
			t.Errorf("DecodedWeight() for wire %d = %d, want %d", tt.wire, got, tt.decoded)
		}
	}
}
