package streamchat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InboundFrame is the server -> client wire shape.
type InboundFrame struct {
	Message  string `json:"message"`
	IsStream bool   `json:"is_stream,omitempty"`
	IsStart  bool   `json:"is_start,omitempty"`
	IsEnd    bool   `json:"is_end,omitempty"`
	Username string `json:"username,omitempty"`
}

// HandshakeFrame is sent once after the transport opens, only with a token.
type HandshakeFrame struct {
	Token string `json:"token"`
}

// UserFrame carries a message authored locally.
type UserFrame struct {
	Text string `json:"text"`
}

// Frame is a decoded inbound frame: one of TerminalFrame, StreamStartFrame
// or StreamDeltaFrame.
type Frame interface {
	Sender() string
	kind() string
}

// TerminalFrame is a complete, non-streamed message.
type TerminalFrame struct {
	Message  string
	Username string
}

// StreamStartFrame opens a new streamed message.
type StreamStartFrame struct {
	Message  string
	Username string
}

// StreamDeltaFrame continues (and with End, finishes) the open streamed message.
// The backend sends the accumulated text so far, not a suffix.
type StreamDeltaFrame struct {
	Message  string
	Username string
	End      bool
}

func (f TerminalFrame) Sender() string    { return f.Username }
func (f StreamStartFrame) Sender() string { return f.Username }
func (f StreamDeltaFrame) Sender() string { return f.Username }

func (TerminalFrame) kind() string    { return "terminal" }
func (StreamStartFrame) kind() string { return "stream_start" }
func (StreamDeltaFrame) kind() string { return "stream_delta" }

// wireFrame keeps raw values so field types can be checked instead of
// silently zeroed.
type wireFrame struct {
	Message  json.RawMessage `json:"message"`
	IsStream json.RawMessage `json:"is_stream"`
	IsStart  json.RawMessage `json:"is_start"`
	IsEnd    json.RawMessage `json:"is_end"`
	Username json.RawMessage `json:"username"`
}

// DecodeFrame parses one transport message into a Frame.
// Malformed payloads return an ErrorProtocolDecode error.
func DecodeFrame(data []byte) (Frame, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, NewError(ErrorProtocolDecode, "frame is not a JSON object")
	}
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, WrapError(ErrorProtocolDecode, "unmarshal frame", err)
	}
	if isAbsent(w.Message) {
		return nil, NewError(ErrorProtocolDecode, "frame has no message")
	}

	var (
		in  InboundFrame
		err error
	)
	if err = decodeField("message", w.Message, &in.Message); err != nil {
		return nil, err
	}
	if err = decodeField("username", w.Username, &in.Username); err != nil {
		return nil, err
	}
	if err = decodeField("is_stream", w.IsStream, &in.IsStream); err != nil {
		return nil, err
	}
	if err = decodeField("is_start", w.IsStart, &in.IsStart); err != nil {
		return nil, err
	}
	if err = decodeField("is_end", w.IsEnd, &in.IsEnd); err != nil {
		return nil, err
	}
	return in.Frame(), nil
}

// Frame classifies the wire fields. is_start and is_end only matter when
// is_stream is set; is_start wins over is_end.
func (in InboundFrame) Frame() Frame {
	switch {
	case !in.IsStream:
		return TerminalFrame{Message: in.Message, Username: in.Username}
	case in.IsStart:
		return StreamStartFrame{Message: in.Message, Username: in.Username}
	default:
		return StreamDeltaFrame{Message: in.Message, Username: in.Username, End: in.IsEnd}
	}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeField[T string | bool](name string, raw json.RawMessage, dst *T) error {
	if isAbsent(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return WrapError(ErrorProtocolDecode, fmt.Sprintf("field %q has wrong type", name), err)
	}
	return nil
}
