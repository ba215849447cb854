package internal

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// DefaultReadLimit caps a single inbound message. Streamed replies resend the
// accumulated text on every fragment, so this is well above the library default.
const DefaultReadLimit = 1 << 20

// Conn wraps websocket.Conn with timeouts.
type Conn struct {
	ws           *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Dial opens a websocket to rawURL. A positive timeout bounds the opening handshake.
func Dial(ctx context.Context, rawURL string, timeout time.Duration) (*websocket.Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ws, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// NewConn wraps ws. A message larger than readLimit closes the connection
// with StatusMessageTooBig.
func NewConn(ws *websocket.Conn, readLimit int64, readTimeout, writeTimeout time.Duration) *Conn {
	ws.SetReadLimit(readLimit)
	return &Conn{ws: ws, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// Read returns the payload of the next data message.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}
	_, data, err := c.ws.Read(ctx)
	return data, err
}

func (c *Conn) Write(ctx context.Context, v any) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, v)
}

func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
