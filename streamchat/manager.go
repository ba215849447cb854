package streamchat

import (
	"context"
	"errors"
	"io"

	"github.com/coder/websocket"

	"github.com/vovakirdan/streamchat-sdk-go/streamchat/internal"
)

// session is one live transport. A new one is created for every connection attempt.
type session struct {
	gen     uint64
	conn    *internal.Conn
	writeCh chan any
	cancel  context.CancelFunc
}

// close runs the close handshake off the event loop; it can take seconds.
func (s *session) close(code websocket.StatusCode, reason string) {
	go func() {
		_ = s.conn.Close(code, reason)
		s.cancel()
	}()
}

// connect starts a new connection attempt: Idle/Reconnecting -> Connecting.
func (c *Client) connect() {
	c.gen++
	gen := c.gen
	token := tokenFrom(c.tokens)

	rawURL, err := c.cfg.roomURL(c.room, token)
	if err != nil {
		// Validate already accepted the base URL, so this does not happen in practice.
		c.logger.Error("build room url", map[string]any{"error": err.Error()})
		return
	}
	c.setState(StateConnecting, nil)
	c.logger.Info("connecting", map[string]any{
		"room":          c.room,
		"attempt":       gen,
		"authenticated": token != "",
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.dialCancel = cancel
	go func() {
		ws, err := c.dial(ctx, rawURL, c.cfg.HandshakeTimeout)
		posted := c.post(func() { c.handleDial(gen, ws, token, err) })
		if !posted && ws != nil {
			_ = ws.CloseNow()
		}
	}()
}

// handleDial moves Connecting -> AuthHandshake -> Open, or schedules a
// reconnect when the dial failed.
func (c *Client) handleDial(gen uint64, ws *websocket.Conn, token string, err error) {
	if gen != c.gen || c.torn {
		if ws != nil {
			_ = ws.CloseNow()
		}
		return
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	if err != nil {
		c.warnTransport("dial failed", err)
		c.disconnected(WrapError(ErrorTransport, "dial", err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		gen:     gen,
		conn:    internal.NewConn(ws, c.cfg.ReadLimit, c.cfg.ReadTimeout, c.cfg.WriteTimeout),
		writeCh: make(chan any, c.cfg.WriteQueueSize),
		cancel:  cancel,
	}
	c.live = s
	c.setState(StateAuthHandshake, nil)
	if token != "" {
		// The queue is empty, so the handshake is always the first frame written.
		s.writeCh <- HandshakeFrame{Token: token}
		c.logger.Debug("handshake queued", map[string]any{"room": c.room})
	}

	go c.readLoop(ctx, s)
	go c.writeLoop(ctx, s)

	c.setState(StateOpen, nil)
	c.logger.Info("connection open", map[string]any{"room": c.room, "attempt": gen})
}

func (c *Client) readLoop(ctx context.Context, s *session) {
	for {
		data, err := s.conn.Read(ctx)
		if err != nil {
			c.post(func() { c.sessionClosed(s, err) })
			return
		}
		c.post(func() { c.handleFrame(s, data) })
	}
}

func (c *Client) writeLoop(ctx context.Context, s *session) {
	for {
		select {
		case v := <-s.writeCh:
			if err := s.conn.Write(ctx, v); err != nil {
				c.post(func() { c.sessionClosed(s, err) })
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sessionClosed handles the first read or write failure of the live session.
// Later reports for the same session are ignored.
func (c *Client) sessionClosed(s *session, err error) {
	if c.torn || c.live != s {
		return
	}
	c.live = nil
	s.close(websocket.StatusGoingAway, "reconnecting")

	if isExpectedDisconnect(err) {
		c.logger.Info("connection closed", map[string]any{"room": c.room, "attempt": s.gen, "reason": err.Error()})
	} else {
		c.warnTransport("connection lost", err)
	}
	c.disconnected(WrapError(ErrorTransport, "connection lost", err))
}

// disconnected moves to Reconnecting and schedules exactly one reconnect.
func (c *Client) disconnected(err error) {
	if c.torn {
		return
	}
	c.setState(StateReconnecting, err)
	c.dispatcher.fireError(err)
	c.logger.Debug("reconnect scheduled", map[string]any{"room": c.room, "delay": c.cfg.ReconnectDelay.String()})

	gen := c.gen
	c.metrics.reconnect()
	c.reconnectStop = c.clock.AfterFunc(c.cfg.ReconnectDelay, func() {
		c.post(func() {
			if gen != c.gen || c.torn {
				return
			}
			c.reconnectStop = nil
			c.connect()
		})
	})
}

// warnTransport logs transport failures. An unreachable endpoint retries
// forever, so after the first few the warnings are rate limited.
func (c *Client) warnTransport(msg string, err error) {
	c.closeWarn.Do(func() {
		c.logger.Warn(msg, map[string]any{
			"room":  c.room,
			"error": err.Error(),
			"retry": c.cfg.ReconnectDelay.String(),
		})
	})
}

// teardown is the final transition. Bumping gen makes every pending timer and
// retry callback inert even if it was already queued.
func (c *Client) teardown() {
	if c.torn {
		return
	}
	c.torn = true
	c.gen++
	if c.reconnectStop != nil {
		c.reconnectStop()
		c.reconnectStop = nil
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	if c.live != nil {
		c.live.close(websocket.StatusNormalClosure, "client close")
		c.live = nil
	}
	c.setState(StateClosed, nil)
	c.logger.Info("client closed", map[string]any{"room": c.room})
}

func (c *Client) setState(s ConnectionState, err error) {
	old := c.state
	if old == s {
		return
	}
	c.state = s
	c.current.Store(int32(s))
	c.metrics.state(s)
	c.dispatcher.stateChanged(StateEvent{OldState: old, NewState: s, Error: err})
}

func isExpectedDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
