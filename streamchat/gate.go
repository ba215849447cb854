package streamchat

import "strings"

// Send delivers text as a user frame. Blank text is ignored.
//
// Delivery is asynchronous. If the connection is still being established the
// send is retried every SendRetryDelay until it opens or fails. While
// reconnecting the message is dropped and only logged. Accepted messages are
// echoed into the transcript as AuthorSelf entries.
//
// The returned error only reports misuse: sending before Start or after Close.
// A Send racing with Close may return nil and still be dropped.
//
// Callbacks run on the event loop. Send called from one blocks while the
// event buffer (64 events) is full, and the loop cannot drain it meanwhile.
func (c *Client) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c.mu.Lock()
	started, closed := c.started, c.closed
	c.mu.Unlock()
	if closed {
		return NewError(ErrorClosed, "client closed")
	}
	if !started {
		return NewError(ErrorSendNotReady, "client not started")
	}
	if !c.post(func() { c.trySend(text) }) {
		return NewError(ErrorClosed, "client closed")
	}
	return nil
}

func (c *Client) trySend(text string) {
	if c.torn {
		c.metrics.sendDropped()
		c.logger.Debug("client closed, message dropped", map[string]any{"room": c.room})
		return
	}
	switch {
	case c.state == StateOpen:
		select {
		case c.live.writeCh <- UserFrame{Text: text}:
		default:
			c.metrics.sendDropped()
			c.logger.Error("write queue full, message dropped", map[string]any{"room": c.room, "queue": cap(c.live.writeCh)})
			return
		}
		c.metrics.sent()
		// Echo is optimistic: a later write failure does not remove it.
		c.msgs.Append(Entry{Content: text, Author: AuthorSelf})
		c.publish()
	case c.state.pending():
		c.logger.Debug("connection not ready, retrying send", map[string]any{
			"state": c.state.String(),
			"delay": c.cfg.SendRetryDelay.String(),
		})
		c.clock.AfterFunc(c.cfg.SendRetryDelay, func() {
			c.post(func() { c.trySend(text) })
		})
	default:
		c.metrics.sendDropped()
		c.logger.Error("connection not ready, message dropped", map[string]any{
			"room":  c.room,
			"state": c.state.String(),
			"error": ErrSendNotReady.Error(),
		})
	}
}
