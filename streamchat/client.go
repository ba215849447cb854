package streamchat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/streamchat-sdk-go/streamchat/internal"
)

// Client is one chat widget instance: a room, a transcript and the single
// live connection that feeds it.
//
// Every state change happens on one event loop goroutine. Reader, writer and
// dialer goroutines and timers only post events to it, so the transcript and
// the connection state need no locks.
type Client struct {
	cfg        Config
	logger     Logger
	tokens     TokenSource
	metrics    *Metrics
	dispatcher Dispatcher
	clock      clock
	dial       dialFunc

	room string

	mu      sync.Mutex
	started bool
	closed  bool

	events  chan func()
	done    chan struct{}
	drained chan struct{}

	// loopMu serializes post against the loop shutting down.
	loopMu sync.Mutex
	exited bool

	published atomic.Pointer[[]Entry]
	current   atomic.Int32

	// Owned by the event loop.
	state         ConnectionState
	torn          bool
	gen           uint64
	live          *session
	dialCancel    context.CancelFunc
	reconnectStop func() bool
	msgs          *MessageLog
	asm           Assembler
	closeWarn     rate.Sometimes
}

type dialFunc func(ctx context.Context, rawURL string, timeout time.Duration) (*websocket.Conn, error)

// clock schedules f after d and returns a stop function.
type clock interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// NewClient constructs a client with provided config and a fresh room identifier.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	c := &Client{
		cfg:       cfg,
		logger:    noopLogger{},
		clock:     realClock{},
		dial:      internal.Dial,
		room:      NewSessionID(),
		events:    make(chan func(), 64),
		done:      make(chan struct{}),
		drained:   make(chan struct{}),
		msgs:      NewMessageLog(),
		closeWarn: rate.Sometimes{First: 3, Interval: time.Minute},
	}
	c.asm = Assembler{SystemSender: cfg.SystemSender, OnOrphan: c.orphaned}
	empty := []Entry{}
	c.published.Store(&empty)
	return c
}

// SetLogger overrides logger (optional). Call before Start.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// SetTokenSource sets where connection attempts get their token. Call before Start.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// SetMetrics attaches Prometheus collectors. Call before Start.
func (c *Client) SetMetrics(m *Metrics) { c.metrics = m }

// OnLogChanged registers the render sink. It receives the full transcript
// after every change. Call before Start.
func (c *Client) OnLogChanged(fn func([]Entry)) { c.dispatcher.SetOnLogChanged(fn) }

// OnScroll registers the scroll-to-newest notification. Call before Start.
func (c *Client) OnScroll(fn func()) { c.dispatcher.SetOnScroll(fn) }

// OnStateChanged registers callback for connection state transitions. Call before Start.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.dispatcher.SetOnStateChanged(fn) }

// OnError registers callback for errors. None of them are fatal. Call before Start.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// RoomID returns the room identifier used for every connection of this client.
func (c *Client) RoomID() string { return c.room }

// State returns the current connection state.
func (c *Client) State() ConnectionState { return ConnectionState(c.current.Load()) }

// Messages returns a copy of the transcript.
func (c *Client) Messages() []Entry {
	p := c.published.Load()
	out := make([]Entry, len(*p))
	copy(out, *p)
	return out
}

// Start begins connecting and returns immediately. Connection problems are
// reported through OnError and OnStateChanged, never returned. The client is
// torn down when ctx is done.
func (c *Client) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorClosed, "client closed")
	}
	if c.started {
		c.mu.Unlock()
		return NewError(ErrorInvalidConfig, "already started")
	}
	c.started = true
	c.mu.Unlock()

	go c.run()
	c.post(c.connect)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()
	return nil
}

// Close tears the client down: the live transport is closed and pending
// reconnects and send retries become inert. Close is idempotent and must not
// be called from a callback.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	c.mu.Unlock()

	if !started {
		c.current.Store(int32(StateClosed))
		return nil
	}
	c.post(c.teardown)
	<-c.drained
	return nil
}

func (c *Client) run() {
	defer close(c.drained)
	for fn := range c.events {
		fn()
		if c.torn {
			break
		}
	}
	close(c.done)
	c.loopMu.Lock()
	c.exited = true
	c.loopMu.Unlock()

	// Events queued before exited was set still run, all of them see torn.
	for {
		select {
		case fn := <-c.events:
			fn()
		default:
			return
		}
	}
}

// post hands fn to the event loop. It reports false once the loop has exited;
// when it reports true, fn is guaranteed to run.
func (c *Client) post(fn func()) bool {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.exited {
		return false
	}
	select {
	case c.events <- fn:
		return true
	case <-c.done:
		return false
	}
}

// handleFrame decodes one transport message and folds it into the transcript.
func (c *Client) handleFrame(s *session, data []byte) {
	if c.live != s {
		return
	}
	f, err := DecodeFrame(data)
	if err != nil {
		c.metrics.frameDropped(dropMalformed)
		c.logger.Warn("dropping malformed frame", map[string]any{"error": err.Error(), "bytes": len(data)})
		c.dispatcher.fireError(err)
		return
	}
	c.metrics.frameReceived(f.kind())

	outcome, err := c.asm.Apply(c.msgs, f)
	if err != nil {
		c.logger.Error("transcript update rejected", map[string]any{"error": err.Error(), "kind": f.kind()})
		return
	}
	if outcome == Unchanged {
		c.metrics.frameDropped(dropNoOpenStream)
		c.logger.Debug("dropping stream delta without open stream", map[string]any{"sender": f.Sender()})
		return
	}
	c.publish()
}

func (c *Client) orphaned(e Entry) {
	c.metrics.orphan()
	c.logger.Warn("new stream started before previous one ended", map[string]any{
		"room":    c.room,
		"content": len(e.Content),
	})
}

// publish stores a snapshot for Messages and notifies the render sink.
func (c *Client) publish() {
	snapshot := c.msgs.Snapshot()
	c.published.Store(&snapshot)
	sink := make([]Entry, len(snapshot))
	copy(sink, snapshot)
	c.dispatcher.logChanged(sink)
}
