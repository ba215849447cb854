package streamchat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeClock records timers and fires them only when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// pending counts live timers scheduled with delay d.
func (c *fakeClock) pending(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.d == d && !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs live timers with delay d. With force, stopped timers run too,
// as if Stop raced with expiry.
func (c *fakeClock) fire(d time.Duration, force bool) int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if t.d != d || t.fired || (t.stopped && !force) {
			continue
		}
		t.fired = true
		due = append(due, t)
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// testServer accepts websocket connections and records what clients send.
type testServer struct {
	*httptest.Server
	conns chan *serverConn

	mu  sync.Mutex
	all []*serverConn
}

type serverConn struct {
	ws       *websocket.Conn
	path     string
	token    string
	hasToken bool
	received chan string
	gone     chan struct{} // closed once the server side read fails
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{conns: make(chan *serverConn, 8)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		q := r.URL.Query()
		sc := &serverConn{
			ws:       ws,
			path:     r.URL.Path,
			token:    q.Get("token"),
			hasToken: q.Has("token"),
			received: make(chan string, 16),
			gone:     make(chan struct{}),
		}
		ts.mu.Lock()
		ts.all = append(ts.all, sc)
		ts.mu.Unlock()
		ts.conns <- sc
		defer close(sc.gone)
		for {
			_, data, err := ws.Read(context.Background())
			if err != nil {
				return
			}
			sc.received <- string(data)
		}
	}))
	t.Cleanup(func() {
		ts.mu.Lock()
		for _, sc := range ts.all {
			_ = sc.ws.CloseNow()
		}
		ts.mu.Unlock()
		ts.Close()
	})
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) accept(t *testing.T) *serverConn {
	t.Helper()
	select {
	case sc := <-ts.conns:
		return sc
	case <-time.After(waitFor):
		t.Fatal("no connection accepted")
		return nil
	}
}

func (sc *serverConn) next(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-sc.received:
		return msg
	case <-time.After(waitFor):
		t.Fatal("no frame received")
		return ""
	}
}

func (sc *serverConn) send(t *testing.T, raw string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, sc.ws.Write(ctx, websocket.MessageText, []byte(raw)))
}

// newTestClient returns an unstarted client pointed at ts with a fake clock.
func newTestClient(t *testing.T, ts *testServer) (*Client, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = ts.wsURL()
	c := NewClient(cfg)
	clk := &fakeClock{}
	c.clock = clk
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

func waitState(t *testing.T, c *Client, want ConnectionState) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, waitFor, tick, "never reached %s", want)
}
