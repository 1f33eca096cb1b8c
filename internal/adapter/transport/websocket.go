// Package transport streams frequency frames to remote viewers.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
)

const (
	// Path is where clients connect.
	Path = "/ws"

	queueSize    = 64
	writeTimeout = time.Second
)

// Frame is the JSON message sent for every snapshot.
type Frame struct {
	Time int64 `json:"t"`    // unix milliseconds
	Bins []int `json:"bins"` // magnitudes in [0,255]
}

// Broadcaster fans frequency snapshots out to websocket clients.
// It is a loop sink: OnData never blocks the frame; frames are dropped
// when clients fall behind.
//
// Thread-safety: This implementation is thread-safe.
type Broadcaster struct {
	clock    animation.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}

	frames chan Frame

	serverMu sync.Mutex
	server   *http.Server

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewBroadcaster creates a broadcaster and starts its send loop.
func NewBroadcaster(clock animation.Clock, logger *slog.Logger) *Broadcaster {
	if clock == nil {
		clock = animation.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Broadcaster{
		clock:  clock,
		logger: logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // viewers are served from anywhere
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
		frames:  make(chan Frame, queueSize),
		done:    make(chan struct{}),
	}

	b.wg.Add(1)
	go b.sendLoop()

	return b
}

// Handler returns an http.Handler serving the websocket endpoint at Path.
func (b *Broadcaster) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, b.handleWebSocket)
	return mux
}

// Serve accepts connections on ln until Close.
func (b *Broadcaster) Serve(ln net.Listener) error {
	b.serverMu.Lock()
	select {
	case <-b.done:
		b.serverMu.Unlock()
		ln.Close()
		return nil
	default:
	}
	if b.server != nil {
		b.serverMu.Unlock()
		return errors.New("broadcaster already serving")
	}
	srv := &http.Server{
		Handler:           b.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	b.server = srv
	b.serverMu.Unlock()

	b.logger.Info("websocket server listening", "addr", ln.Addr().String(), "path", Path)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until Close.
func (b *Broadcaster) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return b.Serve(ln)
}

// OnData queues the snapshot for all clients.
func (b *Broadcaster) OnData(snapshot domain.FrequencySnapshot) {
	if b.ClientCount() == 0 {
		return
	}

	frame := Frame{Time: b.clock.Now().UnixMilli(), Bins: make([]int, len(snapshot))}
	for i, v := range snapshot {
		frame.Bins[i] = int(v)
	}

	select {
	case <-b.done:
	case b.frames <- frame:
	default:
		// Queue full, drop the frame.
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-b.done:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.clientsMu.Lock()
	select {
	case <-b.done:
		b.clientsMu.Unlock()
		conn.Close()
		return
	default:
	}
	b.clients[conn] = struct{}{}
	total := len(b.clients)
	b.wg.Add(1)
	b.clientsMu.Unlock()
	b.logger.Info("client connected", "remote", conn.RemoteAddr().String(), "total", total)

	// Clients only listen; a read error means they went away.
	go func() {
		defer b.wg.Done()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.drop(conn)
				return
			}
		}
	}()
}

func (b *Broadcaster) sendLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case frame := <-b.frames:
			b.clientsMu.Lock()
			conns := make([]*websocket.Conn, 0, len(b.clients))
			for c := range b.clients {
				conns = append(conns, c)
			}
			b.clientsMu.Unlock()

			for _, c := range conns {
				_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.WriteJSON(frame); err != nil {
					b.logger.Debug("send failed, dropping client", "error", err)
					b.drop(c)
				}
			}
		}
	}
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.clientsMu.Lock()
	_, ok := b.clients[conn]
	delete(b.clients, conn)
	total := len(b.clients)
	b.clientsMu.Unlock()

	if ok {
		conn.Close()
		b.logger.Info("client disconnected", "total", total)
	}
}

// Close disconnects all clients, stops the server and waits for the
// broadcaster's goroutines to exit. Calling Close more than once is safe.
func (b *Broadcaster) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)

		b.serverMu.Lock()
		if b.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = b.server.Shutdown(ctx)
			cancel()
		}
		b.serverMu.Unlock()

		b.clientsMu.Lock()
		for c := range b.clients {
			c.Close()
		}
		b.clients = make(map[*websocket.Conn]struct{})
		b.clientsMu.Unlock()

		b.wg.Wait()
	})
	return err
}
