package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Feed broadcasts contract event lines to websocket subscribers. It doubles
// as the node's event sink: Emit fans each line out to every connected
// client, dropping clients whose buffers are full rather than blocking the
// contract call.
type Feed struct {
	log      *logrus.Entry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan string]struct{}

	onEmit   func()
	onClient func(delta int)
}

// NewFeed builds an empty feed. onEmit and onClient are metric hooks and may
// be nil.
func NewFeed(log *logrus.Logger, onEmit func(), onClient func(delta int)) *Feed {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if onEmit == nil {
		onEmit = func() {}
	}
	if onClient == nil {
		onClient = func(int) {}
	}
	return &Feed{
		log: log.WithField("component", "feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:  make(map[chan string]struct{}),
		onEmit:   onEmit,
		onClient: onClient,
	}
}

// Emit implements contract.EventSink.
func (f *Feed) Emit(line string) {
	f.onEmit()
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.clients {
		select {
		case ch <- line:
		default:
			// Slow consumer; disconnect instead of stalling the contract.
			close(ch)
			delete(f.clients, ch)
			f.onClient(-1)
		}
	}
}

// ServeHTTP upgrades the connection and streams event lines until the client
// goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	ch := make(chan string, 64)
	f.mu.Lock()
	f.clients[ch] = struct{}{}
	f.mu.Unlock()
	f.onClient(1)

	go f.drainReads(conn, ch)

	defer conn.Close()
	for line := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			f.remove(ch)
			return
		}
	}
}

// drainReads consumes control frames and tears the client down on read
// error.
func (f *Feed) drainReads(conn *websocket.Conn, ch chan string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.remove(ch)
			conn.Close()
			return
		}
	}
}

func (f *Feed) remove(ch chan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[ch]; ok {
		close(ch)
		delete(f.clients, ch)
		f.onClient(-1)
	}
}
