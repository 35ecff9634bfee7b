package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
)

// WSHandler streams live submission events to the admin dashboard over a
// websocket.
type WSHandler struct {
	feed     *app.Feed
	auth     *Auth
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(feed *app.Feed, auth *Auth, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		feed: feed,
		auth: auth,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/feed", h.auth.RequireAdmin(h.ServeWS))
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the connection and relays submission events until the
// client disconnects. The single writer goroutine owns all writes to the
// connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})
	readerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	// drain inbound frames so pings and close handshakes get processed
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send <- outboundMessage{Type: "connected", Payload: map[string]time.Time{"at": time.Now().UTC()}}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				close(send)
				<-writerDone
				return
			}
			select {
			case send <- outboundMessage{Type: "submission", Payload: event}:
			case <-writerDone:
				return
			case <-readerDone:
				close(send)
				<-writerDone
				return
			}
		case <-writerDone:
			return
		case <-readerDone:
			close(send)
			<-writerDone
			return
		}
	}
}
