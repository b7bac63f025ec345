package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"social-blog/internal/auth"
	"social-blog/internal/logger"
	"social-blog/internal/middleware"
	"social-blog/internal/sanitize"
)

// Event is the frame format on the wire, both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type welcomePayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type chatInbound struct {
	Message string `json:"message"`
}

type chatOutbound struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *client) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Event{Event: event, Data: payload})
}

// Bridge relays chat events between connected peers. It performs no session
// derivation of its own: the request pipeline has already attached the same
// authorization context an HTTP request would get.
type Bridge struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

func NewBridge() *Bridge {
	return &Bridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]bool),
	}
}

// Handler upgrades the request and serves the connection until the peer
// goes away.
func (b *Bridge) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := middleware.Auth(c)

		conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response.
			logger.Warn("websocket upgrade failed", map[string]any{
				"error": err.Error(),
			})
			return
		}

		b.serve(conn, authCtx)
	}
}

func (b *Bridge) serve(conn *websocket.Conn, authCtx auth.Context) {
	cl := &client{conn: conn}

	b.mu.Lock()
	b.clients[cl] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, cl)
		b.mu.Unlock()
		_ = conn.Close()
	}()

	if authCtx.Authenticated() {
		err := cl.send("welcome", welcomePayload{
			Username: authCtx.User.Username,
			Avatar:   authCtx.User.AvatarURL,
		})
		if err != nil {
			return
		}
	}

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", map[string]any{
					"error": err.Error(),
				})
			}
			return
		}

		// Anonymous connections stay open but their events are dropped.
		if !authCtx.Authenticated() {
			continue
		}

		if ev.Event != "chatMessageFromBrowser" {
			continue
		}

		var in chatInbound
		if err := json.Unmarshal(ev.Data, &in); err != nil {
			continue
		}

		// Identity always comes from the server-held context, never from
		// the client payload.
		b.broadcast(cl, "chatMessageFromServer", chatOutbound{
			Message:  sanitize.Plain(in.Message),
			Username: authCtx.User.Username,
			Avatar:   authCtx.User.AvatarURL,
		})
	}
}

// broadcast sends the event to every connected peer except from. Delivery
// is best effort; a failed write drops only that peer's frame.
func (b *Bridge) broadcast(from *client, event string, data any) {
	b.mu.Lock()
	peers := make([]*client, 0, len(b.clients))
	for cl := range b.clients {
		if cl != from {
			peers = append(peers, cl)
		}
	}
	b.mu.Unlock()

	for _, cl := range peers {
		if err := cl.send(event, data); err != nil {
			logger.Warn("websocket broadcast failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
}
