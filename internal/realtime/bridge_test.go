package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-blog/internal/middleware"
	"social-blog/internal/session"
	"social-blog/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBridgeServer(t *testing.T, store session.Store) *httptest.Server {
	t.Helper()

	pipeline := middleware.NewPipeline(store)
	bridge := NewBridge()

	router := gin.New()
	router.GET("/ws", pipeline.AttachReadOnly(), bridge.Handler())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func seedUserSession(t *testing.T, store session.Store, sessionID, username, avatar string) {
	t.Helper()

	err := store.Save(context.Background(), &session.Session{
		SessionID: sessionID,
		User: &user.Summary{
			ID:        uuid.New(),
			Username:  username,
			AvatarURL: avatar,
		},
	})
	require.NoError(t, err)
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{}
	if sessionID != "" {
		header.Set("Cookie", session.CookieName+"="+sessionID)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func assertNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var ev Event
	err := conn.ReadJSON(&ev)
	require.Error(t, err, "expected no event, got %q", ev.Event)
}

func sendChat(t *testing.T, conn *websocket.Conn, message string) {
	t.Helper()

	payload, err := json.Marshal(chatInbound{Message: message})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Event{Event: "chatMessageFromBrowser", Data: payload}))
}

func TestAuthenticatedConnectionReceivesWelcomeOnce(t *testing.T) {
	store := session.NewMemoryStore()
	seedUserSession(t, store, "sid-alice", "alice", "A")
	srv := newBridgeServer(t, store)

	conn := dial(t, srv, "sid-alice")

	ev := readEvent(t, conn)
	assert.Equal(t, "welcome", ev.Event)

	var welcome welcomePayload
	require.NoError(t, json.Unmarshal(ev.Data, &welcome))
	assert.Equal(t, "alice", welcome.Username)
	assert.Equal(t, "A", welcome.Avatar)

	assertNoEvent(t, conn)
}

func TestAnonymousConnectionStaysOpenButInert(t *testing.T) {
	store := session.NewMemoryStore()
	seedUserSession(t, store, "sid-bob", "bob", "B")
	srv := newBridgeServer(t, store)

	anon := dial(t, srv, "")
	bob := dial(t, srv, "sid-bob")
	readEvent(t, bob) // bob's welcome

	// an anonymous chat attempt reaches nobody
	sendChat(t, anon, "<script>hi</script>")
	assertNoEvent(t, bob)

	// The connection stays open and keeps receiving broadcasts, and its
	// first inbound event is the chat relay, never a welcome.
	sendChat(t, bob, "hello there")
	ev := readEvent(t, anon)
	assert.Equal(t, "chatMessageFromServer", ev.Event)
}

func TestChatRelaySanitizesAndSkipsSender(t *testing.T) {
	store := session.NewMemoryStore()
	seedUserSession(t, store, "sid-alice", "alice", "A")
	seedUserSession(t, store, "sid-bob", "bob", "B")
	seedUserSession(t, store, "sid-carol", "carol", "C")
	srv := newBridgeServer(t, store)

	alice := dial(t, srv, "sid-alice")
	bob := dial(t, srv, "sid-bob")
	carol := dial(t, srv, "sid-carol")
	readEvent(t, alice)
	readEvent(t, bob)
	readEvent(t, carol)

	sendChat(t, alice, "<b>hello</b>")

	for _, peer := range []*websocket.Conn{bob, carol} {
		ev := readEvent(t, peer)
		assert.Equal(t, "chatMessageFromServer", ev.Event)

		var out chatOutbound
		require.NoError(t, json.Unmarshal(ev.Data, &out))
		assert.Equal(t, "hello", out.Message, "tags must be stripped")
		assert.Equal(t, "alice", out.Username)
		assert.Equal(t, "A", out.Avatar)
	}

	// the sender does not get their own message back
	assertNoEvent(t, alice)
}

func TestRelayUsesServerHeldIdentity(t *testing.T) {
	store := session.NewMemoryStore()
	seedUserSession(t, store, "sid-alice", "alice", "A")
	seedUserSession(t, store, "sid-bob", "bob", "B")
	srv := newBridgeServer(t, store)

	alice := dial(t, srv, "sid-alice")
	bob := dial(t, srv, "sid-bob")
	readEvent(t, alice)
	readEvent(t, bob)

	// a forged username in the payload is ignored; only "message" is read
	payload := []byte(`{"message": "hi", "username": "admin", "avatar": "X"}`)
	require.NoError(t, alice.WriteJSON(Event{Event: "chatMessageFromBrowser", Data: payload}))

	ev := readEvent(t, bob)
	var out chatOutbound
	require.NoError(t, json.Unmarshal(ev.Data, &out))
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, "A", out.Avatar)
}

func TestUnknownEventsAreIgnored(t *testing.T) {
	store := session.NewMemoryStore()
	seedUserSession(t, store, "sid-alice", "alice", "A")
	seedUserSession(t, store, "sid-bob", "bob", "B")
	srv := newBridgeServer(t, store)

	alice := dial(t, srv, "sid-alice")
	bob := dial(t, srv, "sid-bob")
	readEvent(t, alice)
	readEvent(t, bob)

	require.NoError(t, alice.WriteJSON(Event{Event: "somethingElse", Data: []byte(`{}`)}))
	assertNoEvent(t, bob)
}
