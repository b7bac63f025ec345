package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/auth"
	"social-blog/internal/logger"
	"social-blog/internal/session"
)

const (
	sessionKey = "session"
	authKey    = "authContext"
	flashKey   = "flash"
)

// Pipeline owns the per-request stages that turn a session cookie into
// request state: session attach, flash extraction, and authorization
// context derivation, in that order.
type Pipeline struct {
	store session.Store
}

func NewPipeline(store session.Store) *Pipeline {
	return &Pipeline{store: store}
}

// Attach runs the session stages for every request. A cookie that fails to
// resolve, for whatever reason, degrades to an anonymous session rather
// than failing the request.
func (p *Pipeline) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := p.resolve(c)

		// Flash messages are read-once: pop them for this render cycle
		// and persist the cleared state so a reload sees nothing.
		flash := sess.PopFlash()
		if !flash.Empty() {
			if err := p.store.Save(c.Request.Context(), sess); err != nil {
				logger.Error("failed to clear flash state", map[string]any{
					"error": err.Error(),
				})
			}
		}

		c.Set(sessionKey, sess)
		c.Set(flashKey, flash)
		c.Set(authKey, auth.FromSession(sess))

		c.Next()
	}
}

// AttachReadOnly resolves the session and authorization context without
// consuming flash state. WebSocket handshakes use it so a socket connect
// never swallows messages queued for the next page render.
func (p *Pipeline) AttachReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := p.resolve(c)

		c.Set(sessionKey, sess)
		c.Set(authKey, auth.FromSession(sess))

		c.Next()
	}
}

func (p *Pipeline) resolve(c *gin.Context) *session.Session {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return &session.Session{}
	}

	sess, err := p.store.Get(c.Request.Context(), cookie.Value)
	if err != nil {
		logger.Warn("session resolution failed", map[string]any{
			"error": err.Error(),
		})
		return &session.Session{}
	}
	if sess == nil {
		// expired or unknown cookie
		return &session.Session{}
	}

	return sess
}

// Save persists the request's session, minting an ID and issuing the cookie
// on first write. Callers must let it finish before redirecting on state
// that it wrote.
func (p *Pipeline) Save(c *gin.Context) error {
	sess := Session(c)

	if sess.SessionID == "" {
		id, err := session.GenerateID()
		if err != nil {
			return err
		}
		sess.SessionID = id
	}

	if err := p.store.Save(c.Request.Context(), sess); err != nil {
		return err
	}

	session.SetCookie(c.Writer, sess.SessionID, sess.ExpiresAt, session.CookieOptions{
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy deletes the session server-side and clears the cookie.
func (p *Pipeline) Destroy(c *gin.Context) {
	sess := Session(c)
	if sess.SessionID != "" {
		if err := p.store.Delete(c.Request.Context(), sess.SessionID); err != nil {
			logger.Warn("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	session.ClearCookie(c.Writer, session.CookieOptions{
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(sessionKey, &session.Session{})
	c.Set(authKey, auth.Context{})
}

// Session returns the request's session. Attach must have run.
func Session(c *gin.Context) *session.Session {
	if s, ok := c.Get(sessionKey); ok {
		return s.(*session.Session)
	}
	return &session.Session{}
}

// Auth returns the request's authorization context.
func Auth(c *gin.Context) auth.Context {
	if a, ok := c.Get(authKey); ok {
		return a.(auth.Context)
	}
	return auth.Context{}
}

// Flash returns the messages popped for this request.
func Flash(c *gin.Context) session.Flash {
	if f, ok := c.Get(flashKey); ok {
		return f.(session.Flash)
	}
	return session.Flash{}
}
