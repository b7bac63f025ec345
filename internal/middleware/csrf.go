package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/logger"
	"social-blog/internal/session"
)

// ForgeryError is the flash message a rejected submission produces.
const ForgeryError = "Cross site request forgery detected."

// VerifyCSRF binds a forgery token to the session and checks it on every
// state-changing request. A mismatch queues a flash error and redirects
// home; the route handler never runs.
func (p *Pipeline) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session(c)

		// Make sure a token exists for the upcoming render. New tokens
		// have to reach the store before the form that embeds them.
		if sess.CSRFToken == "" {
			token, err := session.GenerateID()
			if err != nil {
				logger.Error("failed to generate csrf token", map[string]any{
					"error": err.Error(),
				})
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			sess.CSRFToken = token
			if err := p.Save(c); err != nil {
				logger.Error("failed to persist csrf token", map[string]any{
					"error": err.Error(),
				})
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		submitted := c.PostForm("_csrf")
		if submitted == "" {
			submitted = c.GetHeader("X-CSRF-Token")
		}

		if subtle.ConstantTimeCompare([]byte(submitted), []byte(sess.CSRFToken)) != 1 {
			sess.AddError(ForgeryError)
			if err := p.Save(c); err != nil {
				logger.Error("failed to persist flash state", map[string]any{
					"error": err.Error(),
				})
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}
