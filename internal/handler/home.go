package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/logger"
	"social-blog/internal/middleware"
)

// Home shows the feed dashboard to members and the registration screen to
// everyone else.
func (h *Handler) Home(c *gin.Context) {
	authCtx := middleware.Auth(c)

	if !authCtx.Authenticated() {
		h.render(c, http.StatusOK, "home-guest.html", nil)
		return
	}

	feed, err := h.posts.Feed(c.Request.Context(), authCtx.VisitorID)
	if err != nil {
		logger.Error("failed to load feed", map[string]any{
			"error": err.Error(),
		})
		feed = nil
	}

	h.render(c, http.StatusOK, "home-dashboard.html", gin.H{
		"posts": feed,
	})
}

// ChatScreen renders the chat page; the page itself opens the realtime
// connection.
func (h *Handler) ChatScreen(c *gin.Context) {
	h.render(c, http.StatusOK, "chat.html", nil)
}
