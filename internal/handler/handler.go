package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/follow"
	"social-blog/internal/logger"
	"social-blog/internal/middleware"
	"social-blog/internal/post"
	"social-blog/internal/user"
)

type Handler struct {
	pipeline  *middleware.Pipeline
	users     *user.Service
	posts     *post.Service
	follows   *follow.Service
	jwtSecret string
}

func NewHandler(
	pipeline *middleware.Pipeline,
	users *user.Service,
	posts *post.Service,
	follows *follow.Service,
	jwtSecret string,
) *Handler {
	return &Handler{
		pipeline:  pipeline,
		users:     users,
		posts:     posts,
		follows:   follows,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes wires the web routes onto a router group that already runs
// the session pipeline and CSRF verification.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Home)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/doesUsernameExist", h.DoesUsernameExist)
	r.POST("/doesEmailExist", h.DoesEmailExist)

	r.GET("/create-post", h.requireLogin, h.ViewCreateScreen)
	r.POST("/create-post", h.requireLogin, h.CreatePost)
	r.GET("/post/:id", h.ViewSinglePost)
	r.GET("/post/:id/edit", h.requireLogin, h.ViewEditScreen)
	r.POST("/post/:id/edit", h.requireLogin, h.EditPost)
	r.POST("/post/:id/delete", h.requireLogin, h.DeletePost)
	r.POST("/search", h.Search)

	r.GET("/profile/:username", h.ProfilePosts)
	r.GET("/profile/:username/followers", h.ProfileFollowers)
	r.GET("/profile/:username/following", h.ProfileFollowing)
	r.POST("/addFollow/:username", h.requireLogin, h.AddFollow)
	r.POST("/removeFollow/:username", h.requireLogin, h.RemoveFollow)

	r.GET("/chat", h.requireLogin, h.ChatScreen)
}

// requireLogin gates member-only routes. Anonymous visitors get a flash
// message and land back on the guest home screen.
func (h *Handler) requireLogin(c *gin.Context) {
	if middleware.Auth(c).Authenticated() {
		c.Next()
		return
	}

	sess := middleware.Session(c)
	sess.AddError("You must be logged in to perform that action.")
	if err := h.pipeline.Save(c); err != nil {
		logger.Error("failed to persist session", map[string]any{
			"error": err.Error(),
		})
	}
	c.Redirect(http.StatusFound, "/")
	c.Abort()
}

// render fills in the ambient template data every view expects: the current
// user, popped flash messages, and the forgery token.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	flash := middleware.Flash(c)
	data["user"] = middleware.Auth(c).User
	data["errors"] = flash.Errors
	data["success"] = flash.Success
	data["csrfToken"] = middleware.Session(c).CSRFToken

	c.HTML(status, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", nil)
}

// NotFound is the catch-all for unmatched routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.notFound(c)
}

// flashAndRedirect queues messages, waits for the session write, then
// redirects. The write must finish first or the next request could read
// stale flash state.
func (h *Handler) flashAndRedirect(c *gin.Context, target string, errors []string, success []string) {
	sess := middleware.Session(c)
	for _, msg := range errors {
		sess.AddError(msg)
	}
	for _, msg := range success {
		sess.AddSuccess(msg)
	}

	if err := h.pipeline.Save(c); err != nil {
		logger.Error("failed to persist session", map[string]any{
			"error": err.Error(),
		})
	}

	c.Redirect(http.StatusFound, target)
}
