package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"social-blog/internal/middleware"
	"social-blog/internal/post"
	"social-blog/internal/user"
	"social-blog/internal/validate"
)

// RegisterAPIRoutes wires the token-authenticated JSON API. These routes
// bypass sessions and CSRF entirely; the signed token is the whole
// credential.
func (h *Handler) RegisterAPIRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.APILogin)
	r.GET("/postsByAuthor/:username", h.APIPostsByAuthor)

	authed := r.Group("/")
	authed.Use(middleware.RequireToken(h.jwtSecret))
	authed.POST("/create-post", h.APICreatePost)
	authed.DELETE("/post/:id", h.APIDeletePost)
}

type apiLoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *Handler) APILogin(c *gin.Context) {
	var req apiLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sorry, your values are not correct."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later."})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(7 * 24 * time.Hour)),
	})

	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}

type apiCreateRequest struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body" form:"body"`
}

func (h *Handler) APICreatePost(c *gin.Context) {
	userID, ok := middleware.APIUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sorry, you must provide a valid token."})
		return
	}

	var req apiCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.posts.Create(c.Request.Context(), req.Title, req.Body, userID)
	if err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string(verrs)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Congrats."})
}

func (h *Handler) APIDeletePost(c *gin.Context) {
	userID, ok := middleware.APIUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sorry, you must provide a valid token."})
		return
	}

	err := h.posts.Delete(c.Request.Context(), c.Param("id"), userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, "Post successfully deleted.")
	case errors.Is(err, post.ErrNotFound), errors.Is(err, post.ErrUnauthorized):
		c.JSON(http.StatusForbidden, "You do not have permission to perform that action.")
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later."})
	}
}

func (h *Handler) APIPostsByAuthor(c *gin.Context) {
	author, err := h.users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, "Sorry, invalid user requested.")
		return
	}

	posts, err := h.posts.FindByAuthorID(c.Request.Context(), author.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later."})
		return
	}

	c.JSON(http.StatusOK, posts)
}
