package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/middleware"
	"social-blog/internal/user"
	"social-blog/internal/validate"
)

// Register creates an account and logs the new member straight in. All
// validation problems surface together as flash errors on the guest screen.
func (h *Handler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	u, err := h.users.Register(c.Request.Context(), username, email, password)
	if err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			h.flashAndRedirect(c, "/", verrs, nil)
			return
		}
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
		return
	}

	h.startSession(c, u)
}

// Login authenticates a returning member.
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := h.users.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			h.flashAndRedirect(c, "/", []string{"Invalid username/password."}, nil)
			return
		}
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
		return
	}

	h.startSession(c, u)
}

// startSession writes the identity projection into the session and waits
// for the write before redirecting, so the very next request observes the
// logged-in state.
func (h *Handler) startSession(c *gin.Context, u *user.User) {
	sess := middleware.Session(c)
	sess.User = u.Summary()

	if err := h.pipeline.Save(c); err != nil {
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	h.pipeline.Destroy(c)
	c.Redirect(http.StatusFound, "/")
}

// DoesUsernameExist backs the live validation on the registration form.
func (h *Handler) DoesUsernameExist(c *gin.Context) {
	exists, err := h.users.DoesUsernameExist(c.Request.Context(), c.PostForm("username"))
	if err != nil {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, exists)
}

func (h *Handler) DoesEmailExist(c *gin.Context) {
	exists, err := h.users.DoesEmailExist(c.Request.Context(), c.PostForm("email"))
	if err != nil {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, exists)
}
