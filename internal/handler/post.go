package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/middleware"
	"social-blog/internal/post"
	"social-blog/internal/sanitize"
	"social-blog/internal/validate"
)

func (h *Handler) ViewCreateScreen(c *gin.Context) {
	h.render(c, http.StatusOK, "create-post.html", nil)
}

func (h *Handler) CreatePost(c *gin.Context) {
	authCtx := middleware.Auth(c)

	id, err := h.posts.Create(
		c.Request.Context(),
		c.PostForm("title"),
		c.PostForm("body"),
		authCtx.VisitorID,
	)
	if err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			h.flashAndRedirect(c, "/create-post", verrs, nil)
			return
		}
		h.flashAndRedirect(c, "/create-post", []string{"Please try again later."}, nil)
		return
	}

	h.flashAndRedirect(c, "/post/"+id.String(), nil, []string{"New post successfully created."})
}

func (h *Handler) ViewSinglePost(c *gin.Context) {
	authCtx := middleware.Auth(c)

	view, err := h.posts.FindSingleByID(c.Request.Context(), c.Param("id"), authCtx.VisitorID)
	if err != nil {
		h.notFound(c)
		return
	}

	h.render(c, http.StatusOK, "single-post.html", gin.H{
		"post": view,
		// stored bodies are plain text; rendering applies markdown + the
		// rich-text allow-list
		"body": template.HTML(sanitize.Rich(view.Body)),
	})
}

func (h *Handler) ViewEditScreen(c *gin.Context) {
	authCtx := middleware.Auth(c)

	view, err := h.posts.FindSingleByID(c.Request.Context(), c.Param("id"), authCtx.VisitorID)
	if err != nil {
		h.notFound(c)
		return
	}
	if !view.IsVisitorOwner {
		h.flashAndRedirect(c, "/", []string{"You do not have permission to perform that action."}, nil)
		return
	}

	h.render(c, http.StatusOK, "edit-post.html", gin.H{
		"post": view,
	})
}

func (h *Handler) EditPost(c *gin.Context) {
	authCtx := middleware.Auth(c)
	id := c.Param("id")

	err := h.posts.Update(
		c.Request.Context(),
		id,
		c.PostForm("title"),
		c.PostForm("body"),
		authCtx.VisitorID,
	)

	var verrs validate.Errors
	switch {
	case err == nil:
		h.flashAndRedirect(c, "/post/"+id+"/edit", nil, []string{"Post successfully updated."})
	case errors.As(err, &verrs):
		h.flashAndRedirect(c, "/post/"+id+"/edit", verrs, nil)
	case errors.Is(err, post.ErrNotFound), errors.Is(err, post.ErrUnauthorized):
		h.flashAndRedirect(c, "/", []string{"You do not have permission to perform that action."}, nil)
	default:
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
	}
}

func (h *Handler) DeletePost(c *gin.Context) {
	authCtx := middleware.Auth(c)

	err := h.posts.Delete(c.Request.Context(), c.Param("id"), authCtx.VisitorID)

	switch {
	case err == nil:
		h.flashAndRedirect(c, "/profile/"+authCtx.User.Username, nil, []string{"Post successfully deleted."})
	case errors.Is(err, post.ErrNotFound), errors.Is(err, post.ErrUnauthorized):
		h.flashAndRedirect(c, "/", []string{"You do not have permission to perform that action."}, nil)
	default:
		h.flashAndRedirect(c, "/", []string{"Something went wrong when deleting your post."}, nil)
	}
}

// Search returns matching posts as JSON for the live search overlay.
func (h *Handler) Search(c *gin.Context) {
	views, err := h.posts.Search(c.Request.Context(), c.PostForm("searchTerm"))
	if err != nil {
		c.JSON(http.StatusOK, []post.View{})
		return
	}
	c.JSON(http.StatusOK, views)
}
