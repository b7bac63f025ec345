package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-blog/internal/logger"
	"social-blog/internal/middleware"
	"social-blog/internal/user"
	"social-blog/internal/validate"
)

// profileData gathers everything the profile header needs: the profile
// owner, counts, and the visitor's relationship to them.
func (h *Handler) profileData(c *gin.Context) (*user.Summary, gin.H, bool) {
	authCtx := middleware.Auth(c)

	profile, err := h.users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			logger.Error("profile lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		h.notFound(c)
		return nil, nil, false
	}

	ctx := c.Request.Context()

	isFollowing, err := h.follows.IsVisitorFollowing(ctx, profile.ID, authCtx.VisitorID)
	if err != nil {
		logger.Error("follow lookup failed", map[string]any{"error": err.Error()})
	}
	postCount, err := h.posts.CountByAuthor(ctx, profile.ID)
	if err != nil {
		logger.Error("post count failed", map[string]any{"error": err.Error()})
	}
	followerCount, err := h.follows.CountFollowers(ctx, profile.ID)
	if err != nil {
		logger.Error("follower count failed", map[string]any{"error": err.Error()})
	}
	followingCount, err := h.follows.CountFollowing(ctx, profile.ID)
	if err != nil {
		logger.Error("following count failed", map[string]any{"error": err.Error()})
	}

	data := gin.H{
		"profileUsername":  profile.Username,
		"profileAvatar":    profile.AvatarURL,
		"isFollowing":      isFollowing,
		"isVisitorProfile": authCtx.VisitorID == profile.ID,
		"postCount":        postCount,
		"followerCount":    followerCount,
		"followingCount":   followingCount,
	}
	return profile, data, true
}

func (h *Handler) ProfilePosts(c *gin.Context) {
	profile, data, ok := h.profileData(c)
	if !ok {
		return
	}

	posts, err := h.posts.FindByAuthorID(c.Request.Context(), profile.ID)
	if err != nil {
		h.notFound(c)
		return
	}

	data["currentPage"] = "posts"
	data["posts"] = posts
	h.render(c, http.StatusOK, "profile.html", data)
}

func (h *Handler) ProfileFollowers(c *gin.Context) {
	profile, data, ok := h.profileData(c)
	if !ok {
		return
	}

	followers, err := h.follows.Followers(c.Request.Context(), profile.ID)
	if err != nil {
		h.notFound(c)
		return
	}

	data["currentPage"] = "followers"
	data["follows"] = followers
	h.render(c, http.StatusOK, "profile-follows.html", data)
}

func (h *Handler) ProfileFollowing(c *gin.Context) {
	profile, data, ok := h.profileData(c)
	if !ok {
		return
	}

	following, err := h.follows.Following(c.Request.Context(), profile.ID)
	if err != nil {
		h.notFound(c)
		return
	}

	data["currentPage"] = "following"
	data["follows"] = following
	h.render(c, http.StatusOK, "profile-follows.html", data)
}

func (h *Handler) AddFollow(c *gin.Context) {
	authCtx := middleware.Auth(c)
	username := c.Param("username")

	err := h.follows.Create(c.Request.Context(), username, authCtx.VisitorID)
	if err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			h.flashAndRedirect(c, "/", verrs, nil)
			return
		}
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
		return
	}

	h.flashAndRedirect(c, "/profile/"+username, nil, []string{"Successfully followed " + username + "."})
}

func (h *Handler) RemoveFollow(c *gin.Context) {
	authCtx := middleware.Auth(c)
	username := c.Param("username")

	err := h.follows.Delete(c.Request.Context(), username, authCtx.VisitorID)
	if err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			h.flashAndRedirect(c, "/", verrs, nil)
			return
		}
		h.flashAndRedirect(c, "/", []string{"Please try again later."}, nil)
		return
	}

	h.flashAndRedirect(c, "/profile/"+username, nil, []string{"Successfully stopped following " + username + "."})
}
