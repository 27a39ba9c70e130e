package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/pagination"
	"github.com/plumekit/plume/internal/service"
)

// Index renders the global feed. The rendered page is cached per page
// number for a short TTL; within that window a hit returns the stored
// bytes verbatim, so a freshly created post stays invisible until
// expiry. The payload is viewer-agnostic, which is what makes a single
// shared cache entry per page sound.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	pageNum := pagination.ParsePage(c.Query("page"))
	key := cache.IndexKey(pageNum)

	if body, ok := h.viewCache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
		return
	}

	feed, err := h.feeds.Global(ctx, pageNum)
	if err != nil {
		h.serverError(c, err)
		return
	}
	body, err := h.renderer.Page("index.html", gin.H{
		"Title": "Latest posts",
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.viewCache.Set(ctx, key, body)
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *Handler) GroupFeed(c *gin.Context) {
	ctx := c.Request.Context()
	feed, err := h.feeds.Group(ctx, c.Param("slug"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, "group.html", gin.H{
		"Title": feed.Group.Title,
		"Group": feed.Group,
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	var viewerID uint
	if v, ok := h.viewer(c); ok {
		viewerID = v.ID
	}
	profile, err := h.feeds.Profile(ctx, c.Param("username"), viewerID, pagination.ParsePage(c.Query("page")))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, "profile.html", gin.H{
		"Title":   profile.User.Username,
		"Profile": profile,
		"Posts":   profile.Posts,
		"Page":    profile.Page,
	})
}

// FollowFeed shows posts from authors the viewer follows. The route is
// behind RequireViewer.
func (h *Handler) FollowFeed(c *gin.Context) {
	ctx := c.Request.Context()
	v, _ := h.viewer(c)
	feed, err := h.feeds.Followed(ctx, v.ID, pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, "follow.html", gin.H{
		"Title": "Your feed",
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

// PostView renders one post with its comments. A post reached under the
// wrong username redirects to its canonical URL rather than 404ing.
func (h *Handler) PostView(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := postID(c)
	if !ok {
		h.notFound(c)
		return
	}
	res, err := h.feeds.SinglePost(ctx, id, c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	if res.RedirectUsername != "" {
		c.Redirect(http.StatusFound, postURL(res.RedirectUsername, id))
		return
	}
	view := res.Post
	data := gin.H{
		"Title":    "Post by " + view.Post.Author.Username,
		"Post":     view.Post,
		"Comments": view.Comments,
		"Stats":    view,
	}
	if v, ok := h.viewer(c); ok {
		data["IsAuthor"] = v.ID == view.Post.AuthorID
	}
	h.page(c, http.StatusOK, "post.html", data)
}
