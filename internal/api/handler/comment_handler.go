package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumekit/plume/internal/service"
)

// AddComment appends a comment and returns to the post page. An empty
// comment re-renders the comment form; a vanished post is a 404.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := postID(c)
	if !ok {
		h.notFound(c)
		return
	}
	v, _ := h.viewer(c)
	text := c.PostForm("text")

	_, err := h.comments.Add(ctx, v.ID, id, text)
	switch {
	case errors.Is(err, service.ErrEmptyText):
		h.page(c, http.StatusOK, "comment.html", gin.H{
			"Title": "Add comment",
			"Error": "Text must not be empty",
		})
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case err != nil:
		h.serverError(c, err)
	default:
		c.Redirect(http.StatusFound, postURL(c.Param("username"), id))
	}
}
