package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumekit/plume/internal/service"
)

// Follow creates the viewer→target edge and returns to the profile.
// Self-follows and repeats are silent no-ops inside the service.
func (h *Handler) Follow(c *gin.Context) {
	h.followAction(c, h.relations.Follow)
}

func (h *Handler) Unfollow(c *gin.Context) {
	h.followAction(c, h.relations.Unfollow)
}

func (h *Handler) followAction(c *gin.Context, action func(ctx context.Context, viewerID uint, target string) error) {
	v, _ := h.viewer(c)
	username := c.Param("username")
	if err := action(c.Request.Context(), v.ID, username); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+username+"/")
}
