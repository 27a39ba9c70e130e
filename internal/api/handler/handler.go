package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plumekit/plume/internal/auth"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/service"
	"github.com/plumekit/plume/pkg/render"
)

// Handler owns the HTTP boundary: it resolves identity, maps service
// errors to pages and redirects, and renders. Core services never see
// HTTP.
type Handler struct {
	feeds     service.FeedService
	posts     service.PostService
	comments  service.CommentService
	relations service.RelationshipService
	accounts  *auth.Service
	tokens    *auth.TokenManager
	viewCache *cache.ViewCache
	renderer  *render.Renderer
	log       *zap.Logger
	mediaDir  string
}

func New(
	feeds service.FeedService,
	posts service.PostService,
	comments service.CommentService,
	relations service.RelationshipService,
	accounts *auth.Service,
	tokens *auth.TokenManager,
	viewCache *cache.ViewCache,
	renderer *render.Renderer,
	log *zap.Logger,
	mediaDir string,
) *Handler {
	return &Handler{
		feeds:     feeds,
		posts:     posts,
		comments:  comments,
		relations: relations,
		accounts:  accounts,
		tokens:    tokens,
		viewCache: viewCache,
		renderer:  renderer,
		log:       log,
		mediaDir:  mediaDir,
	}
}

// viewer returns the resolved identity; protected routes sit behind
// RequireViewer so ok is always true there.
func (h *Handler) viewer(c *gin.Context) (auth.Viewer, bool) {
	return auth.ViewerFrom(c)
}

func (h *Handler) page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, present := data["Viewer"]; !present {
		if v, ok := h.viewer(c); ok {
			data["Viewer"] = v
		}
	}
	body, err := h.renderer.Page(name, data)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

// NotFoundPage is the engine's NoRoute handler.
func (h *Handler) NotFoundPage(c *gin.Context) {
	h.notFound(c)
}

func (h *Handler) notFound(c *gin.Context) {
	h.page(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not found", "Path": c.Request.URL.Path})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, "internal server error")
	c.Abort()
}

// postID parses the :post_id segment; anything non-numeric can only be
// a dead URL.
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func postURL(username string, id uint) string {
	return "/" + username + "/" + strconv.FormatUint(uint64(id), 10) + "/"
}
