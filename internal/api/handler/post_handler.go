package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plumekit/plume/internal/service"
)

type postForm struct {
	Text      string `form:"text"`
	GroupSlug string `form:"group"`
}

// NewPostForm renders the empty post form with the group choices.
func (h *Handler) NewPostForm(c *gin.Context) {
	h.postForm(c, gin.H{"Title": "New post"})
}

// CreatePost handles the form submit. A validation failure re-renders
// the form with the error and persists nothing.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	v, _ := h.viewer(c)

	var form postForm
	_ = c.ShouldBind(&form)
	imageRef, err := h.saveImage(c)
	if err != nil {
		h.postForm(c, gin.H{"Title": "New post", "Error": "could not store image", "Text": form.Text})
		return
	}

	_, err = h.posts.Create(ctx, v.ID, service.PostInput{
		Text:      form.Text,
		GroupSlug: form.GroupSlug,
		Image:     imageRef,
	})
	switch {
	case errors.Is(err, service.ErrEmptyText):
		h.postForm(c, gin.H{"Title": "New post", "Error": "Text must not be empty", "Text": form.Text})
	case errors.Is(err, service.ErrNotFound):
		h.postForm(c, gin.H{"Title": "New post", "Error": "Unknown group", "Text": form.Text})
	case err != nil:
		h.serverError(c, err)
	default:
		// Note: the index cache is deliberately NOT cleared here; the
		// new post appears when the entry expires.
		c.Redirect(http.StatusFound, "/")
	}
}

// EditPostForm shows the edit form, author-only. A non-author viewer is
// redirected to the read-only post page instead of seeing an error.
func (h *Handler) EditPostForm(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := postID(c)
	if !ok {
		h.notFound(c)
		return
	}
	username := c.Param("username")
	res, err := h.feeds.SinglePost(ctx, id, username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	if res.RedirectUsername != "" {
		// Edit URLs do not canonicalize; a wrong username is a dead link.
		h.notFound(c)
		return
	}
	v, _ := h.viewer(c)
	if v.ID != res.Post.Post.AuthorID {
		c.Redirect(http.StatusFound, postURL(username, id))
		return
	}
	groupSlug := ""
	if res.Post.Post.Group != nil {
		groupSlug = res.Post.Post.Group.Slug
	}
	h.postForm(c, gin.H{
		"Title":     "Edit post",
		"Text":      res.Post.Post.Text,
		"GroupSlug": groupSlug,
		"Editing":   true,
	})
}

func (h *Handler) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := postID(c)
	if !ok {
		h.notFound(c)
		return
	}
	username := c.Param("username")
	v, _ := h.viewer(c)

	var form postForm
	_ = c.ShouldBind(&form)
	imageRef, err := h.saveImage(c)
	if err != nil {
		h.postForm(c, gin.H{"Title": "Edit post", "Error": "could not store image", "Text": form.Text, "Editing": true})
		return
	}

	outcome, err := h.posts.Edit(ctx, v.ID, username, id, service.PostInput{
		Text:      form.Text,
		GroupSlug: form.GroupSlug,
		Image:     imageRef,
	})
	switch {
	case errors.Is(err, service.ErrEmptyText):
		h.postForm(c, gin.H{"Title": "Edit post", "Error": "Text must not be empty", "Text": form.Text, "Editing": true})
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case err != nil:
		h.serverError(c, err)
	case outcome.RedirectToView:
		c.Redirect(http.StatusFound, postURL(username, id))
	default:
		c.Redirect(http.StatusFound, postURL(username, id))
	}
}

// postForm renders new.html with the group choices merged in.
func (h *Handler) postForm(c *gin.Context, data gin.H) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	data["Groups"] = groups
	// The template prints these unconditionally; default them so a
	// fresh form doesn't render "<no value>".
	for _, key := range []string{"Text", "GroupSlug"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	// Validation failures re-render as 200 with the error inline.
	h.page(c, http.StatusOK, "new.html", data)
}

// saveImage stores an optional multipart image under the media dir and
// returns its reference ("" when the form had no file).
func (h *Handler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil // no file attached
	}
	return h.storeUpload(c, file)
}

func (h *Handler) storeUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ref := filepath.Join("posts", uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.mediaDir, ref)); err != nil {
		return "", err
	}
	return ref, nil
}
