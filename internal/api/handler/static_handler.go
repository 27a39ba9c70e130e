package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Static "about" pages, rendered straight from templates.

func (h *Handler) AboutAuthor(c *gin.Context) {
	h.page(c, http.StatusOK, "about_author.html", gin.H{"Title": "About the author"})
}

func (h *Handler) AboutTech(c *gin.Context) {
	h.page(c, http.StatusOK, "about_tech.html", gin.H{"Title": "About the tech"})
}
