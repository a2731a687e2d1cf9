package handler

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"slide2pdf/internal/model"
	"slide2pdf/internal/registry"
	"slide2pdf/internal/transport/http/response"
)

// ArtifactHandler serves registered artifacts exactly once. Claiming removes
// the registry entry up front, so a concurrent or repeated request 404s; the
// file itself is unlinked after the response is written.
type ArtifactHandler struct {
	registry registry.Registry
}

func NewArtifactHandler(reg registry.Registry) *ArtifactHandler {
	return &ArtifactHandler{registry: reg}
}

func (h *ArtifactHandler) Download(c *gin.Context) {
	art, ok := h.claim(c, model.ArtifactDownload)
	if !ok {
		return
	}
	defer removeArtifact(art.Path)

	c.FileAttachment(art.Path, art.DisplayName)
}

func (h *ArtifactHandler) Preview(c *gin.Context) {
	art, ok := h.claim(c, model.ArtifactPreview)
	if !ok {
		return
	}
	defer removeArtifact(art.Path)

	c.Header("Content-Type", art.ContentType)
	c.File(art.Path)
}

func (h *ArtifactHandler) claim(c *gin.Context, kind model.ArtifactKind) (*model.Artifact, bool) {
	id := c.Param("id")

	art, err := h.registry.Claim(c.Request.Context(), kind, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "not found or expired")
		} else {
			response.Fail(c, http.StatusInternalServerError, "artifact lookup failed")
		}
		return nil, false
	}

	if _, err := os.Stat(art.Path); err != nil {
		response.Fail(c, http.StatusNotFound, "not found or expired")
		return nil, false
	}
	return art, true
}

func removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove served artifact %s failed: %v", path, err)
	}
}
