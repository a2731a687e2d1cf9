package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"slide2pdf/internal/app"
	"slide2pdf/internal/transport/http/response"
)

type ConvertHandler struct {
	convertService *app.ConvertService
}

func NewConvertHandler(convertService *app.ConvertService) *ConvertHandler {
	return &ConvertHandler{convertService: convertService}
}

// Convert accepts a multipart form with one or more "file" entries and
// returns a one-time download link for the converted result.
func (h *ConvertHandler) Convert(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := form.File["file"]

	result, err := h.convertService.ConvertAll(c.Request.Context(), files)
	if err != nil {
		failConvert(c, err)
		return
	}

	response.OK(c, gin.H{
		"downloadUrl": "/download/" + result.ArtifactID,
		"filename":    result.Filename,
	})
}

// Preview renders the first slide of a single upload to PNG and returns a
// one-time preview URL.
func (h *ConvertHandler) Preview(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "missing file (form field 'file')")
		return
	}

	result, err := h.convertService.PreviewPNG(c.Request.Context(), file)
	if err != nil {
		failConvert(c, err)
		return
	}

	response.OK(c, gin.H{
		"previewUrl": "/preview/" + result.ArtifactID,
	})
}

// PreviewPDF converts a single upload and streams the PDF bytes back
// directly, registering nothing.
func (h *ConvertHandler) PreviewPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "missing file (form field 'file')")
		return
	}

	pdfBytes, err := h.convertService.PreviewPDF(c.Request.Context(), file)
	if err != nil {
		failConvert(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func failConvert(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrNoFiles),
		errors.Is(err, app.ErrBadExtension),
		errors.Is(err, app.ErrTooManyFiles),
		errors.Is(err, app.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrConvertTimeout):
		response.Fail(c, http.StatusInternalServerError, "conversion timed out")
	case errors.Is(err, app.ErrNoOutput):
		response.Fail(c, http.StatusInternalServerError, "conversion produced no output")
	case errors.Is(err, app.ErrArchive):
		response.Fail(c, http.StatusInternalServerError, "building archive failed")
	default:
		response.Fail(c, http.StatusInternalServerError, "conversion failed")
	}
}
