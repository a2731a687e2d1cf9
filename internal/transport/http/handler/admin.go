package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slide2pdf/internal/app"
	"slide2pdf/internal/transport/http/response"
)

type AdminHandler struct {
	historyService *app.HistoryService
}

func NewAdminHandler(historyService *app.HistoryService) *AdminHandler {
	return &AdminHandler{historyService: historyService}
}

func (h *AdminHandler) Records(c *gin.Context) {
	limit := 100
	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			limit = parsed
		}
	}

	records, err := h.historyService.Recent(limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "list records failed")
		return
	}

	response.OK(c, gin.H{"records": records})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.historyService.Stats()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "load stats failed")
		return
	}

	response.OK(c, gin.H{"stats": stats})
}
