package search

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/pkg/apperr"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/search", h.search)
	r.GET("/search/ingests", h.ingests)
}

func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	limit := parseInt(c.Query("limit"), 20)

	items, err := h.Service.Search(c.Request.Context(), q, limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": strings.TrimSpace(q),
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) ingests(c *gin.Context) {
	items, err := h.Service.Log.Recent(c.Request.Context(), parseInt(c.Query("limit"), 20))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
