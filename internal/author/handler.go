package author

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookhub/internal/edition"
	"bookhub/pkg/apperr"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Editions *edition.Repo
}

func NewHandler(repo *Repo, editions *edition.Repo) *Handler {
	return &Handler{Repo: repo, Editions: editions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.getByID)
	rg.GET("/:id/works", h.works)
	rg.GET("/:id/editions", h.editions)
}

type createReq struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid json"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apperr.Respond(c, apperr.Validation("name is required"))
		return
	}

	a := models.Author{ID: strings.TrimSpace(req.ID), Name: strings.TrimSpace(req.Name)}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if err := h.Repo.Create(c.Request.Context(), a); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) list(c *gin.Context) {
	items, total, err := h.Repo.List(c.Request.Context(),
		c.Query("name"),
		parseInt(c.Query("limit"), 20),
		parseInt(c.Query("offset"), 0))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

func (h *Handler) getByID(c *gin.Context) {
	a, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if a == nil {
		apperr.Respond(c, apperr.NotFound("author not found"))
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) works(c *gin.Context) {
	id := c.Param("id")
	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if a == nil {
		apperr.Respond(c, apperr.NotFound("author not found"))
		return
	}

	works, err := h.Repo.Works(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": a, "works": works})
}

func (h *Handler) editions(c *gin.Context) {
	id := c.Param("id")
	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if a == nil {
		apperr.Respond(c, apperr.NotFound("author not found"))
		return
	}

	items, err := h.Editions.ListByAuthor(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": a, "editions": items})
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
