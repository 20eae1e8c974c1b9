package work

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/edition"
	"bookhub/internal/events"
	"bookhub/pkg/apperr"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Editions *edition.Repo
	Hub      *events.Hub
}

func NewHandler(repo *Repo, editions *edition.Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Editions: editions, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.upsert)
	rg.GET("/:id", h.getByID)
	rg.PUT("/:id", h.upsert)
	rg.DELETE("/:id", h.remove)
	rg.GET("/:id/editions", h.editions)
}

// RegisterLinkRoute mounts POST /work-authors.
func (h *Handler) RegisterLinkRoute(r gin.IRoutes) {
	r.POST("/work-authors", h.link)
}

type workReq struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

func (h *Handler) upsert(c *gin.Context) {
	var req workReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid json"))
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(c.Param("id"))
	}
	if id == "" {
		apperr.Respond(c, apperr.Validation("id is required"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		apperr.Respond(c, apperr.Validation("title is required"))
		return
	}

	created, err := h.Repo.Upsert(c.Request.Context(), models.Work{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	w, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	h.Hub.Publish(events.Event{Type: "work.update", WorkID: id})

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, w)
}

func (h *Handler) list(c *gin.Context) {
	items, total, err := h.Repo.List(c.Request.Context(),
		c.Query("title"),
		parseInt(c.Query("limit"), 20),
		parseInt(c.Query("offset"), 0))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

func (h *Handler) getByID(c *gin.Context) {
	w, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if w == nil {
		apperr.Respond(c, apperr.NotFound("work not found"))
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if !ok {
		apperr.Respond(c, apperr.NotFound("work not found"))
		return
	}
	h.Hub.Publish(events.Event{Type: "work.delete", WorkID: id})
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) editions(c *gin.Context) {
	id := c.Param("id")
	w, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if w == nil {
		apperr.Respond(c, apperr.NotFound("work not found"))
		return
	}

	items, err := h.Editions.ListByWork(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work": w, "editions": items})
}

type linkReq struct {
	WorkID   string `json:"work_id"`
	AuthorID string `json:"author_id"`
}

func (h *Handler) link(c *gin.Context) {
	var req linkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid json"))
		return
	}
	if strings.TrimSpace(req.WorkID) == "" || strings.TrimSpace(req.AuthorID) == "" {
		apperr.Respond(c, apperr.Validation("work_id and author_id are required"))
		return
	}

	if err := h.Repo.Link(c.Request.Context(), req.WorkID, req.AuthorID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.WorkAuthor{WorkID: req.WorkID, AuthorID: req.AuthorID})
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
