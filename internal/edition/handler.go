package edition

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/events"
	"bookhub/pkg/apperr"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.discover)    // GET /editions (unfiltered = discover-all)
	rg.POST("", h.upsert)     // POST /editions (dedup upsert)
	rg.GET("/lookup", h.lookup)
	rg.GET("/:id", h.getByID)
}

// RegisterDiscovery mounts the filtered listing under /discover/editions.
// Same handler as GET /editions; one list path for editions.
func (h *Handler) RegisterDiscovery(rg *gin.RouterGroup) {
	rg.GET("/editions", h.discover)
}

func (h *Handler) discover(c *gin.Context) {
	q := DiscoverQuery{
		Type:       c.Query("type"),
		Format:     c.Query("format"),
		Language:   c.Query("language"),
		Publisher:  c.Query("publisher"),
		SeriesName: c.Query("series_name"),
		Genre:      c.Query("genres"),
		Tag:        c.Query("tags"),
		Sort:       c.Query("sort"),
		Order:      c.Query("order"),
		Limit:      parseInt(c.Query("limit"), 20),
		Offset:     parseInt(c.Query("offset"), 0),
	}

	// boolean filters only apply when the parameter is present;
	// "true" means true, any other value means false
	if v, ok := c.GetQuery("explicit"); ok {
		b := v == "true"
		q.Explicit = &b
	}
	if v, ok := c.GetQuery("abridged"); ok {
		b := v == "true"
		q.Abridged = &b
	}

	items, total, err := h.Repo.Discover(c.Request.Context(), q)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) upsert(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.Respond(c, apperr.Validation("invalid json"))
		return
	}

	res, err := h.Repo.Upsert(c.Request.Context(), in)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	status := http.StatusOK
	evType := "edition.update"
	verdict := "updated"
	if res.Created {
		status = http.StatusCreated
		evType = "edition.create"
		verdict = "created"
	}
	h.Hub.Publish(events.Event{Type: evType, WorkID: res.Edition.WorkID, Edition: res.Edition.ID})

	c.JSON(status, gin.H{
		"status":  verdict,
		"edition": res.Edition,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	e, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if e == nil {
		apperr.Respond(c, apperr.NotFound("edition not found"))
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) lookup(c *gin.Context) {
	e, err := h.Repo.Lookup(c.Request.Context(), c.Query("isbn"), c.Query("asin"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if e == nil {
		apperr.Respond(c, apperr.NotFound("no edition matches the given identifiers"))
		return
	}
	c.JSON(http.StatusOK, e)
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
