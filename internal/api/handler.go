package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/battlescape/internal/events"
	"github.com/mr1hm/battlescape/internal/ingestion"
	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/session"
	"github.com/mr1hm/battlescape/internal/store"
	"github.com/mr1hm/battlescape/internal/view"
)

const snapshotKey = "snapshot"

// Loader is the part of the ingestion manager the API drives.
type Loader interface {
	Trigger() bool
	Status() ingestion.Status
}

type Handler struct {
	store       *store.Store
	sessions    *session.Manager
	loader      Loader
	broadcaster *events.Broadcaster
}

func NewHandler(st *store.Store, sessions *session.Manager, loader Loader, broadcaster *events.Broadcaster) *Handler {
	return &Handler{
		store:       st,
		sessions:    sessions,
		loader:      loader,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/events", h.streamEvents)
	api.POST("/reload", h.reload)

	data := api.Group("", h.requireData)
	data.GET("/facets", h.getFacets)
	data.GET("/battles", h.getBattles)

	data.POST("/sessions", h.createSession)
	data.GET("/sessions/:id", h.getSession)
	data.DELETE("/sessions/:id", h.deleteSession)
	data.GET("/sessions/:id/markers", h.getSessionMarkers)
	data.PUT("/sessions/:id/war", h.setBrowseWar)
	data.PUT("/sessions/:id/years", h.setBrowseYears)
	data.PUT("/sessions/:id/tour", h.selectTour)
	data.POST("/sessions/:id/tour/start", h.startTour)
	data.POST("/sessions/:id/tour/stop", h.stopTour)
	data.POST("/sessions/:id/tour/next", h.stepNext)
	data.POST("/sessions/:id/tour/prev", h.stepPrev)
	data.PUT("/sessions/:id/tour/step", h.goToStep)
}

// requireData stops the request when nothing is loaded. Core logic never runs
// against an empty store.
func (h *Handler) requireData(c *gin.Context) {
	snap := h.store.Current()
	if snap == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "battle data unavailable",
		})
		return
	}
	c.Set(snapshotKey, snap)
	c.Next()
}

func snapshotFrom(c *gin.Context) *store.Snapshot {
	return c.MustGet(snapshotKey).(*store.Snapshot)
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	}
	if snap := h.store.Current(); snap != nil {
		resp["data_loaded"] = true
		resp["records"] = snap.Len()
		resp["version"] = snap.Version()
	} else {
		resp["data_loaded"] = false
	}
	if h.loader != nil {
		resp["source"] = h.loader.Status()
	}
	c.JSON(http.StatusOK, resp)
}

type facetsResponse struct {
	Wars        []string `json:"wars"`
	WarOptions  []string `json:"war_options"`
	TourOptions []string `json:"tour_options"`
	MinYear     int      `json:"min_year"`
	MaxYear     int      `json:"max_year"`
	Count       int      `json:"count"`
	Version     uint64   `json:"version"`
}

func (h *Handler) getFacets(c *gin.Context) {
	snap := snapshotFrom(c)
	wars := snap.Wars()
	lo, hi := snap.YearBounds()

	c.JSON(http.StatusOK, facetsResponse{
		Wars:        wars,
		WarOptions:  append([]string{selection.AllWars}, wars...),
		TourOptions: append([]string{selection.NoTour}, wars...),
		MinYear:     lo,
		MaxYear:     hi,
		Count:       snap.Len(),
		Version:     snap.Version(),
	})
}

// getBattles returns the records matching an ad-hoc browse filter without
// creating a session.
func (h *Handler) getBattles(c *gin.Context) {
	snap := snapshotFrom(c)
	state := selection.New(snap)

	if w := c.Query("war"); w != "" {
		state.SetBrowseWar(snap, w)
	}
	lo, hi := state.BrowseYears.Min, state.BrowseYears.Max
	if s := c.Query("from"); s != "" {
		if y, err := strconv.Atoi(s); err == nil {
			lo = y
		}
	}
	if s := c.Query("to"); s != "" {
		if y, err := strconv.Atoi(s); err == nil {
			hi = y
		}
	}
	state.SetBrowseYearRange(snap, lo, hi)

	set := view.Resolve(snap, state)
	writeGeoJSON(c, view.BuildMarkers(set))
}

func (h *Handler) reload(c *gin.Context) {
	if h.loader == nil || !h.loader.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "reload already pending"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "reload queued"})
}
