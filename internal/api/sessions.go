package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/session"
	"github.com/mr1hm/battlescape/internal/store"
	"github.com/mr1hm/battlescape/internal/view"
)

type sessionResponse struct {
	ID   string    `json:"id"`
	View view.View `json:"view"`
}

type warRequest struct {
	War string `json:"war"`
}

type yearsRequest struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

type stepRequest struct {
	Step *int `json:"step"`
}

func (h *Handler) createSession(c *gin.Context) {
	snap := snapshotFrom(c)
	s := h.sessions.Create(snap)

	c.JSON(http.StatusCreated, sessionResponse{
		ID:   s.ID,
		View: view.Compose(snap, s.State()),
	})
}

func (h *Handler) getSession(c *gin.Context) {
	h.mutate(c, func(*store.Snapshot, *selection.State) {})
}

func (h *Handler) getSessionMarkers(c *gin.Context) {
	snap, state, ok := h.apply(c, func(*store.Snapshot, *selection.State) {})
	if !ok {
		return
	}
	writeGeoJSON(c, view.Compose(snap, state).Markers)
}

func (h *Handler) deleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setBrowseWar(c *gin.Context) {
	var req warRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.SetBrowseWar(snap, req.War)
	})
}

func (h *Handler) setBrowseYears(c *gin.Context) {
	var req yearsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Min == nil || req.Max == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min and max are required"})
		return
	}
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.SetBrowseYearRange(snap, *req.Min, *req.Max)
	})
}

func (h *Handler) selectTour(c *gin.Context) {
	var req warRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.SelectTour(snap, req.War)
	})
}

func (h *Handler) startTour(c *gin.Context) {
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.StartTour(snap)
	})
}

func (h *Handler) stopTour(c *gin.Context) {
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.StopTour(snap)
	})
}

func (h *Handler) stepNext(c *gin.Context) {
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.StepNext(snap)
	})
}

func (h *Handler) stepPrev(c *gin.Context) {
	h.mutate(c, func(_ *store.Snapshot, s *selection.State) {
		s.StepPrev()
	})
}

func (h *Handler) goToStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Step == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "step is required"})
		return
	}
	h.mutate(c, func(snap *store.Snapshot, s *selection.State) {
		s.GoToStep(snap, *req.Step)
	})
}

// mutate applies fn to the session named in the path and answers with the
// recomputed view.
func (h *Handler) mutate(c *gin.Context, fn func(*store.Snapshot, *selection.State)) {
	snap, state, ok := h.apply(c, fn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view.Compose(snap, state))
}

// apply runs fn on the session and returns the snapshot it ran against. When
// a reload lands after the request read its snapshot, fn is retried on the
// current one.
func (h *Handler) apply(c *gin.Context, fn func(*store.Snapshot, *selection.State)) (*store.Snapshot, selection.State, bool) {
	snap := snapshotFrom(c)
	state, err := h.update(c.Param("id"), snap, fn)
	if errors.Is(err, session.ErrStale) {
		snap = h.store.Current()
		state, err = h.update(c.Param("id"), snap, fn)
	}
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, selection.State{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update session"})
		return nil, selection.State{}, false
	}
	return snap, state, true
}

func (h *Handler) update(id string, snap *store.Snapshot, fn func(*store.Snapshot, *selection.State)) (selection.State, error) {
	return h.sessions.Update(id, snap, func(s *selection.State) {
		fn(snap, s)
	})
}
