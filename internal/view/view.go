package view

import (
	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/store"
)

const (
	TilesStyle      = "CartoDB Positron"
	NoMatchesNotice = "No battles found for the selected filters."
)

type TourProgress struct {
	War     string  `json:"war"`
	Step    int     `json:"step"`
	Total   int     `json:"total"`
	HasPrev bool    `json:"has_prev"`
	HasNext bool    `json:"has_next"`
	Current *Marker `json:"current,omitempty"`
}

// View is the full render payload for one session state.
type View struct {
	Key      string          `json:"key"`
	Version  uint64          `json:"version"`
	Tiles    string          `json:"tiles"`
	State    selection.State `json:"state"`
	Viewport Viewport        `json:"viewport"`
	Markers  []Marker        `json:"markers"`
	Tour     *TourProgress   `json:"tour,omitempty"`
	Notice   string          `json:"notice,omitempty"`
}

// Compose recomputes everything the map needs from scratch.
func Compose(snap *store.Snapshot, state selection.State) View {
	set := Resolve(snap, state)
	markers := BuildMarkers(set)

	v := View{
		Key:      state.Key(),
		Version:  snap.Version(),
		Tiles:    TilesStyle,
		State:    state,
		Viewport: ComputeViewport(set, state),
		Markers:  markers,
	}

	if state.InTour() {
		total := len(set.Records)
		v.Tour = &TourProgress{
			War:     state.TourWar,
			Step:    state.TourStep,
			Total:   total,
			HasPrev: state.TourStep > 0,
			HasNext: state.TourStep < total-1,
		}
		for i := range markers {
			if markers[i].Highlighted {
				v.Tour.Current = &markers[i]
				break
			}
		}
	} else if set.Empty() {
		v.Notice = NoMatchesNotice
	}

	return v
}
