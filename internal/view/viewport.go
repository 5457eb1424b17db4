package view

import (
	"github.com/mr1hm/battlescape/internal/models"
	"github.com/mr1hm/battlescape/internal/selection"
)

const (
	WorldZoom   = 2
	WarZoom     = 5
	CloseUpZoom = 7

	// CloseUpPadding is the half-size, in degrees, of the box framing a
	// tour's current battle.
	CloseUpPadding = 0.5
)

var NeutralCenter = models.Coordinates{Latitude: 20, Longitude: 0}

type Bounds struct {
	SouthWest models.Coordinates `json:"south_west"`
	NorthEast models.Coordinates `json:"north_east"`
}

// Viewport tells the map widget where to look. When Bounds is set it wins
// over Zoom.
type Viewport struct {
	Center models.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
	Bounds *Bounds            `json:"bounds,omitempty"`
	Empty  bool               `json:"empty"`
}

func ComputeViewport(set VisibleSet, state selection.State) Viewport {
	if set.Empty() {
		return Viewport{Center: NeutralCenter, Zoom: WorldZoom, Empty: true}
	}

	if state.InTour() {
		if rec, ok := set.HighlightedRecord(); ok {
			c := rec.Coordinates()
			return Viewport{
				Center: c,
				Zoom:   CloseUpZoom,
				Bounds: &Bounds{
					SouthWest: models.Coordinates{Latitude: c.Latitude - CloseUpPadding, Longitude: c.Longitude - CloseUpPadding},
					NorthEast: models.Coordinates{Latitude: c.Latitude + CloseUpPadding, Longitude: c.Longitude + CloseUpPadding},
				},
			}
		}
	}

	var lat, lon float64
	wars := make(map[string]struct{})
	for _, r := range set.Records {
		lat += r.Latitude
		lon += r.Longitude
		wars[r.War] = struct{}{}
	}
	n := float64(len(set.Records))

	zoom := WorldZoom
	if len(wars) == 1 && state.BrowseWar != selection.AllWars {
		zoom = WarZoom
	}

	return Viewport{
		Center: models.Coordinates{Latitude: lat / n, Longitude: lon / n},
		Zoom:   zoom,
	}
}
