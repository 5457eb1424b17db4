package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/battlescape/internal/view"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(markers []view.Marker) FeatureCollection {
	features := make([]Feature, 0, len(markers))

	for _, m := range markers {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{m.Position.Longitude, m.Position.Latitude},
			},
			Properties: map[string]any{
				"id":             m.ID,
				"icon":           m.Icon,
				"color":          m.Color,
				"tooltip":        m.Tooltip,
				"highlighted":    m.Highlighted,
				"battle":         m.Popup.Battle,
				"year":           m.Popup.Year,
				"war":            m.Popup.War,
				"battle_type":    m.Popup.BattleType,
				"description":    m.Popup.Description,
				"belligerents_a": m.Popup.BelligerentsA,
				"belligerents_b": m.Popup.BelligerentsB,
				"commanders_a":   m.Popup.CommandersA,
				"commanders_b":   m.Popup.CommandersB,
				"result":         m.Popup.Result,
				"wiki_url":       m.Popup.WikiURL,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func writeGeoJSON(c *gin.Context, markers []view.Marker) {
	fc := toGeoJSON(markers)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}
