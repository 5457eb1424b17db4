package view

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mr1hm/battlescape/internal/models"
)

const (
	DefaultIcon    = "crosshair"
	DefaultColor   = "darkred"
	HighlightColor = "green"
)

var icons = map[models.BattleType]string{
	models.BattleTypeNaval:             "anchor",
	models.BattleTypeSiege:             "institution",
	models.BattleTypePitched:           "shield",
	models.BattleTypeGuerilla:          "flame",
	models.BattleTypeAmphibiousAssault: "ship",
	models.BattleTypeAir:               "aircraft",
}

// PopupFields are the raw texts of a marker popup. Escaping and layout belong
// to whoever renders them.
type PopupFields struct {
	Battle        string `json:"battle"`
	Year          int    `json:"year"`
	War           string `json:"war"`
	BattleType    string `json:"battle_type"`
	Description   string `json:"description"`
	BelligerentsA string `json:"belligerents_a"`
	BelligerentsB string `json:"belligerents_b"`
	CommandersA   string `json:"commanders_a"`
	CommandersB   string `json:"commanders_b"`
	Result        string `json:"result"`
	WikiURL       string `json:"wiki_url"`
}

type Marker struct {
	ID          int                `json:"id"`
	Position    models.Coordinates `json:"position"`
	Icon        string             `json:"icon"`
	Color       string             `json:"color"`
	Tooltip     string             `json:"tooltip"`
	Highlighted bool               `json:"highlighted"`
	Popup       PopupFields        `json:"popup"`
}

func IconFor(t models.BattleType) string {
	if icon, ok := icons[t]; ok {
		return icon
	}
	return DefaultIcon
}

func Tooltip(rec models.BattleRecord) string {
	return fmt.Sprintf("%s (%d)", rec.Battle, rec.Year)
}

func BuildMarker(rec models.BattleRecord, highlight bool) Marker {
	color := DefaultColor
	if highlight {
		color = HighlightColor
	}

	return Marker{
		ID:          rec.ID,
		Position:    rec.Coordinates(),
		Icon:        IconFor(rec.BattleType),
		Color:       color,
		Tooltip:     Tooltip(rec),
		Highlighted: highlight,
		Popup: PopupFields{
			Battle:        rec.Battle,
			Year:          rec.Year,
			War:           rec.War,
			BattleType:    rec.BattleType.String(),
			Description:   rec.Description,
			BelligerentsA: rec.BelligerentsA,
			BelligerentsB: rec.BelligerentsB,
			CommandersA:   rec.CommandersA,
			CommandersB:   rec.CommandersB,
			Result:        rec.Result,
			WikiURL:       LinkURL(rec.WikiURL),
		},
	}
}

// LinkURL returns raw when it is an absolute http(s) URL and "" otherwise,
// so popups never link to javascript: or data: targets.
func LinkURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw
	default:
		return ""
	}
}

func BuildMarkers(set VisibleSet) []Marker {
	markers := make([]Marker, 0, len(set.Records))
	for _, r := range set.Records {
		markers = append(markers, BuildMarker(r, set.IsHighlighted(r.ID)))
	}
	return markers
}
