package view

import (
	"github.com/mr1hm/battlescape/internal/models"
	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/store"
)

// VisibleSet is the ordered list of records to draw. In a tour it holds the
// whole tour sequence and Highlighted names the current step's record.
type VisibleSet struct {
	Records     []models.BattleRecord
	Highlighted *int
}

func (v VisibleSet) Empty() bool {
	return len(v.Records) == 0
}

func (v VisibleSet) IsHighlighted(id int) bool {
	return v.Highlighted != nil && *v.Highlighted == id
}

// HighlightedRecord returns the record named by Highlighted.
func (v VisibleSet) HighlightedRecord() (models.BattleRecord, bool) {
	if v.Highlighted == nil {
		return models.BattleRecord{}, false
	}
	for _, r := range v.Records {
		if r.ID == *v.Highlighted {
			return r, true
		}
	}
	return models.BattleRecord{}, false
}

// Resolve selects the records visible under state.
func Resolve(snap *store.Snapshot, state selection.State) VisibleSet {
	if state.InTour() {
		seq := snap.TourSequence(state.TourWar)
		if state.TourStep < 0 || state.TourStep >= len(seq) {
			return VisibleSet{Records: seq}
		}
		id := seq[state.TourStep].ID
		return VisibleSet{Records: seq, Highlighted: &id}
	}

	var visible []models.BattleRecord
	for _, r := range snap.Records() {
		if state.BrowseWar != selection.AllWars && r.War != state.BrowseWar {
			continue
		}
		if !state.BrowseYears.Contains(r.Year) {
			continue
		}
		visible = append(visible, r)
	}
	return VisibleSet{Records: visible}
}
