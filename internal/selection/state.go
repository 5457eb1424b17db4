package selection

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	AllWars = "All Wars"
	NoTour  = "None"
)

type Mode int

const (
	ModeBrowse Mode = iota
	ModeTour
)

func (m Mode) String() string {
	switch m {
	case ModeTour:
		return "tour"
	default:
		return "browse"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "browse":
		*m = ModeBrowse
	case "tour":
		*m = ModeTour
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Facets is the view of the loaded dataset that transitions clamp against.
// *store.Snapshot satisfies it.
type Facets interface {
	HasWar(war string) bool
	YearBounds() (int, int)
	TourLen(war string) int
}

type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// State is the view state of one explorer session. Every transition is total:
// bad input is clamped or defaulted, never rejected.
//
// Mode is ModeTour exactly when TourWar is not NoTour, and TourStep always
// indexes the current tour (it is 0 in browse mode). FullYears is set while
// BrowseYears spans the whole data range, so reloads can widen it.
type State struct {
	Mode        Mode      `json:"mode"`
	BrowseWar   string    `json:"browse_war"`
	BrowseYears YearRange `json:"browse_years"`
	FullYears   bool      `json:"full_years"`
	TourWar     string    `json:"tour_war"`
	TourStep    int       `json:"tour_step"`
}

// New returns the session start state: browsing all wars over the full data
// range.
func New(f Facets) State {
	lo, hi := f.YearBounds()
	return State{
		Mode:        ModeBrowse,
		BrowseWar:   AllWars,
		BrowseYears: YearRange{Min: lo, Max: hi},
		FullYears:   true,
		TourWar:     NoTour,
	}
}

func (s *State) InTour() bool {
	return s.Mode == ModeTour
}

// SetBrowseWar changes the war filter. The filter is inert during a tour.
func (s *State) SetBrowseWar(f Facets, war string) {
	if s.InTour() {
		return
	}
	if war != AllWars && !f.HasWar(war) {
		war = AllWars
	}
	if war != s.BrowseWar {
		s.BrowseWar = war
		s.TourStep = 0
	}
}

// SetBrowseYearRange sets the inclusive year filter. An inverted range is
// swapped and both ends are clamped to the data bounds.
func (s *State) SetBrowseYearRange(f Facets, lo, hi int) {
	if s.InTour() {
		return
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	s.BrowseYears = clampRange(f, YearRange{Min: lo, Max: hi})
	first, last := f.YearBounds()
	s.FullYears = s.BrowseYears == YearRange{Min: first, Max: last}
}

// SelectTour is the canonical tour entry point. NoTour, or a war absent from
// the data, returns to browse mode.
func (s *State) SelectTour(f Facets, war string) {
	if war == NoTour || f.TourLen(war) == 0 {
		s.Mode = ModeBrowse
		s.TourWar = NoTour
		s.TourStep = 0
		return
	}
	s.Mode = ModeTour
	s.TourWar = war
	s.TourStep = 0
}

// StartTour begins a tour of the war currently chosen in the browse filter.
// It reports false, leaving the state unchanged, when no specific war is
// selected or a tour is already running.
func (s *State) StartTour(f Facets) bool {
	if s.InTour() || s.BrowseWar == AllWars || f.TourLen(s.BrowseWar) == 0 {
		return false
	}
	s.SelectTour(f, s.BrowseWar)
	return true
}

// StopTour returns to browse mode. The browse filters are untouched.
func (s *State) StopTour(f Facets) {
	s.SelectTour(f, NoTour)
}

func (s *State) StepNext(f Facets) {
	if !s.InTour() {
		return
	}
	if last := f.TourLen(s.TourWar) - 1; s.TourStep < last {
		s.TourStep++
	}
}

func (s *State) StepPrev() {
	if !s.InTour() {
		return
	}
	if s.TourStep > 0 {
		s.TourStep--
	}
}

// GoToStep jumps to a tour step, clamped to the tour.
func (s *State) GoToStep(f Facets, step int) {
	if !s.InTour() {
		return
	}
	s.TourStep = max(0, min(step, f.TourLen(s.TourWar)-1))
}

// Revalidate re-clamps every field against freshly loaded data. Filters
// naming wars that disappeared fall back to their defaults, and an untouched
// year range follows the new data bounds.
func (s *State) Revalidate(f Facets) {
	if s.BrowseWar != AllWars && !f.HasWar(s.BrowseWar) {
		s.BrowseWar = AllWars
	}
	if s.FullYears {
		lo, hi := f.YearBounds()
		s.BrowseYears = YearRange{Min: lo, Max: hi}
	} else {
		s.BrowseYears = clampRange(f, s.BrowseYears)
	}

	n := f.TourLen(s.TourWar)
	if s.TourWar == NoTour || n == 0 {
		s.Mode = ModeBrowse
		s.TourWar = NoTour
		s.TourStep = 0
		return
	}
	s.Mode = ModeTour
	s.TourStep = max(0, min(s.TourStep, n-1))
}

// Key is a short stable identifier of everything that affects rendering, for
// map widgets that need a key to redraw.
func (s *State) Key() string {
	raw := fmt.Sprintf("%s|%s|%d|%d|%s|%d",
		s.Mode, s.BrowseWar, s.BrowseYears.Min, s.BrowseYears.Max, s.TourWar, s.TourStep)
	return strconv.FormatUint(xxhash.Sum64String(raw), 16)
}

func clampRange(f Facets, r YearRange) YearRange {
	lo, hi := f.YearBounds()
	r.Min = max(lo, min(r.Min, hi))
	r.Max = max(lo, min(r.Max, hi))
	return r
}
