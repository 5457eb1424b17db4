package store

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/battlescape/internal/models"
)

var ErrEmpty = errors.New("record store is empty")

var versions atomic.Uint64

// Snapshot is one loaded dataset. It is never mutated after New returns.
type Snapshot struct {
	records []models.BattleRecord
	wars    []string
	warLen  map[string]int
	minYear int
	maxYear int
	version uint64
}

// New builds a snapshot from records in their source order. IDs are
// reassigned to the insertion index.
func New(records []models.BattleRecord) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	s := &Snapshot{
		records: make([]models.BattleRecord, len(records)),
		warLen:  make(map[string]int),
		minYear: records[0].Year,
		maxYear: records[0].Year,
		version: versions.Add(1),
	}
	for i, r := range records {
		r.ID = i
		s.records[i] = r

		if _, ok := s.warLen[r.War]; !ok {
			s.wars = append(s.wars, r.War)
		}
		s.warLen[r.War]++
		s.minYear = min(s.minYear, r.Year)
		s.maxYear = max(s.maxYear, r.Year)
	}
	sort.Strings(s.wars)

	return s, nil
}

// Records returns a copy of all records in insertion order.
func (s *Snapshot) Records() []models.BattleRecord {
	return slices.Clone(s.records)
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

func (s *Snapshot) Record(id int) (models.BattleRecord, bool) {
	if id < 0 || id >= len(s.records) {
		return models.BattleRecord{}, false
	}
	return s.records[id], true
}

// Wars returns the distinct wars, sorted.
func (s *Snapshot) Wars() []string {
	return slices.Clone(s.wars)
}

func (s *Snapshot) HasWar(war string) bool {
	_, ok := s.warLen[war]
	return ok
}

func (s *Snapshot) YearBounds() (int, int) {
	return s.minYear, s.maxYear
}

// TourLen is the number of records belonging to war.
func (s *Snapshot) TourLen(war string) int {
	return s.warLen[war]
}

// TourSequence returns the records of war ordered by year. Records sharing a
// year keep their insertion order.
func (s *Snapshot) TourSequence(war string) []models.BattleRecord {
	seq := make([]models.BattleRecord, 0, s.warLen[war])
	for _, r := range s.records {
		if r.War == war {
			seq = append(seq, r)
		}
	}
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Year < seq[j].Year
	})
	return seq
}

// Version identifies the load generation. Later loads have larger versions.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Store holds the current snapshot. Reloads swap it wholesale.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the loaded snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Replace(records []models.BattleRecord) (*Snapshot, error) {
	snap, err := New(records)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	return snap, nil
}
