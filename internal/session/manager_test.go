package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/battlescape/internal/models"
	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testSnapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	snap, err := store.New([]models.BattleRecord{
		{War: "A", Year: 1850},
		{War: "A", Year: 1820},
		{War: "A", Year: 1890},
		{War: "B", Year: 1800},
	})
	if err != nil {
		t.Fatalf("failed to build snapshot: %v", err)
	}
	return snap
}

func TestManager_CreateGet(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()

	s := m.Create(snap)
	if s.ID == "" {
		t.Fatal("expected a session id")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State().BrowseWar != selection.AllWars {
		t.Errorf("expected default state, got %+v", got.State())
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()
	a := m.Create(snap)
	b := m.Create(snap)

	if _, err := m.Update(a.ID, snap, func(s *selection.State) { s.SelectTour(snap, "A") }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	bs, as := b.State(), a.State()
	if bs.InTour() {
		t.Error("tour in one session leaked into another")
	}
	if !as.InTour() {
		t.Error("expected first session in tour mode")
	}
}

func TestManager_UpdateUnknown(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()
	_, err := m.Update("nope", snap, func(*selection.State) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_RevalidateAll(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()
	s := m.Create(snap)
	m.Update(s.ID, snap, func(st *selection.State) {
		st.SelectTour(snap, "A")
		st.GoToStep(snap, 2)
	})

	smaller, _ := store.New([]models.BattleRecord{{War: "A", Year: 1850}})
	m.RevalidateAll(smaller)

	st := s.State()
	if st.TourStep != 0 || st.TourWar != "A" {
		t.Errorf("expected step re-clamped to 0, got %+v", st)
	}
}

func TestManager_UpdateRefusesOlderSnapshot(t *testing.T) {
	old := testSnapshot(t)
	m := NewManager()
	s := m.Create(old)

	newer, _ := store.New([]models.BattleRecord{
		{War: "A", Year: 1700},
		{War: "A", Year: 1950},
	})
	m.RevalidateAll(newer)

	_, err := m.Update(s.ID, old, func(st *selection.State) {})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if got := s.State().BrowseYears; got != (selection.YearRange{Min: 1700, Max: 1950}) {
		t.Errorf("expected range from newer data to be kept, got %+v", got)
	}

	// An older snapshot arriving late must not be applied either.
	m.RevalidateAll(old)
	if got := s.State().BrowseYears; got != (selection.YearRange{Min: 1700, Max: 1950}) {
		t.Errorf("expected late revalidation to be ignored, got %+v", got)
	}

	if _, err := m.Update(s.ID, newer, func(*selection.State) {}); err != nil {
		t.Errorf("Update with current snapshot failed: %v", err)
	}
}

func TestManager_ExpireAndDelete(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old := m.Create(snap)
	now = now.Add(time.Hour)
	fresh := m.Create(snap)

	if n := m.Expire(30 * time.Minute); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	if _, err := m.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("expected idle session to be gone")
	}

	if !m.Delete(fresh.ID) {
		t.Error("expected Delete to report true")
	}
	if m.Delete(fresh.ID) {
		t.Error("expected second Delete to report false")
	}
	if m.Len() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Len())
	}
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	snap := testSnapshot(t)
	m := NewManager()
	s := m.Create(snap)
	m.Update(s.ID, snap, func(st *selection.State) { st.SelectTour(snap, "A") })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Update(s.ID, snap, func(st *selection.State) {
				if n%2 == 0 {
					st.StepNext(snap)
				} else {
					st.StepPrev()
				}
			})
		}(i)
	}
	wg.Wait()

	st := s.State()
	if st.TourStep < 0 || st.TourStep > 2 {
		t.Errorf("tour step out of range: %d", st.TourStep)
	}
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, 10*time.Millisecond, time.Minute)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
