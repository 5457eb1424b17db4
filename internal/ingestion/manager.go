package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/battlescape/internal/events"
	"github.com/mr1hm/battlescape/internal/models"
	"github.com/mr1hm/battlescape/internal/repository"
	"github.com/mr1hm/battlescape/internal/source"
	"github.com/mr1hm/battlescape/internal/store"
	"github.com/mr1hm/battlescape/internal/worker"
)

// snapshotSource names loads restored from the local repository.
const snapshotSource = "snapshot"

type reloadJob struct {
	reason string
}

// Status summarises the most recent load attempts.
type Status struct {
	Source      string    `json:"source"`
	LastLoad    time.Time `json:"last_load,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitempty"`
}

// Manager loads the battle table into the store and keeps it fresh.
type Manager struct {
	provider    source.Provider
	repo        repository.RecordRepository
	store       *store.Store
	broadcaster *events.Broadcaster
	interval    time.Duration

	pool *worker.Pool[reloadJob]
	wg   sync.WaitGroup

	mu      sync.Mutex
	onLoad  []func(*store.Snapshot)
	status  Status
	stopped bool
}

// NewManager wires a manager. repo and broadcaster may be nil.
func NewManager(provider source.Provider, repo repository.RecordRepository, st *store.Store, broadcaster *events.Broadcaster, interval time.Duration) *Manager {
	return &Manager{
		provider:    provider,
		repo:        repo,
		store:       st,
		broadcaster: broadcaster,
		interval:    interval,
		status:      Status{Source: provider.Name()},
	}
}

// OnLoad registers fn to run after every successful load.
func (m *Manager) OnLoad(fn func(*store.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLoad = append(m.onLoad, fn)
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Load fetches and installs a fresh dataset. When the source fails before
// any data is loaded, the last snapshot saved in the repository is installed
// instead; the source error is still returned.
func (m *Manager) Load(ctx context.Context) error {
	records, err := m.fetch(ctx)
	if err != nil {
		m.failed(err)
		if m.store.Current() == nil {
			m.restoreSnapshot(ctx)
		}
		return err
	}

	snap, err := m.store.Replace(records)
	if err != nil {
		err = fmt.Errorf("error replacing store: %w", err)
		m.failed(err)
		return err
	}

	if m.repo != nil {
		if err := m.repo.ReplaceRecords(ctx, m.provider.Name(), records); err != nil {
			slog.Error("error saving snapshot", "error", err)
		}
	}

	m.installed(snap, m.provider.Name())
	return nil
}

func (m *Manager) fetch(ctx context.Context) ([]models.BattleRecord, error) {
	rows, err := m.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching from %s: %w", m.provider.Name(), err)
	}
	records, err := source.Decode(rows)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s data: %w", m.provider.Name(), err)
	}
	return records, nil
}

func (m *Manager) restoreSnapshot(ctx context.Context) {
	if m.repo == nil {
		return
	}

	records, err := m.repo.ListRecords(ctx)
	if err != nil {
		slog.Error("error reading snapshot", "error", err)
		return
	}
	if len(records) == 0 {
		slog.Warn("no snapshot available to fall back on")
		return
	}

	snap, err := m.store.Replace(records)
	if err != nil {
		slog.Error("error restoring snapshot", "error", err)
		return
	}
	slog.Warn("serving stale snapshot after load failure", "count", snap.Len())
	m.installed(snap, snapshotSource)
}

func (m *Manager) installed(snap *store.Snapshot, from string) {
	m.mu.Lock()
	m.status.Source = from
	m.status.LastLoad = time.Now()
	hooks := append(([]func(*store.Snapshot))(nil), m.onLoad...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(snap)
	}

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(events.Event{
			Kind:    events.KindReload,
			Version: snap.Version(),
			Count:   snap.Len(),
			Source:  from,
			At:      time.Now(),
		})
	}

	slog.Info("battle data loaded", "source", from, "count", snap.Len(), "version", snap.Version())
}

func (m *Manager) failed(err error) {
	m.mu.Lock()
	m.status.LastError = err.Error()
	m.status.LastErrorAt = time.Now()
	m.mu.Unlock()

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(events.Event{
			Kind:   events.KindLoadFailed,
			Source: m.provider.Name(),
			Error:  err.Error(),
			At:     time.Now(),
		})
	}

	slog.Error("battle data load failed", "source", m.provider.Name(), "error", err)
}

// Start runs the reload queue and the periodic poller. Reloads run one at a
// time.
func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, job reloadJob) error {
		slog.Debug("reloading", "reason", job.reason)
		return m.Load(ctx)
	}

	pool := worker.NewPool[reloadJob]("reload", 1, 1, processor)
	pool.Start(ctx)

	m.mu.Lock()
	m.pool = pool
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runPoller(ctx)
}

func (m *Manager) runPoller(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", m.provider.Name(), "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", m.provider.Name())
			return
		case <-ticker.C:
			if !m.pool.TrySubmit(reloadJob{reason: "scheduled"}) {
				slog.Debug("reload already pending, skipping scheduled reload")
			}
		}
	}
}

// Trigger queues an immediate reload. It reports false when one is already
// pending.
func (m *Manager) Trigger() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil || m.stopped {
		return false
	}
	return m.pool.TrySubmit(reloadJob{reason: "manual"})
}

// Stop waits for the poller to exit and drains the reload queue. The context
// passed to Start must be cancelled first.
func (m *Manager) Stop() {
	m.wg.Wait()

	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}
