// Package persistence periodically snapshots the store to disk and restores
// it at startup.
package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"keygrid/internal/logger"
	"keygrid/internal/rdb"
	"keygrid/internal/store"
)

var ErrSaveInProgress = errors.New("Background save already in progress")

const DefaultFile = "dump.rdb"

type Config struct {
	Dir  string
	File string
	// SaveInterval is how often the background loop checks for changes.
	// Zero disables the loop; SAVE and BGSAVE still work.
	SaveInterval time.Duration
	// MinChanges is the number of mutations needed before the loop saves.
	MinChanges int64
}

func (c Config) Path() string {
	file := c.File
	if file == "" {
		file = DefaultFile
	}
	return filepath.Join(c.Dir, file)
}

// Load restores the store from the snapshot in cfg. A missing snapshot gives
// an empty store.
func Load(cfg Config) (*store.Store, error) {
	path := cfg.Path()
	snap, err := rdb.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Infof("No snapshot at %s, starting empty", path)
		return store.New(), nil
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded %d keys from %s", snap.Keys(), path)
	return store.Restore(snap), nil
}

// Status is the persistence state reported by INFO.
type Status struct {
	InProgress     bool
	LastSave       time.Time
	LastSaveOK     bool
	LastDuration   time.Duration
	ChangesPending int64
}

type Manager struct {
	cfg   Config
	store *store.Store

	mu        sync.Mutex // serializes snapshot writes
	bgRunning atomic.Bool
	lastSave  atomic.Int64 // unix nanos
	lastOK    atomic.Bool
	lastDur   atomic.Int64
	savedAt   atomic.Int64 // store.Changes() covered by the last save

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewManager(cfg Config, s *store.Store) (*Manager, error) {
	logger.Infof("Initializing persistence manager with directory: %s", cfg.Dir)
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create persistence directory: %w", err)
	}

	m := &Manager{
		cfg:   cfg,
		store: s,
		stop:  make(chan struct{}),
	}
	m.lastOK.Store(true)
	m.savedAt.Store(s.Changes())

	if cfg.SaveInterval > 0 {
		m.wg.Add(1)
		go m.run()
	}
	return m, nil
}

func (m *Manager) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.SaveInterval)
	defer ticker.Stop()

	logger.Infof("Background snapshot loop started with interval: %v", m.cfg.SaveInterval)
	for {
		select {
		case <-ticker.C:
			changes := m.pending()
			if changes == 0 || changes < m.cfg.MinChanges {
				continue
			}
			logger.Debugf("Triggering snapshot with %d changes", changes)
			if err := m.Save(); err != nil {
				logger.Errorf("Background snapshot failed: %v", err)
			}
		case <-m.stop:
			logger.Info("Background snapshot loop stopped")
			return
		}
	}
}

func (m *Manager) pending() int64 {
	return m.store.Changes() - m.savedAt.Load()
}

// Save writes a snapshot synchronously.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	start := time.Now()
	changes := m.store.Changes()

	snap, err := m.store.Snapshot()
	if err == nil {
		err = rdb.Write(m.cfg.Path(), snap)
	}
	m.lastDur.Store(int64(time.Since(start)))
	if err != nil {
		m.lastOK.Store(false)
		return err
	}

	m.savedAt.Store(changes)
	m.lastSave.Store(time.Now().UnixNano())
	m.lastOK.Store(true)
	logger.Infof("Snapshot saved with %d keys in %v", snap.Keys(), time.Since(start))
	return nil
}

// BackgroundSave starts a snapshot in its own goroutine.
func (m *Manager) BackgroundSave() error {
	if !m.bgRunning.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.bgRunning.Store(false)
		if err := m.Save(); err != nil {
			logger.Errorf("Background save failed: %v", err)
		}
	}()
	return nil
}

func (m *Manager) LastSave() time.Time {
	n := m.lastSave.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func (m *Manager) Status() Status {
	return Status{
		InProgress:     m.bgRunning.Load(),
		LastSave:       m.LastSave(),
		LastSaveOK:     m.lastOK.Load(),
		LastDuration:   time.Duration(m.lastDur.Load()),
		ChangesPending: m.pending(),
	}
}

// Close stops the loop, waits for running saves and writes a final snapshot.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		logger.Info("Closing persistence manager...")
		close(m.stop)
		m.wg.Wait()

		logger.Info("Saving final snapshot")
		if err = m.Save(); err != nil {
			err = fmt.Errorf("failed to save final snapshot: %w", err)
		}
	})
	return err
}
