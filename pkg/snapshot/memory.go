package snapshot

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/codeatlas/codeatlas/pkg/errors"
)

// MemoryStore is an in-memory snapshot store for tests and deployments
// that run without MongoDB.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

// Save stores a snapshot, replacing any existing snapshot with the same name.
func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	if err := errors.ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	c := *snap
	s.mu.Lock()
	s.snaps[snap.Name] = &c
	s.mu.Unlock()
	return nil
}

// Get retrieves a snapshot by name.
func (s *MemoryStore) Get(_ context.Context, name string) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snaps[name]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	c := *snap
	return &c, nil
}

// List returns metadata for all snapshots, sorted by name.
func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.RLock()
	infos := make([]Info, 0, len(s.snaps))
	for _, snap := range s.snaps {
		infos = append(infos, Info{
			Name:       snap.Name,
			FolderPath: snap.FolderPath,
			NodeCount:  len(snap.Graph.Nodes),
			EdgeCount:  len(snap.Graph.Edges),
			CreatedAt:  snap.CreatedAt,
		})
	}
	s.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos, nil
}

// Delete removes a snapshot by name.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[name]; !ok {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	delete(s.snaps, name)
	return nil
}

// Close removes all stored snapshots.
func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = make(map[string]*Snapshot)
	return nil
}

var _ Store = (*MemoryStore)(nil)
