// Package jsonfile implements file-backed state persistence.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
)

const (
	stateFileName = "state.json"
	snapshotDir   = "snapshots"

	// DefaultSnapshotKeep is how many timestamped snapshots are retained.
	DefaultSnapshotKeep = 10
)

// StateStore persists screener state as JSON under a data directory.
// Each Save atomically replaces state.json and rotates a timestamped
// copy into the snapshots folder.
type StateStore struct {
	dir          string
	snapshotKeep int
	nowFn        func() time.Time
}

// Option configures a StateStore.
type Option func(*StateStore)

// WithSnapshotKeep sets how many snapshots are retained.
func WithSnapshotKeep(n int) Option {
	return func(s *StateStore) {
		s.snapshotKeep = n
	}
}

// WithClock sets a custom clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *StateStore) {
		s.nowFn = now
	}
}

// NewStateStore creates a file-backed state store rooted at dir.
func NewStateStore(dir string, opts ...Option) (*StateStore, error) {
	s := &StateStore{
		dir:          dir,
		snapshotKeep: DefaultSnapshotKeep,
		nowFn:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Join(dir, snapshotDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return s, nil
}

var _ storage.StateStore = (*StateStore)(nil)

// Save writes the state, replacing any previous one. The write goes to a
// temp file first so a crash never leaves a truncated state.json.
func (s *StateStore) Save(ctx context.Context, state *storage.State) error {
	if state == nil {
		return storage.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stamp a copy so the caller's state is left untouched.
	stamped := *state
	stamped.SavedAt = s.nowFn().UnixMilli()
	data, err := json.MarshalIndent(&stamped, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	path := filepath.Join(s.dir, stateFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}

	if err := s.rotateSnapshot(data); err != nil {
		return fmt.Errorf("rotate snapshot: %w", err)
	}
	return nil
}

// Load reads the last saved state. Returns ErrNotFound when no state
// has been saved yet.
func (s *StateStore) Load(ctx context.Context) (*storage.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, stateFileName))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state storage.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

// rotateSnapshot writes a timestamped copy and prunes the oldest ones.
func (s *StateStore) rotateSnapshot(data []byte) error {
	if s.snapshotKeep <= 0 {
		return nil
	}

	name := fmt.Sprintf("state-%s.json", s.nowFn().UTC().Format("20060102T150405.000"))
	if err := os.WriteFile(filepath.Join(s.dir, snapshotDir, name), data, 0o644); err != nil {
		return err
	}
	return s.prune()
}

// prune removes the oldest snapshots beyond snapshotKeep. Snapshot names
// embed their timestamp, so lexical order is chronological.
func (s *StateStore) prune() error {
	entries, err := os.ReadDir(filepath.Join(s.dir, snapshotDir))
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.snapshotKeep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-s.snapshotKeep] {
		if err := os.Remove(filepath.Join(s.dir, snapshotDir, name)); err != nil {
			return err
		}
	}
	return nil
}
