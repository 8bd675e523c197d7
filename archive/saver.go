package archive

import (
	"context"

	"go.uber.org/zap"

	"github.com/jacentio/vitrine/store"
)

// Snapshotter produces a point-in-time copy of a store.
type Snapshotter interface {
	Snapshot() store.Snapshot
}

// Saver exports a fresh snapshot of its source on every Persist call.
type Saver struct {
	archive *Archive
	source  Snapshotter
}

// Saver returns a Saver that writes snapshots of source to a.
func (a *Archive) Saver(source Snapshotter) *Saver {
	return &Saver{archive: a, source: source}
}

// Persist exports the source and moves the latest pointer to it.
func (s *Saver) Persist(ctx context.Context) error {
	id, err := s.archive.Export(ctx, s.source.Snapshot())
	if err != nil {
		return err
	}
	s.archive.logger.Debug("persisted store", zap.String("snapshotID", id))
	return nil
}
