package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const (
	defaultPendingTTL = 15 * time.Minute
	sweepBatchSize    = 100
)

// Reconciler repairs what partially failed file writes leave behind.
type Reconciler struct {
	files      ports.FileRepository
	blobs      ports.BlobStore
	pendingTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewReconciler(files ports.FileRepository, blobs ports.BlobStore, pendingTTL time.Duration, log zerolog.Logger) *Reconciler {
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	return &Reconciler{
		files:      files,
		blobs:      blobs,
		pendingTTL: pendingTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SweepStale removes entries stuck in pending or deleting for longer than
// the pending TTL, together with their blobs. It returns how many entries
// were removed.
func (r *Reconciler) SweepStale(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.pendingTTL)
	stale, err := r.files.FindStale(ctx,
		[]domain.FileState{domain.FileStatePending, domain.FileStateDeleting},
		cutoff, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	removed := 0
	for _, entry := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.Descriptor != "" {
			if err := r.blobs.Delete(ctx, entry.Descriptor); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
				r.log.Error().Err(err).Str("file_id", entry.ID).Str("descriptor", entry.Descriptor).Msg("sweep: blob delete failed")
				continue
			}
		}
		if err := r.files.Delete(ctx, entry.ID); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
			r.log.Error().Err(err).Str("file_id", entry.ID).Msg("sweep: metadata delete failed")
			continue
		}
		r.log.Info().Str("file_id", entry.ID).Str("state", string(entry.State)).
			Str("descriptor", entry.Descriptor).Msg("stale file entry removed")
		removed++
	}
	return removed, nil
}

// HandleOrphan deletes the blob named by a file.orphaned event. A blob that
// is already gone counts as handled.
func (r *Reconciler) HandleOrphan(ctx context.Context, ev domain.FileEvent) error {
	if ev.Type != domain.EventFileOrphaned {
		return domain.Invalid("handle orphan: unexpected event type %q", ev.Type)
	}
	if ev.Descriptor == "" {
		return domain.Invalid("handle orphan: event has no descriptor")
	}
	if err := r.blobs.Delete(ctx, ev.Descriptor); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
		return fmt.Errorf("handle orphan: %w", err)
	}
	r.log.Info().Str("descriptor", ev.Descriptor).Str("reason", ev.Reason).Msg("orphaned blob removed")
	return nil
}
