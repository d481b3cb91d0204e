package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

func TestReconciler_SweepStale(t *testing.T) {
	files := newStubFileRepo()
	blobs := newStubBlobStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-time.Hour)

	blobs.blobs["b-pending"] = []byte("x")
	blobs.blobs["b-deleting"] = []byte("y")
	blobs.blobs["b-fresh"] = []byte("z")
	blobs.blobs["b-ready"] = []byte("r")

	files.files["pending"] = &domain.FileEntry{ID: "pending", Descriptor: "b-pending", State: domain.FileStatePending, UpdatedAt: old}
	files.files["deleting"] = &domain.FileEntry{ID: "deleting", Descriptor: "b-deleting", State: domain.FileStateDeleting, UpdatedAt: old}
	files.files["fresh"] = &domain.FileEntry{ID: "fresh", Descriptor: "b-fresh", State: domain.FileStatePending, UpdatedAt: now.Add(-time.Minute)}
	files.files["ready"] = &domain.FileEntry{ID: "ready", Descriptor: "b-ready", State: domain.FileStateReady, UpdatedAt: old}

	r := NewReconciler(files, blobs, 15*time.Minute, discardLogger)
	r.now = fixedClock(now)

	removed, err := r.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 entries removed, got %d", removed)
	}
	for _, id := range []string{"fresh", "ready"} {
		if _, ok := files.files[id]; !ok {
			t.Fatalf("entry %s should have been kept", id)
		}
	}
	for _, d := range []string{"b-pending", "b-deleting"} {
		if _, ok := blobs.blobs[d]; ok {
			t.Fatalf("blob %s should have been removed", d)
		}
	}
}

func TestReconciler_SweepKeepsEntryWhenBlobDeleteFails(t *testing.T) {
	files := newStubFileRepo()
	blobs := newStubBlobStore()
	blobs.blobs["b1"] = []byte("x")
	blobs.deleteErr = errors.New("blob backend down")
	files.files["e1"] = &domain.FileEntry{ID: "e1", Descriptor: "b1", State: domain.FileStatePending, UpdatedAt: time.Now().Add(-time.Hour)}

	r := NewReconciler(files, blobs, time.Minute, discardLogger)
	removed, err := r.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	if _, ok := files.files["e1"]; !ok {
		t.Fatalf("entry must be kept for the next sweep")
	}
}

func TestReconciler_HandleOrphan(t *testing.T) {
	blobs := newStubBlobStore()
	blobs.blobs["b1"] = []byte("x")
	r := NewReconciler(newStubFileRepo(), blobs, 0, discardLogger)
	ctx := context.Background()

	if err := r.HandleOrphan(ctx, domain.FileEvent{Type: domain.EventFileOrphaned, Descriptor: "b1"}); err != nil {
		t.Fatalf("handle orphan: %v", err)
	}
	if _, ok := blobs.blobs["b1"]; ok {
		t.Fatalf("expected orphaned blob to be removed")
	}

	if err := r.HandleOrphan(ctx, domain.FileEvent{Type: domain.EventFileOrphaned, Descriptor: "b1"}); err != nil {
		t.Fatalf("already-removed blob should be handled, got %v", err)
	}
	if err := r.HandleOrphan(ctx, domain.FileEvent{Type: domain.EventFileUploaded, Descriptor: "b1"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for wrong event type, got %v", err)
	}
	if err := r.HandleOrphan(ctx, domain.FileEvent{Type: domain.EventFileOrphaned}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing descriptor, got %v", err)
	}
}
