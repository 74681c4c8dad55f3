package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

type fakeWriter struct {
	path    string
	body    string
	objects map[string]string
	err     error
}

func (w *fakeWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if w.err != nil {
		return w.err
	}
	b, _ := io.ReadAll(data)
	w.path = path
	w.body = string(b)
	if w.objects == nil {
		w.objects = make(map[string]string)
	}
	w.objects[path] = string(b)
	return nil
}

func (w *fakeWriter) PutMultipart(context.Context, string, io.Reader, int64) error {
	return nil
}

type fakeArchiveStore struct {
	items   []domain.Activity
	deleted *time.Time
}

func (s *fakeArchiveStore) ListBefore(_ context.Context, cutoff time.Time, _ int) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range s.items {
		if a.Timestamp.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeArchiveStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.deleted = &cutoff
	var kept []domain.Activity
	var n int64
	for _, a := range s.items {
		if a.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.items = kept
	return n, nil
}

func TestArchiveOnce(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-100 * 24 * time.Hour)

	store := &fakeArchiveStore{items: []domain.Activity{
		{ID: "a1", Type: domain.ActivityBetPlaced, Timestamp: old},
		{ID: "a2", Type: domain.ActivityWinningsClaimed, Timestamp: old.Add(time.Hour)},
		{ID: "a3", Type: domain.ActivityBetPlaced, Timestamp: now.Add(-time.Hour)},
	}}
	writer := &fakeWriter{}

	arch := NewActivityArchiver(writer, store, 90)
	arch.now = func() time.Time { return now }

	n, err := arch.ArchiveOnce(context.Background())
	if err != nil {
		t.Fatalf("ArchiveOnce: %v", err)
	}
	if n != 2 {
		t.Errorf("archived %d rows, want 2", n)
	}
	wantPath := fmt.Sprintf("archive/activity/2026-06-03/%d.jsonl", now.UnixNano())
	if writer.path != wantPath {
		t.Errorf("archive path = %q, want %q", writer.path, wantPath)
	}
	if lines := strings.Count(strings.TrimRight(writer.body, "\n"), "\n") + 1; lines != 2 {
		t.Errorf("archive has %d lines, want 2", lines)
	}
	if store.deleted == nil {
		t.Error("rows were not deleted after upload")
	}
}

func TestArchiveOnceSameDayPassesKeepDistinctObjects(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeArchiveStore{items: []domain.Activity{
		{ID: "first-batch", Timestamp: day.Add(-91 * 24 * time.Hour)},
		{ID: "second-batch", Timestamp: day.Add(-90*24*time.Hour + 30*time.Minute)},
	}}
	writer := &fakeWriter{}

	arch := NewActivityArchiver(writer, store, 90)

	// Two passes an hour apart share the same cutoff date partition; each
	// must land in its own object, since the first pass already deleted its
	// rows from the store.
	arch.now = func() time.Time { return day }
	if _, err := arch.ArchiveOnce(context.Background()); err != nil {
		t.Fatalf("ArchiveOnce (first): %v", err)
	}
	arch.now = func() time.Time { return day.Add(time.Hour) }
	if _, err := arch.ArchiveOnce(context.Background()); err != nil {
		t.Fatalf("ArchiveOnce (second): %v", err)
	}

	if len(writer.objects) != 2 {
		t.Fatalf("wrote %d objects, want 2: %v", len(writer.objects), writer.objects)
	}
	var haveFirst, haveSecond bool
	for _, body := range writer.objects {
		haveFirst = haveFirst || strings.Contains(body, "first-batch")
		haveSecond = haveSecond || strings.Contains(body, "second-batch")
	}
	if !haveFirst || !haveSecond {
		t.Errorf("archived objects lost a batch: first=%v second=%v", haveFirst, haveSecond)
	}
}

func TestArchiveOnceNothingToDo(t *testing.T) {
	writer := &fakeWriter{}
	arch := NewActivityArchiver(writer, &fakeArchiveStore{}, 90)

	n, err := arch.ArchiveOnce(context.Background())
	if err != nil {
		t.Fatalf("ArchiveOnce: %v", err)
	}
	if n != 0 || writer.path != "" {
		t.Errorf("empty store should be a no-op, got n=%d path=%q", n, writer.path)
	}
}

func TestArchiveOnceKeepsRowsOnUploadFailure(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeArchiveStore{items: []domain.Activity{
		{ID: "a1", Timestamp: now.Add(-200 * 24 * time.Hour)},
	}}
	writer := &fakeWriter{err: errors.New("boom")}

	arch := NewActivityArchiver(writer, store, 90)
	arch.now = func() time.Time { return now }

	if _, err := arch.ArchiveOnce(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if store.deleted != nil {
		t.Error("rows must not be deleted when upload fails")
	}
}
