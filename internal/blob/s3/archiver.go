package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// ActivityArchiveStore is the narrow slice of the activity store the archiver
// needs: read rows past the retention cutoff, then delete them once the
// archive object has been written.
type ActivityArchiveStore interface {
	ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Activity, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityArchiver implements domain.Archiver. It moves activity rows older
// than the retention window out of Postgres into JSONL objects in S3, so the
// hot table stays small while history remains queryable offline.
type ActivityArchiver struct {
	writer    domain.BlobWriter
	store     ActivityArchiveStore
	retention time.Duration
	now       func() time.Time
}

// NewActivityArchiver creates an archiver that keeps retentionDays of
// activity in the primary store.
func NewActivityArchiver(writer domain.BlobWriter, store ActivityArchiveStore, retentionDays int) *ActivityArchiver {
	return &ActivityArchiver{
		writer:    writer,
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// ArchiveOnce runs a single archival pass. Rows older than the retention
// cutoff are serialized to JSONL, uploaded, and only then deleted from the
// store. Returns the number of rows archived.
func (a *ActivityArchiver) ArchiveOnce(ctx context.Context) (int, error) {
	if a.retention <= 0 {
		return 0, nil
	}
	cutoff := a.now().UTC().Add(-a.retention)

	items, err := a.store.ListBefore(ctx, cutoff, 0)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive activity query: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(items)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive activity marshal: %w", err)
	}

	path := archivePath(cutoff, a.now().UTC())
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive activity upload %s: %w", path, err)
	}

	// Delete only after the upload succeeded.
	if _, err := a.store.DeleteBefore(ctx, cutoff); err != nil {
		return len(items), fmt.Errorf("s3blob: archive activity delete: %w", err)
	}

	return len(items), nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// cutoff date with the pass time as a uniquifier:
//
//	archive/activity/2026-08-01/1754042400000000000.jsonl
//
// Two passes sharing a cutoff date must never collide: the earlier object's
// rows are already gone from the store, so overwriting it would lose them.
func archivePath(cutoff, runAt time.Time) string {
	return fmt.Sprintf("archive/activity/%s/%d.jsonl", cutoff.Format("2006-01-02"), runAt.UnixNano())
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ActivityArchiver)(nil)
