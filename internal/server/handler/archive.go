package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// ArchiveService defines the methods the archive handler requires.
type ArchiveService interface {
	List(ctx context.Context) ([]domain.BlobInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ArchiveHandler serves activity batches that have aged out of the primary
// store into cold storage.
type ArchiveHandler struct {
	archive ArchiveService
	logger  *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(archive ArchiveService, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archive: archive,
		logger:  logger,
	}
}

type archiveEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// List returns metadata for every archived activity batch.
// GET /api/activity/archive
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.archive.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list archives")
		return
	}

	entries := make([]archiveEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, archiveEntry{
			Key:          info.Path,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"archives": entries})
}

// Download streams one archived batch as newline-delimited JSON.
// GET /api/activity/archive/{key...}
func (h *ArchiveHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid archive key")
		return
	}

	rc, err := h.archive.Open(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to open archive")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already out; nothing left to do but note the abort.
		h.logger.Warn("archive stream aborted", slog.String("error", err.Error()))
	}
}
