package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// archivePrefix is the key prefix the archiver writes activity batches under.
const archivePrefix = "archive/activity/"

// ArchiveService serves the activity history that has aged out of Postgres
// into cold storage, so the API can still hand out old feed data after the
// retention window.
type ArchiveService struct {
	reader domain.BlobReader
}

// NewArchiveService creates an ArchiveService over the given blob reader.
func NewArchiveService(reader domain.BlobReader) *ArchiveService {
	return &ArchiveService{reader: reader}
}

// List returns metadata for every archived activity batch, keys relative to
// the archive prefix.
func (s *ArchiveService) List(ctx context.Context) ([]domain.BlobInfo, error) {
	infos, err := s.reader.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	for i := range infos {
		infos[i].Path = strings.TrimPrefix(infos[i].Path, archivePrefix)
	}
	return infos, nil
}

// Open streams one archived batch by its relative key. The caller closes the
// returned reader.
func (s *ArchiveService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.reader.Get(ctx, archivePrefix+key)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", key, err)
	}
	return rc, nil
}
