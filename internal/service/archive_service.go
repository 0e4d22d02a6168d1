package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/jobs"
	"github.com/sonsbeekmedia/competgrade-api/pkg/storage"
)

type archivePayload struct {
	Filename string
	Data     []byte
}

// ArchiveService keeps a copy of every roster export on disk and hands out
// signed download tokens. Writes happen off the request path through a
// worker queue.
type ArchiveService struct {
	store     *storage.ExportStore
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
}

// NewArchiveService wires the store, the signer and the background queue.
func NewArchiveService(store *storage.ExportStore, signer *storage.SignedURLSigner, retention time.Duration, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	s := &ArchiveService{
		store:     store,
		signer:    signer,
		retention: retention,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("export-archive", s.handle, jobs.QueueConfig{
		Workers: 2,
		Logger:  logger,
	})
	return s
}

// Start launches the archive workers.
func (s *ArchiveService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the archive workers.
func (s *ArchiveService) Stop() {
	s.queue.Stop()
}

// Archive schedules the export copy and returns a signed download token
// for it. The copy lands asynchronously: the caller already holds the
// export bytes (they go out inline with the originating response), and
// the token stays valid for the full TTL, so a download racing the
// worker by a few milliseconds can simply be retried.
func (s *ArchiveService) Archive(filename string, payload []byte) (string, error) {
	exportID := uuid.NewString()
	data := make([]byte, len(payload))
	copy(data, payload)

	if err := s.queue.Enqueue(jobs.Job{
		ID:      exportID,
		Type:    "archive-export",
		Payload: archivePayload{Filename: filename, Data: data},
	}); err != nil {
		return "", fmt.Errorf("enqueue export archive: %w", err)
	}

	token, _, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return "", fmt.Errorf("sign export token: %w", err)
	}
	return token, nil
}

// Download validates a token and opens the archived file.
func (s *ArchiveService) Download(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
	}
	return file, nil
}

// Prune removes archived exports older than the retention window.
func (s *ArchiveService) Prune() {
	deleted, err := s.store.CleanupOlderThan(s.retention)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("pruned archived exports", zap.Int("count", len(deleted)))
	}
}

func (s *ArchiveService) handle(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload type %T", job.Payload)
	}
	if _, err := s.store.Save(payload.Filename, payload.Data); err != nil {
		return err
	}
	s.logger.Debug("export archived", zap.String("file", payload.Filename))
	return nil
}
