package service

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/pkg/storage"
)

func newArchiveFixture(t *testing.T) *ArchiveService {
	t.Helper()
	store, err := storage.NewExportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewArchiveService(store, signer, time.Hour, nil)
}

func TestArchiveServiceArchiveThenDownload(t *testing.T) {
	svc := newArchiveFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	token, err := svc.Archive("rosters/roster-1.csv", []byte("id,grade\n42,7\n"))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The copy is written off the request path; poll until it lands.
	deadline := time.Now().Add(2 * time.Second)
	var file *os.File
	for {
		file, err = svc.Download(token)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "id,grade\n42,7\n", string(data))
}

func TestArchiveServiceDownloadRejectsBadToken(t *testing.T) {
	svc := newArchiveFixture(t)

	_, err := svc.Download("not.a.valid.token")
	require.Error(t, err)
}
