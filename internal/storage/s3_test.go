//go:build integration

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/doclens-ai/doclens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3Store(ctx context.Context, t *testing.T) *S3Store {
	t.Helper()

	mc := testutil.NewMinIOContainer(ctx, t)
	t.Cleanup(func() { _ = mc.Terminate(ctx) })

	store, err := NewS3Store(ctx, S3Config{
		Endpoint:        mc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     mc.AccessKey,
		SecretAccessKey: mc.SecretKey,
		Bucket:          "doclens-archive",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(ctx))
	return store
}

func TestS3Store_ArchiveAndExists(t *testing.T) {
	ctx := context.Background()
	store := newTestS3Store(ctx, t)

	err := store.Archive(ctx, "doc-1/report.pdf", "application/pdf", strings.NewReader("content"))
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "doc-1/report.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "doc-1/missing.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestS3Store_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestS3Store(ctx, t)

	require.NoError(t, store.Archive(ctx, "doc-1/report.pdf", "application/pdf", strings.NewReader("content")))
	require.NoError(t, store.Delete(ctx, "doc-1/report.pdf"))

	exists, err := store.Exists(ctx, "doc-1/report.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestS3Store_EnsureBucket_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestS3Store(ctx, t)

	assert.NoError(t, store.EnsureBucket(ctx))
}
