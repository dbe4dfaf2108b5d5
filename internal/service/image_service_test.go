package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestImageService(maxBytes int64) (*imageService, storage.ObjectStore) {
	store := storage.NewStore(afero.NewMemMapFs(), "product-images", "https://loja.example.com/media")
	svc := NewImageService(store, 1, zap.NewNop()).(*imageService)
	svc.maxBytes = maxBytes
	svc.now = func() time.Time { return time.UnixMilli(1718000000000) }
	return svc, store
}

func TestUploadAcceptsImages(t *testing.T) {
	svc, store := newTestImageService(1 << 20)
	ctx := context.Background()

	obj, err := svc.Upload(ctx, "Sofá Sala.PNG", bytes.NewReader(append(pngSignature, make([]byte, 4096)...)))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^products/1718000000000-[0-9a-f]{12}\.png$`), obj.Path)
	assert.Equal(t, "https://loja.example.com/media/"+obj.Path, obj.URL)
	assert.Equal(t, int64(len(pngSignature)+4096), obj.Size)

	listed, err := store.List(ctx, "products")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestUploadNamesObjectAfterDetectedType(t *testing.T) {
	svc, _ := newTestImageService(1 << 20)

	for _, filename := range []string{"blob", "pagina.html", "foto.jpg", "x.svg", "../../etc.png/"} {
		body := append(append([]byte{}, pngSignature...), []byte("<html><script>alert(1)</script></html>")...)
		obj, err := svc.Upload(context.Background(), filename, bytes.NewReader(body))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(obj.Path, ".png"), "%s stored as %s", filename, obj.Path)
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	svc, store := newTestImageService(1 << 20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "foto.jpg", strings.NewReader("definitely not a picture"))
	assert.True(t, errors.Is(err, domain.ErrValidation), "text upload = %v", err)

	_, err = svc.Upload(ctx, "vazio.png", strings.NewReader(""))
	assert.True(t, errors.Is(err, domain.ErrValidation), "empty upload = %v", err)

	listed, err := store.List(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	svc, store := newTestImageService(64)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "grande.png", bytes.NewReader(append(pngSignature, make([]byte, 128)...)))
	assert.True(t, errors.Is(err, domain.ErrValidation), "oversized upload = %v", err)

	listed, err := store.List(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, listed, "oversized upload must not be kept")
}

func TestDeleteAcceptsPathOrURL(t *testing.T) {
	svc, _ := newTestImageService(1 << 20)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "a.png", bytes.NewReader(pngSignature))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "b.png", bytes.NewReader(pngSignature))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.URL))
	require.NoError(t, svc.Delete(ctx, second.Path))
	assert.ErrorIs(t, svc.Delete(ctx, second.Path), storage.ErrObjectNotFound)

	remaining, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
