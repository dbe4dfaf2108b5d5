package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	imagePrefix = "products"
	sniffLen    = 3072
)

// ImageService manages the product photos in the object store.
type ImageService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (storage.Object, error)
	Delete(ctx context.Context, objectPath string) error
	List(ctx context.Context) ([]storage.Object, error)
}

type imageService struct {
	store    storage.ObjectStore
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewImageService(store storage.ObjectStore, maxUploadMB int64, logger *zap.Logger) ImageService {
	return &imageService{
		store:    store,
		maxBytes: maxUploadMB << 20,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores an image under products/<millis>-<random>.<ext> and returns
// its public location. The content, not the filename, decides whether the
// file is an image.
func (s *imageService) Upload(ctx context.Context, filename string, r io.Reader) (storage.Object, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return storage.Object{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if n == 0 {
		return storage.Object{}, domain.NewValidationError("file", "file is empty")
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return storage.Object{}, domain.NewValidationError("file", fmt.Sprintf("file must be an image, got %s", mtype.String()))
	}

	objectPath := s.objectPath(mtype)
	body := io.LimitReader(io.MultiReader(bytes.NewReader(header), r), s.maxBytes+1)

	obj, err := s.store.Put(ctx, objectPath, body)
	if err != nil {
		return storage.Object{}, err
	}
	if obj.Size > s.maxBytes {
		_ = s.store.Delete(ctx, obj.Path)
		return storage.Object{}, domain.NewValidationError("file", fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes>>20))
	}

	s.logger.Info("Image uploaded",
		zap.String("path", obj.Path),
		zap.String("filename", filename),
		zap.String("content_type", mtype.String()),
		zap.Int64("size", obj.Size),
	)
	return obj, nil
}

// objectPath names the object after the sniffed type, never the client's
// file name.
func (s *imageService) objectPath(mtype *mimetype.MIME) string {
	ext := strings.TrimPrefix(mtype.Extension(), ".")
	if ext == "" {
		ext = "img"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d-%s.%s", imagePrefix, s.now().UnixMilli(), random, ext)
}

// Delete accepts either an object path or the public URL returned by Upload.
func (s *imageService) Delete(ctx context.Context, objectPath string) error {
	if i := strings.Index(objectPath, imagePrefix+"/"); i > 0 {
		objectPath = objectPath[i:]
	}

	if err := s.store.Delete(ctx, objectPath); err != nil {
		return err
	}

	s.logger.Info("Image deleted", zap.String("path", objectPath))
	return nil
}

func (s *imageService) List(ctx context.Context) ([]storage.Object, error) {
	return s.store.List(ctx, imagePrefix)
}
