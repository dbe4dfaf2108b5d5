package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
)

// Object describes a stored file.
type Object struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObjectStore keeps product images in a bucket and serves them publicly.
type ObjectStore interface {
	Put(ctx context.Context, objectPath string, r io.Reader) (Object, error)
	Delete(ctx context.Context, objectPath string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	URL(objectPath string) string
	Handler() http.Handler
	Ping(ctx context.Context) error
}

type aferoStore struct {
	fs        afero.Fs
	bucket    string
	publicURL string
}

// NewLocalStore stores objects under root/bucket on the local disk.
func NewLocalStore(root, bucket, publicURL string) (ObjectStore, error) {
	dir := path.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir), bucket, publicURL), nil
}

// NewStore wraps an afero filesystem whose root is the bucket.
func NewStore(fsys afero.Fs, bucket, publicURL string) ObjectStore {
	return &aferoStore{fs: fsys, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func cleanPath(objectPath string) (string, error) {
	p := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	if p == "" || p == "." || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return p, nil
}

func (s *aferoStore) Put(ctx context.Context, objectPath string, r io.Reader) (Object, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create directory for %s: %w", p, err)
	}

	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("failed to open %s: %w", p, err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return Object{}, fmt.Errorf("failed to write %s: %w", p, err)
	}

	return Object{Path: p, URL: s.URL(p), Size: size, UpdatedAt: time.Now()}, nil
}

func (s *aferoStore) Delete(ctx context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}

// List returns the files under prefix, newest first.
func (s *aferoStore) List(ctx context.Context, prefix string) ([]Object, error) {
	root := "/"
	if prefix != "" {
		p, err := cleanPath(prefix)
		if err != nil {
			return nil, err
		}
		root = p
	}

	objects := []Object{}
	err := afero.Walk(s.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(path.Clean("/"+p), "/")
		objects = append(objects, Object{Path: rel, URL: s.URL(rel), Size: info.Size(), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.bucket, err)
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].UpdatedAt.After(objects[j].UpdatedAt)
	})
	return objects, nil
}

// URL is the public address of objectPath.
func (s *aferoStore) URL(objectPath string) string {
	return s.publicURL + "/" + strings.TrimPrefix(objectPath, "/")
}

// Handler serves the bucket read-only. Mount it with the public URL prefix stripped.
func (s *aferoStore) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(afero.NewReadOnlyFs(s.fs)).Dir("/"))
}

// Ping checks that the bucket can be listed.
func (s *aferoStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := afero.ReadDir(s.fs, "/"); err != nil {
		return fmt.Errorf("bucket %s is not readable: %w", s.bucket, err)
	}
	return nil
}
