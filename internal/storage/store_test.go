package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore() ObjectStore {
	return NewStore(afero.NewMemMapFs(), "product-images", "https://loja.example.com/media/")
}

func TestPutListDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	obj, err := store.Put(ctx, "products/1700000000000-abc.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "products/1700000000000-abc.jpg", obj.Path)
	assert.Equal(t, "https://loja.example.com/media/products/1700000000000-abc.jpg", obj.URL)
	assert.Equal(t, int64(len("jpeg-bytes")), obj.Size)

	_, err = store.Put(ctx, "banners/home.png", strings.NewReader("png"))
	require.NoError(t, err)

	products, err := store.List(ctx, "products")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, obj.Path, products[0].Path)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, obj.Path))
	assert.ErrorIs(t, store.Delete(ctx, obj.Path), ErrObjectNotFound)
}

func TestListMissingPrefixIsEmpty(t *testing.T) {
	objects, err := newMemStore().List(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	for _, p := range []string{"", "/", "../etc/passwd", "products/../../secret"} {
		_, err := store.Put(ctx, p, strings.NewReader("x"))
		assert.True(t, errors.Is(err, ErrInvalidPath), "Put(%q) = %v", p, err)
	}
}

func TestHandlerServesStoredObjects(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	_, err := store.Put(ctx, "products/sofa.jpg", strings.NewReader("sofa-image"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.StripPrefix("/media", store.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/media/products/sofa.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sofa-image", string(body))

	missing, err := http.Get(srv.URL + "/media/products/none.jpg")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestPingAndCancelledContext(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Put(ctx, "products/x.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStoreCreatesBucket(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "product-images", "/media")
	require.NoError(t, err)

	obj, err := store.Put(context.Background(), "products/a.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	assert.Equal(t, "/media/products/a.jpg", obj.URL)
	require.NoError(t, store.Ping(context.Background()))
}
