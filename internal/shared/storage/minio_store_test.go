package storage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) storage.BlobStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:        strings.TrimPrefix(srv.URL, "http://"),
		AccessKeyID:     "test",
		SecretAccessKey: "testsecret",
		BucketName:      "hris",
		PathStyle:       true,
	})
	require.NoError(t, err)
	return store
}

func TestMinioStore_Exists(t *testing.T) {
	t.Run("present object", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "/hris/imports/a.xlsx", r.URL.Path)
			w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
			w.Header().Set("ETag", `"abc"`)
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		})

		ok, err := store.Exists(context.Background(), "imports/a.xlsx")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing object", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		ok, err := store.Exists(context.Background(), "imports/missing.xlsx")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMinioStore_DeleteMissingIsNoop(t *testing.T) {
	var calls []string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	deleted, err := store.Delete(context.Background(), "imports/missing.xlsx")
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{http.MethodHead}, calls)
}
