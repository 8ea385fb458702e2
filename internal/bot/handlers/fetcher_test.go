package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPhotoFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png bytes"))
	}))
	defer srv.Close()

	f := NewHTTPPhotoFetcher(srv.Client())

	img, err := f.Fetch(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("png bytes"), img.Data)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestHTTPPhotoFetcherRejectsOversizedPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	f := NewHTTPPhotoFetcher(srv.Client())

	f.maxBytes = 9
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 9 bytes")

	f.maxBytes = 10
	img, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, img.Data, 10)
}
