package render

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func serve(t *testing.T, status int, body []byte) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_PNG(t *testing.T) {
	data := encodePNG(t, 4, 2)
	srv := serve(t, http.StatusOK, data)

	f := &Fetcher{Client: srv.Client()}
	img, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, data, img.Data)
}

func TestFetch_JPEG(t *testing.T) {
	srv := serve(t, http.StatusOK, encodeJPEG(t, 8, 8))

	f := &Fetcher{Client: srv.Client()}
	img, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, 8, img.Width)
	assert.Equal(t, 8, img.Height)
}

func TestFetch_MalformedBytes(t *testing.T) {
	srv := serve(t, http.StatusOK, []byte("not an image"))

	f := &Fetcher{Client: srv.Client()}
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "decoding image")
}

func TestFetch_RemoteFailure(t *testing.T) {
	srv := serve(t, http.StatusNotFound, nil)

	f := &Fetcher{Client: srv.Client()}
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "remote returned")
}
