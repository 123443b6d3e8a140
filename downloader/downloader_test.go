package downloader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caltrain.dev/transit/downloader"
)

func TestHTTPGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "sekrit", r.URL.Query().Get("key"))
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	body, err := downloader.HTTPGet(context.Background(), srv.URL, "sekrit", downloader.GetOptions{Timeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
}

func TestHTTPGetNon2xxErrorIsRedacted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := downloader.HTTPGet(context.Background(), srv.URL, "sekrit", downloader.GetOptions{Timeout: time.Second})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "sekrit")
}

func TestHTTPGetMaxSizeTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	body, err := downloader.HTTPGet(context.Background(), srv.URL, "sekrit", downloader.GetOptions{Timeout: time.Second, MaxSize: 4})
	require.NoError(t, err)
	require.Equal(t, "0123", string(body))
}
