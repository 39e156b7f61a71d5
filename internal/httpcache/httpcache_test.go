package httpcache

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_MissThenHitSharesStorage(t *testing.T) {
	AllowInsecureForTests()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New()
	ctx := t.Context()

	first, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)

	second, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)

	// Invariant 5 (spec.md §8): two fetches of the same URL without an
	// intervening network change share storage.
	assert.Same(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestCache_StaleOnNetworkFailure(t *testing.T) {
	AllowInsecureForTests()

	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			panic(http.ErrAbortHandler)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New()
	ctx := t.Context()

	body, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)

	fail.Store(true)

	stale, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body.Bytes, stale.Bytes)
}

func TestCache_MissWithNoCacheFails(t *testing.T) {
	AllowInsecureForTests()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New()
	_, err := c.Get(t.Context(), srv.URL)
	assert.Error(t, err)
}

func TestValidateURL_RejectsPlainHTTP(t *testing.T) {
	c := New()
	_, err := c.Get(t.Context(), "http://example.com/pkg")
	assert.Error(t, err)
}
