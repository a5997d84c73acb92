package polish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolisher(url string) *HTTPPolisher {
	p := NewHTTPPolisher(url, "test-key", "default-model")
	p.Backoff = time.Millisecond
	return p
}

func TestPolishSuccess(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"generated_text":"much better text"}]`))
	}))
	defer srv.Close()

	out, err := newTestPolisher(srv.URL).Polish(context.Background(), "ok text", "my-model")
	require.NoError(t, err)
	assert.Equal(t, "much better text", out)
	assert.Equal(t, "/my-model", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestPolishFallsBackToDefaultModel(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"generated_text":"x"}]`))
	}))
	defer srv.Close()

	_, err := newTestPolisher(srv.URL).Polish(context.Background(), "text", "  ")
	require.NoError(t, err)
	assert.Equal(t, "/default-model", gotPath)
}

func TestPolishRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text":"third time lucky"}]`))
	}))
	defer srv.Close()

	p := newTestPolisher(srv.URL)
	p.Client = srv.Client()

	out, err := p.Polish(context.Background(), "text", "m")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestPolishDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newTestPolisher(srv.URL).Polish(context.Background(), "text", "m")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPolishRequiresAPIKey(t *testing.T) {
	p := NewHTTPPolisher("http://example.invalid", "", "m")
	_, err := p.Polish(context.Background(), "text", "m")
	require.Error(t, err)
}

func TestMockPolisher(t *testing.T) {
	out, err := Mock{}.Polish(context.Background(), "raw words", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "raw words [polished]", out)
}
