package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(Config{
		Retries:       retries,
		RatePerSecond: 1000,
		BaseBackoff:   time.Millisecond,
	}, nil)
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{}, nil)

	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Zero(t, client.httpClient.Timeout)
	transport, ok := client.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, 30*time.Second, transport.TLSHandshakeTimeout)
	assert.Equal(t, 3, client.retries)
	assert.Equal(t, "listingmatch/1.0", client.userAgent)
}

func TestExponentialBackoff(t *testing.T) {
	client := NewClient(Config{}, nil)
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, client.exponentialBackoff(tt.attempt))
		})
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products.txt", r.URL.Path)
		assert.Equal(t, "listingmatch/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"product_name":"a"}` + "\n"))
	}))
	defer server.Close()

	body, err := newTestClient(3).Fetch(context.Background(), server.URL+"/products.txt")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, `{"product_name":"a"}`+"\n", string(data))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := newTestClient(3).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(2).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrRemoteFetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(3).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrRemoteFetch)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Fetch(ctx, server.URL)
	assert.Error(t, err)
}

func TestFetch_SlowBodyOutlivesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 6; i++ {
			w.Write([]byte(`{"title":"line"}` + "\n"))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := NewClient(Config{
		Timeout:       100 * time.Millisecond,
		RatePerSecond: 1000,
		BaseBackoff:   time.Millisecond,
	}, nil)

	body, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(string(data), "\n"))
}

func TestFetch_SlowHeadersTimeOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Config{
		Timeout:       50 * time.Millisecond,
		Retries:       1,
		RatePerSecond: 1000,
	}, nil)

	_, err := client.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrRemoteFetch)
}
