package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"transfers": 1})
	}))
	defer srv.Close()

	c := NewClient("test", srv.Client())
	var out struct {
		Transfers int `json:"transfers"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, 1, out.Transfers)
}

func TestDoUnexpectedStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test", srv.Client())
	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Equal(t, 1, calls, "failures must not be retried")
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test", srv.Client())
	for i := 0; i < 6; i++ {
		_ = c.GetJSON(context.Background(), srv.URL, &struct{}{})
	}

	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, 6, calls)
}

func TestDoWithoutClient(t *testing.T) {
	c := NewClient("test", nil)
	_, err := c.Do(context.Background(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	})
	assert.Error(t, err)
}
