package rickmorty

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wubba/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL+"/api", Options{Attempts: 3, RetryDelay: time.Millisecond}, logger)
}

const episodePageOne = `{
  "info": {"count": 51, "pages": 3, "next": "https://rickandmortyapi.com/api/episode?page=2", "prev": null},
  "results": [
    {"id": 1, "name": "Pilot", "air_date": "December 2, 2013", "episode": "S01E01",
     "characters": ["https://rickandmortyapi.com/api/character/1", "https://rickandmortyapi.com/api/character/2"],
     "created": "2017-11-10T12:56:33.798Z"},
    {"id": 2, "name": "Lawnmower Dog", "air_date": "December 9, 2013", "episode": "S01E02",
     "characters": [], "created": "2017-11-10T12:56:33.916Z"}
  ]
}`

func TestFetchPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/episode", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		fmt.Fprint(w, episodePageOne)
	})

	page, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Number)
	require.Len(t, page.Episodes, 2)
	assert.Equal(t, "Pilot", page.Episodes[0].Name)
	assert.Equal(t, "S01E01", page.Episodes[0].Code)
	assert.Equal(t, []int{1, 2}, page.Episodes[0].CharacterIDs())
	require.NotNil(t, page.Next)
	assert.Equal(t, 2, *page.Next)
}

func TestFetchPageLastPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info":{"count":51,"pages":3,"next":null,"prev":"https://rickandmortyapi.com/api/episode?page=2"},"results":[{"id":51,"name":"Rickmurai Jack","episode":"S05E10"}]}`)
	})

	page, err := client.FetchPage(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, page.Episodes, 1)
	assert.False(t, page.HasNext())
}

func TestFetchPageNotFoundIsExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"There is nothing here"}`)
	})

	page, err := client.FetchPage(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Number)
	assert.Empty(t, page.Episodes)
	assert.False(t, page.HasNext())
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, episodePageOne)
	})

	page, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page.Episodes, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPageGivesUpAsNetworkError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPageDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.FetchPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPageMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>`)
	})

	_, err := client.FetchPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestFetchPageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, Options{Attempts: 2, RetryDelay: time.Millisecond}, nil)
	_, err := client.FetchPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestFetchPageRejectsInvalidNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	_, err := client.FetchPage(context.Background(), 0)
	assert.Error(t, err)
}

func TestFetchCharacters(t *testing.T) {
	t.Run("array response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/character/1,2", r.URL.Path)
			fmt.Fprint(w, `[{"id":1,"name":"Rick Sanchez","status":"Alive"},{"id":2,"name":"Morty Smith","status":"Alive"}]`)
		})

		chars, err := client.FetchCharacters(context.Background(), []int{1, 2})
		require.NoError(t, err)
		require.Len(t, chars, 2)
		assert.Equal(t, "Morty Smith", chars[1].Name)
	})

	t.Run("single object response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/character/1", r.URL.Path)
			fmt.Fprint(w, `{"id":1,"name":"Rick Sanchez","origin":{"name":"Earth (C-137)"}}`)
		})

		chars, err := client.FetchCharacters(context.Background(), []int{1})
		require.NoError(t, err)
		require.Len(t, chars, 1)
		assert.Equal(t, "Earth (C-137)", chars[0].Origin.Name)
	})

	t.Run("empty ids makes no request", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		chars, err := client.FetchCharacters(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, chars)
	})

	t.Run("single unknown id is empty", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "/api/character/9999", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Character not found"}`)
		})

		chars, err := client.FetchCharacters(context.Background(), []int{9999})
		require.NoError(t, err)
		assert.Empty(t, chars)
		assert.Equal(t, int32(1), calls.Load())
	})
}
