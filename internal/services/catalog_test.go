package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshichaam/movie_bff_go/internal/logger"
	"github.com/hoshichaam/movie_bff_go/internal/models"
)

// catalogStub records the last request and answers with a fixed status/body.
func catalogStub(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	last := &url.URL{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func newTestCatalog(t *testing.T, baseURL string) *CatalogClient {
	t.Helper()
	c, err := NewCatalogClient("secret-key", baseURL, time.Second)
	require.NoError(t, err)
	return c
}

func TestNewCatalogClient_RequiresAPIKey(t *testing.T) {
	_, err := NewCatalogClient("  ", "", 0)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFilterValues(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		v := filterValues(models.MovieFilterQuery{Genre: "28", Popularity: "true", Title: "Matrix"})
		assert.Equal(t, url.Values{
			"with_genres": {"28"},
			"sort_by":     {"popularity.desc"},
			"query":       {"Matrix"},
		}, v)
	})

	t.Run("empty", func(t *testing.T) {
		v := filterValues(models.MovieFilterQuery{})
		assert.Empty(t, v)
	})

	t.Run("popularity false", func(t *testing.T) {
		v := filterValues(models.MovieFilterQuery{Popularity: "false"})
		assert.NotContains(t, v, "sort_by")
	})

	t.Run("idempotent", func(t *testing.T) {
		q := models.MovieFilterQuery{Genre: "12", Title: "Up", Page: 2}
		assert.Equal(t, filterValues(q), filterValues(q))
		assert.Equal(t, "2", filterValues(q).Get("page"))
	})
}

func TestDiscoverValues(t *testing.T) {
	v := discoverValues(models.DiscoverQuery{GenreID: "35", Keywords: "space"})
	assert.Equal(t, "35", v.Get("with_genres"))
	assert.Equal(t, "space", v.Get("with_keywords"))

	assert.Empty(t, discoverValues(models.DiscoverQuery{}))
}

func TestCatalogClient_PopularPassesBodyThrough(t *testing.T) {
	body := `{"page":1,"results":[{"id":550,"title":"Fight Club"}]}`
	srv, last := catalogStub(t, http.StatusOK, body)
	c := newTestCatalog(t, srv.URL)

	out, err := c.Popular(context.Background(), 0)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
	assert.Equal(t, "/movie/popular", last.Path)
	assert.Equal(t, "secret-key", last.Query().Get("api_key"))
	assert.False(t, last.Query().Has("page"))
}

func TestCatalogClient_Paths(t *testing.T) {
	srv, last := catalogStub(t, http.StatusOK, `{"results":[]}`)
	c := newTestCatalog(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() ([]byte, error)
		path  string
		query url.Values
	}{
		{"now playing", func() ([]byte, error) { return c.NowPlaying(ctx, 3) }, "/movie/now_playing", url.Values{"page": {"3"}}},
		{"top rated", func() ([]byte, error) { return c.TopRated(ctx, 0) }, "/movie/top_rated", nil},
		{"upcoming", func() ([]byte, error) { return c.Upcoming(ctx, 0) }, "/movie/upcoming", nil},
		{"movie", func() ([]byte, error) { return c.Movie(ctx, 550) }, "/movie/550", nil},
		{"videos", func() ([]byte, error) { return c.Videos(ctx, 550) }, "/movie/550/videos", nil},
		{"search", func() ([]byte, error) {
			return c.Search(ctx, models.SearchQuery{Term: "alien"})
		}, "/search/movie", url.Values{"query": {"alien"}}},
		{"list by genre", func() ([]byte, error) {
			return c.ListByGenre(ctx, models.ListMoviesQuery{GenreID: "16"})
		}, "/discover/movie", url.Values{"with_genres": {"16"}}},
		{"filter", func() ([]byte, error) {
			return c.Filter(ctx, models.MovieFilterQuery{Genre: "28", Popularity: "true", Title: "Matrix"})
		}, "/discover/movie", url.Values{"with_genres": {"28"}, "sort_by": {"popularity.desc"}, "query": {"Matrix"}}},
		{"discover", func() ([]byte, error) {
			return c.Discover(ctx, models.DiscoverQuery{Keywords: "heist"})
		}, "/discover/movie", url.Values{"with_keywords": {"heist"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.path, last.Path)

			q := last.Query()
			assert.Equal(t, "secret-key", q.Get("api_key"))
			q.Del("api_key")
			if tt.query == nil {
				assert.Empty(t, q)
			} else {
				assert.Equal(t, tt.query, q)
			}
		})
	}
}

func TestCatalogClient_GenresProjection(t *testing.T) {
	srv, last := catalogStub(t, http.StatusOK, `{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}],"other":true}`)
	c := newTestCatalog(t, srv.URL)

	out, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]`, string(out))
	assert.Equal(t, "/genre/movie/list", last.Path)
}

func TestCatalogClient_GenresMissing(t *testing.T) {
	srv, _ := catalogStub(t, http.StatusOK, `{"other":true}`)
	c := newTestCatalog(t, srv.URL)

	_, err := c.Genres(context.Background())
	var up ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusInternalServerError, up.StatusCode())
}

func TestCatalogClient_PreservesUpstreamStatus(t *testing.T) {
	srv, _ := catalogStub(t, http.StatusNotFound, `{"status_code":34,"status_message":"not found"}`)
	c := newTestCatalog(t, srv.URL)

	_, err := c.Movie(context.Background(), 999999)
	var up ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusNotFound, up.StatusCode())
	assert.Equal(t, "catalog", up.Service)
}

func TestCatalogClient_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "null", "  \n"} {
		srv, _ := catalogStub(t, http.StatusOK, body)
		c := newTestCatalog(t, srv.URL)

		_, err := c.Popular(context.Background(), 0)
		var up ErrUpstream
		require.ErrorAs(t, err, &up, "body %q", body)
		assert.Equal(t, http.StatusNotFound, up.StatusCode())
	}
}

func TestCatalogClient_EmptyResultsAreSuccess(t *testing.T) {
	srv, _ := catalogStub(t, http.StatusOK, `{"page":1,"results":[],"total_results":0}`)
	c := newTestCatalog(t, srv.URL)

	out, err := c.Search(context.Background(), models.SearchQuery{Term: "zzzzzz"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"results":[],"total_results":0}`, string(out))
}

func TestCatalogClient_MalformedBody(t *testing.T) {
	srv, _ := catalogStub(t, http.StatusOK, `{"page":`)
	c := newTestCatalog(t, srv.URL)

	_, err := c.Popular(context.Background(), 0)
	var up ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusInternalServerError, up.StatusCode())
}

func TestCatalogClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewCatalogClient("secret-key", srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = c.Popular(context.Background(), 0)
	var up ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusGatewayTimeout, up.StatusCode())
}

func TestCatalogClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestCatalog(t, base)
	_, err := c.Popular(context.Background(), 0)
	var up ErrUpstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusInternalServerError, up.StatusCode())
	assert.False(t, errors.Is(err, ErrMissingAPIKey))
}

func TestCatalogClient_UnreachableKeepsKeyOutOfLogs(t *testing.T) {
	var buf bytes.Buffer
	logger.InitTo(&buf, "debug", "text")
	t.Cleanup(func() { logger.Init("info", "text") })

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewCatalogClient("SECRETKEY123", base, time.Second)
	require.NoError(t, err)
	_, err = c.Popular(context.Background(), 0)
	require.Error(t, err)

	assert.Contains(t, buf.String(), "catalog request failed")
	assert.NotContains(t, buf.String(), "SECRETKEY123")
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}

func TestWithoutURL(t *testing.T) {
	inner := errors.New("connection refused")
	err := &url.Error{Op: "Get", URL: "http://x/movie?api_key=k", Err: inner}
	assert.Equal(t, inner, withoutURL(err))
	assert.Equal(t, inner, withoutURL(inner))
}
