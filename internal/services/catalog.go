package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hoshichaam/movie_bff_go/internal/models"
)

const (
	DefaultCatalogURL = "https://api.themoviedb.org/3"
	catalogService    = "catalog"
	maxCatalogBody    = 8 << 20
)

// CatalogClient proxies read-only queries to the movie catalog. Every call
// is exactly one GET; nothing is cached or retried.
type CatalogClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewCatalogClient(apiKey, baseURL string, timeout time.Duration) (*CatalogClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CatalogClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *CatalogClient) Popular(ctx context.Context, page int) ([]byte, error) {
	return c.get(ctx, "/movie/popular", pageValues(page))
}

func (c *CatalogClient) NowPlaying(ctx context.Context, page int) ([]byte, error) {
	return c.get(ctx, "/movie/now_playing", pageValues(page))
}

func (c *CatalogClient) TopRated(ctx context.Context, page int) ([]byte, error) {
	return c.get(ctx, "/movie/top_rated", pageValues(page))
}

func (c *CatalogClient) Upcoming(ctx context.Context, page int) ([]byte, error) {
	return c.get(ctx, "/movie/upcoming", pageValues(page))
}

// Genres returns only the genres array of the upstream genre list.
func (c *CatalogClient) Genres(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, "/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	return projectGenres(body)
}

func (c *CatalogClient) Movie(ctx context.Context, id int) ([]byte, error) {
	return c.get(ctx, "/movie/"+strconv.Itoa(id), nil)
}

func (c *CatalogClient) Videos(ctx context.Context, id int) ([]byte, error) {
	return c.get(ctx, "/movie/"+strconv.Itoa(id)+"/videos", nil)
}

func (c *CatalogClient) Search(ctx context.Context, q models.SearchQuery) ([]byte, error) {
	v := pageValues(q.Page)
	v.Set("query", strings.TrimSpace(q.Term))
	return c.get(ctx, "/search/movie", v)
}

func (c *CatalogClient) Discover(ctx context.Context, q models.DiscoverQuery) ([]byte, error) {
	return c.get(ctx, "/discover/movie", discoverValues(q))
}

func (c *CatalogClient) ListByGenre(ctx context.Context, q models.ListMoviesQuery) ([]byte, error) {
	v := pageValues(q.Page)
	v.Set("with_genres", q.GenreID)
	return c.get(ctx, "/discover/movie", v)
}

func (c *CatalogClient) Filter(ctx context.Context, q models.MovieFilterQuery) ([]byte, error) {
	return c.get(ctx, "/discover/movie", filterValues(q))
}

// filterValues maps the optional filter fields onto catalog query keys.
// Absent fields add nothing.
func filterValues(q models.MovieFilterQuery) url.Values {
	v := pageValues(q.Page)
	if g := strings.TrimSpace(q.Genre); g != "" {
		v.Set("with_genres", g)
	}
	if q.SortByPopularity() {
		v.Set("sort_by", "popularity.desc")
	}
	if t := strings.TrimSpace(q.Title); t != "" {
		v.Set("query", t)
	}
	return v
}

func discoverValues(q models.DiscoverQuery) url.Values {
	v := pageValues(q.Page)
	if g := strings.TrimSpace(q.GenreID); g != "" {
		v.Set("with_genres", g)
	}
	if k := strings.TrimSpace(q.Keywords); k != "" {
		v.Set("with_keywords", k)
	}
	return v
}

func pageValues(page int) url.Values {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}

func projectGenres(body []byte) ([]byte, error) {
	var list struct {
		Genres json.RawMessage `json:"genres"`
	}
	if err := sonic.Unmarshal(body, &list); err != nil {
		return nil, ErrUpstream{Service: catalogService, Msg: "malformed genre list"}
	}
	if len(list.Genres) == 0 || bytes.Equal(list.Genres, []byte("null")) {
		return nil, ErrUpstream{Service: catalogService, Msg: "genre list missing"}
	}
	return []byte(list.Genres), nil
}

func (c *CatalogClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("catalog request failed", "path", path, "error", withoutURL(err))
		return nil, transportError(catalogService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBody))
	if err != nil {
		return nil, transportError(catalogService, err)
	}
	if resp.StatusCode >= 300 {
		slog.Warn("catalog returned error status", "path", path, "status", resp.StatusCode)
		return nil, ErrUpstream{Service: catalogService, Status: resp.StatusCode, Msg: "request failed"}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrUpstream{Service: catalogService, Status: http.StatusNotFound, Msg: "no data returned"}
	}
	if !sonic.Valid(trimmed) {
		return nil, ErrUpstream{Service: catalogService, Msg: "malformed response"}
	}
	return trimmed, nil
}
