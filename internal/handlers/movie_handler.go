package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hoshichaam/movie_bff_go/internal/models"
	response "github.com/hoshichaam/movie_bff_go/pkg/response"
)

// MovieCatalog is what the movie routes need from the catalog client.
type MovieCatalog interface {
	Popular(ctx context.Context, page int) ([]byte, error)
	NowPlaying(ctx context.Context, page int) ([]byte, error)
	TopRated(ctx context.Context, page int) ([]byte, error)
	Upcoming(ctx context.Context, page int) ([]byte, error)
	Genres(ctx context.Context) ([]byte, error)
	Movie(ctx context.Context, id int) ([]byte, error)
	Videos(ctx context.Context, id int) ([]byte, error)
	Search(ctx context.Context, q models.SearchQuery) ([]byte, error)
	Discover(ctx context.Context, q models.DiscoverQuery) ([]byte, error)
	ListByGenre(ctx context.Context, q models.ListMoviesQuery) ([]byte, error)
	Filter(ctx context.Context, q models.MovieFilterQuery) ([]byte, error)
}

type MovieHandler struct {
	catalog MovieCatalog
}

func NewMovieHandler(c MovieCatalog) *MovieHandler {
	return &MovieHandler{catalog: c}
}

func (h *MovieHandler) list(fetch func(context.Context, int) ([]byte, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q models.PageQuery
		if ok, err := parseQuery(c, &q); !ok {
			return err
		}
		return h.reply(c)(fetch(c.UserContext(), q.Page))
	}
}

// GET /movie/popular
func (h *MovieHandler) Popular(c *fiber.Ctx) error {
	return h.list(h.catalog.Popular)(c)
}

// GET /movie/now_playing
func (h *MovieHandler) NowPlaying(c *fiber.Ctx) error {
	return h.list(h.catalog.NowPlaying)(c)
}

// GET /movie/top_rated
func (h *MovieHandler) TopRated(c *fiber.Ctx) error {
	return h.list(h.catalog.TopRated)(c)
}

// GET /movie/upcoming
func (h *MovieHandler) Upcoming(c *fiber.Ctx) error {
	return h.list(h.catalog.Upcoming)(c)
}

// GET /movie/genres
func (h *MovieHandler) Genres(c *fiber.Ctx) error {
	return h.reply(c)(h.catalog.Genres(c.UserContext()))
}

// GET /movie/filter
func (h *MovieHandler) Filter(c *fiber.Ctx) error {
	var q models.MovieFilterQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	return h.reply(c)(h.catalog.Filter(c.UserContext(), q))
}

// GET /movie/discover
func (h *MovieHandler) Discover(c *fiber.Ctx) error {
	var q models.DiscoverQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	return h.reply(c)(h.catalog.Discover(c.UserContext(), q))
}

// GET /movie/search
func (h *MovieHandler) Search(c *fiber.Ctx) error {
	var q models.SearchQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	return h.reply(c)(h.catalog.Search(c.UserContext(), q))
}

// GET /movie/list-movies
func (h *MovieHandler) ListMovies(c *fiber.Ctx) error {
	var q models.ListMoviesQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	return h.reply(c)(h.catalog.ListByGenre(c.UserContext(), q))
}

// GET /movie/:id/videos
func (h *MovieHandler) Videos(c *fiber.Ctx) error {
	id, ok := movieID(c)
	if !ok {
		return response.ValidationError(c, map[string]string{"id": "must be a positive integer"})
	}
	return h.reply(c)(h.catalog.Videos(c.UserContext(), id))
}

// GET /movie/:id
// Non-numeric ids are rejected here and never reach the catalog.
func (h *MovieHandler) Movie(c *fiber.Ctx) error {
	id, ok := movieID(c)
	if !ok {
		return response.ValidationError(c, map[string]string{"id": "must be a positive integer"})
	}
	return h.reply(c)(h.catalog.Movie(c.UserContext(), id))
}

func movieID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *MovieHandler) reply(c *fiber.Ctx) func([]byte, error) error {
	return func(body []byte, err error) error {
		if err != nil {
			return mapError(c, err)
		}
		return response.Raw(c, body)
	}
}
