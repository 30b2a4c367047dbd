package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type Routes struct {
	Prefix  string
	AppName string
	Movies  *MovieHandler
	Users   *AuthHandler

	// Gate guards the /movie group when GuardMovies is set.
	Gate        fiber.Handler
	GuardMovies bool
}

// Register mounts every route under the global prefix. Static movie paths
// come before /movie/:id so they are not captured by it.
func Register(app *fiber.App, r Routes) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := app.Group("/" + r.Prefix)
	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to " + r.AppName})
	})

	var movie fiber.Router
	if r.GuardMovies && r.Gate != nil {
		movie = api.Group("/movie", r.Gate)
	} else {
		movie = api.Group("/movie")
	}
	movie.Get("/popular", r.Movies.Popular)
	movie.Get("/now_playing", r.Movies.NowPlaying)
	movie.Get("/upcoming", r.Movies.Upcoming)
	movie.Get("/top_rated", r.Movies.TopRated)
	movie.Get("/genres", r.Movies.Genres)
	movie.Get("/filter", r.Movies.Filter)
	movie.Get("/discover", r.Movies.Discover)
	movie.Get("/search", r.Movies.Search)
	movie.Get("/list-movies", r.Movies.ListMovies)
	movie.Get("/:id/videos", r.Movies.Videos)
	movie.Get("/:id", r.Movies.Movie)

	user := api.Group("/user")
	user.Post("/register", r.Users.Register)
	user.Post("/login", r.Users.Login)
	user.Post("/refresh-auth", r.Users.Refresh)
}
