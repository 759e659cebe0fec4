package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	PollHandler    *PollHandler
	VoteHandler    *VoteHandler
	CommentHandler *CommentHandler
	UserHandler    *UserHandler
	Auth           func(http.Handler) http.Handler
	Socket         http.Handler
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

func NewHandler(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: cfg.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		if cfg.Socket != nil {
			r.Get("/socket", cfg.Socket.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(cfg.Auth)

			r.Route("/poll", func(r chi.Router) {
				r.Get("/view/{pollId}", cfg.PollHandler.ViewPoll)
				r.Get("/comments/{pollId}", cfg.CommentHandler.ListComments)
				r.Get("/search", cfg.PollHandler.Search)
				r.Get("/by/{userId}", cfg.PollHandler.ByAuthor)
				r.Get("/hot", cfg.PollHandler.Hot)
				r.Get("/recent", cfg.PollHandler.Recent)
				r.Put("/vote/{pollId}", cfg.VoteHandler.CastVote)

				r.Group(func(r chi.Router) {
					r.Use(RequireUser)
					r.Post("/create", cfg.PollHandler.CreatePoll)
					r.Post("/comment/{pollId}", cfg.CommentHandler.PostComment)
					r.Put("/addChoice/{pollId}", cfg.VoteHandler.AddChoice)
					r.Put("/edit/{pollId}", cfg.PollHandler.EditPoll)
					r.Put("/editComment/{pollId}", cfg.CommentHandler.EditComment)
					r.Put("/removeComment/{pollId}", cfg.CommentHandler.RemoveComment)
					r.Delete("/removePoll/{pollId}", cfg.PollHandler.RemovePoll)
				})
			})

			r.With(RequireUser).Get("/user/me", cfg.UserHandler.GetMe)
		})
	})

	return r
}
