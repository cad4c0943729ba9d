package site

import (
	"net/http"
	"time"

	"folio/auth"
	"folio/blog"
	"folio/chat"
	"folio/config"
	"folio/constants"
	"folio/portfolio"
	"folio/terminal"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("folio.site")

type Server struct {
	cfg       *config.Config
	auth      *auth.Service
	blog      *blog.Repository
	portfolio *portfolio.Repository
	terminal  *terminal.Registry
	chat      *chat.Proxy
	siteName  string
	assetsDir string
}

func NewServer(cfg *config.Config, authService *auth.Service, posts *blog.Repository, folio *portfolio.Repository, chatProxy *chat.Proxy) *Server {
	return &Server{
		cfg:       cfg,
		auth:      authService,
		blog:      posts,
		portfolio: folio,
		terminal:  terminal.Default(),
		chat:      chatProxy,
		siteName:  constants.APP_NAME,
		assetsDir: "./assets",
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Server.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	if s.cfg.Server.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.Server.RateLimit, time.Minute))
	}
	r.Use(middleware.Recoverer)
	r.Use(s.TryPutUserInContextMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Nothing lives at this path.")
	})

	r.Get("/", s.Home)

	r.Route("/blog", func(r chi.Router) {
		r.Get("/", s.BlogIndex)
		r.Get("/tag/{tag}", s.BlogTag)
		r.Get("/{slug}", s.BlogPost)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
		})
		r.HandleFunc("/login", s.AdminLogin)
		r.Post("/logout", s.AdminLogout)

		r.With(AuthProtectedMiddleware).Route("/posts", func(r chi.Router) {
			r.Get("/", s.AdminPostList)
			r.HandleFunc("/new", s.AdminCreatePost)
			r.HandleFunc("/{postID}/edit", s.AdminEditPost)
			r.Post("/{postID}/delete", s.AdminDeletePost)
		})
	})

	fileServer := http.FileServer(http.Dir(s.assetsDir))
	r.Handle("/assets/*", http.StripPrefix("/assets", fileServer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/portfolio", s.APIPortfolio)
			r.Get("/posts", s.APIPosts)
			r.Get("/posts/{slug}", s.APIPost)
			r.Get("/tags", s.APITags)
			r.Post("/terminal", s.APITerminal)

			r.Group(func(r chi.Router) {
				if s.cfg.Chat.RateLimit > 0 {
					r.Use(httprate.LimitByIP(s.cfg.Chat.RateLimit, time.Minute))
				}
				r.Post("/chat", s.APIChat)
				r.Delete("/chat", s.APIClearChat)
			})
		})
	})

	return r
}
