package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"mood_recipe_server/generator"
	"mood_recipe_server/geo"
	"mood_recipe_server/store"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

// ist is India Standard Time; India has no daylight saving.
var ist = time.FixedZone("IST", 5*60*60+30*60)

const createdAtLayout = "2006-01-02 03:04 PM"

// RecipeGenerator produces a normalized recipe for a request.
type RecipeGenerator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Draft, error)
}

// Locator resolves a client IP to a location.
type Locator interface {
	Lookup(ctx context.Context, ip string) (geo.Location, error)
}

// Options wires a Server. Generator, Store and Geo are required.
type Options struct {
	Generator      RecipeGenerator
	Store          store.Store
	Geo            Locator
	Logger         *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	gen      RecipeGenerator
	store    store.Store
	geo      Locator
	logger   *zap.Logger
	origins  []string
	timeout  time.Duration
	now      func() time.Time
	validate *validator.Validate
	pages    pages
	metrics  *metrics
	static   http.Handler
}

func New(opts Options) (*Server, error) {
	switch {
	case opts.Generator == nil:
		return nil, errors.New("recipe generator required")
	case opts.Store == nil:
		return nil, errors.New("store required")
	case opts.Geo == nil:
		return nil, errors.New("geo locator required")
	}

	pg, err := loadPages(templateFS)
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		return nil, err
	}

	s := &Server{
		gen:      opts.Generator,
		store:    opts.Store,
		geo:      opts.Geo,
		logger:   opts.Logger,
		origins:  opts.AllowedOrigins,
		timeout:  opts.RequestTimeout,
		now:      opts.Now,
		validate: validator.New(),
		pages:    pg,
		metrics:  newMetrics(),
		static:   http.StripPrefix("/static/", http.FileServer(http.FS(sub))),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/my-recipes", s.handleMyRecipesPage)
	r.Get("/feedback", s.handleFeedbackPage)
	r.Get("/recipes/{visitor}/{mood}/{id}", s.handleRecipePage)
	r.Handle("/static/*", s.static)

	r.Route("/api", func(r chi.Router) {
		r.Post("/recipe", s.handleRecipeCreate)
		r.Get("/my-recipes/{visitor}", s.handleMyRecipes)
		r.Get("/get-ip", s.handleGetIP)
		r.Post("/hit-count", s.handleHitCount)
		r.Post("/save-feedback", s.handleSaveFeedback)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("[server] request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
