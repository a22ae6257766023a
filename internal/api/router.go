package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/tienda-api/internal/api/handlers"
	"github.com/isdelr/tienda-api/internal/auth"
	"github.com/isdelr/tienda-api/internal/config"
	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/services"
)

// Dependencies are the collaborators the router dispatches to.
type Dependencies struct {
	Users      services.UserServiceProvider
	Categories services.CategoryServiceProvider
	Products   services.ProductServiceProvider
	Tokens     *auth.TokenIssuer
	CORS       config.CORSConfig
}

// NewServer composes the services over db and returns the HTTP handler.
func NewServer(db *database.DB, tokens *auth.TokenIssuer, corsCfg config.CORSConfig) http.Handler {
	return NewRouter(Dependencies{
		Users:      services.NewUserService(db),
		Categories: services.NewCategoryService(db),
		Products:   services.NewProductService(db),
		Tokens:     tokens,
		CORS:       corsCfg,
	})
}

// corsFor allows a single origin, credentials included.
func corsFor(origin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	productHandler := handlers.NewProductHandler(deps.Products)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("API realizada para el extra"))
	})

	r.Route("/usuarios", func(r chi.Router) {
		r.Use(corsFor(deps.CORS.UsuariosOrigin))

		r.Post("/", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.Middleware())
			r.Get("/me", userHandler.GetMe)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	r.Route("/productos", func(r chi.Router) {
		r.Use(corsFor(deps.CORS.ProductosOrigin))

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", categoryHandler.GetAll)
			r.Post("/", categoryHandler.Create)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Post("/", productHandler.Create)
			r.Get("/buscar", productHandler.SearchByName)
			r.Get("/categoria/{nombre}", productHandler.SearchByCategory)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Patch("/", productHandler.Update)
				r.Delete("/", productHandler.Delete)
			})
		})
	})

	return r
}
