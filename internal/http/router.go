package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/blogora/blog-api/internal/auth"
	"github.com/blogora/blog-api/internal/blog"
	"github.com/blogora/blog-api/internal/config"
	"github.com/blogora/blog-api/internal/httputil"
	"github.com/blogora/blog-api/internal/logging"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, authHandler *auth.Handler, blogHandler *blog.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger ui enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		logger.Info("swagger ui disabled (production mode)")
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/login", authHandler.Login)
			r.Post("/send-reset-password", authHandler.SendResetPassword)
			r.Post("/reset-password/{id}/{token}", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Get("/me", authHandler.Me)
				r.Put("/change-password", authHandler.ChangePassword)
				r.Delete("/delete-account", authHandler.DeleteAccount)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/blogs", blogHandler.GetAllBlogs)
			r.Get("/blogs/{category}", blogHandler.GetByCategory)
			r.Get("/search-blogs", blogHandler.SearchBlogs)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/create-blog", blogHandler.CreateBlog)
				r.Get("/user-blog", blogHandler.GetUserBlogs)
				r.Put("/user-blog/{id}", blogHandler.UpdateBlog)
				r.Delete("/user-blog/{id}", blogHandler.DeleteBlog)
				r.Post("/user-blog/like/{id}", blogHandler.ToggleLike)
				r.Get("/blog-likes/{postId}", blogHandler.GetLikers)
				r.Put("/blog/views/{blogId}", blogHandler.RecordView)
				r.Post("/blog-save/{id}", blogHandler.ToggleSave)
				r.Get("/saved-blogs", blogHandler.GetSavedBlogs)
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
