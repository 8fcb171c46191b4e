package api

import (
	"net/http"
	"time"

	"associados_api/internal/api/handler"
	"associados_api/internal/api/middleware"
	"associados_api/internal/app/service"
	"associados_api/internal/common"
	"associados_api/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	associateService *service.AssociateService,
	authenticator *middleware.Authenticator,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Decodes the Authorization: Bearer token (when present) and puts
	// the claims in the request context; authenticator enforces them on
	// protected routes.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Route and method misses go through the same envelope as every
	// other failure.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, r, common.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, r, &common.RequestError{
			Status:  http.StatusMethodNotAllowed,
			Message: "Method not allowed.",
		})
	})

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, authenticator)
	r.Route("/auth", authHandler.RegisterRoutes)

	associateHandler := handler.NewAssociateHandler(associateService, authenticator)
	r.Route("/associates", associateHandler.RegisterRoutes)

	return r
}
