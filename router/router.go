package router

import (
	"go-auth-api/common"
	"go-auth-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires every endpoint to its handler behind the required trust
// tier: public routes are mounted directly, authenticated routes behind
// Authenticate, and admin routes behind Authenticate + RequireStaff.
func NewRouter(userHandler *handler.UserHandler, adminHandler *handler.AdminHandler, authMw *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /token/refresh", handler.ErrorHandlingMiddleware(userHandler.Refresh))

	// Authenticated endpoints.
	mux.Handle("GET /profile", authMw.Authenticate(handler.ErrorHandlingMiddleware(userHandler.Profile)))
	mux.Handle("POST /logout", authMw.Authenticate(handler.ErrorHandlingMiddleware(userHandler.Logout)))

	// Admin endpoints.
	admin := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return authMw.Authenticate(authMw.RequireStaff(handler.ErrorHandlingMiddleware(h)))
	}
	mux.Handle("GET /admin/users", admin(adminHandler.ListUsers))
	mux.Handle("GET /admin/users/{id}", admin(adminHandler.GetUser))
	mux.Handle("PUT /admin/users/{id}", admin(adminHandler.UpdateUser))
	mux.Handle("PATCH /admin/users/{id}", admin(adminHandler.UpdateUser))
	mux.Handle("DELETE /admin/users/{id}", admin(adminHandler.DeleteUser))

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
