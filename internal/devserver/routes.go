// internal/devserver/routes.go

package devserver

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *Middleware) {
	// Public routes
	public := router.PathPrefix("/api").Subrouter()
	public.HandleFunc("/health", handler.Health).Methods("GET")
	public.HandleFunc("/auth/register", handler.Register).Methods("POST")
	public.HandleFunc("/auth/login", handler.Login).Methods("POST")

	// Protected routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/auth/me", handler.Me).Methods("GET")

	// Discovery
	api.HandleFunc("/discover", handler.Discover).Methods("GET")
	api.HandleFunc("/swipe", handler.Swipe).Methods("POST")

	// Matches and chat
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/chat/{match_id}", handler.GetMessages).Methods("GET")
	api.HandleFunc("/chat", handler.SendMessage).Methods("POST")
	api.HandleFunc("/ai/match-tips", handler.MatchTips).Methods("GET")

	// Notifications
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.HandleFunc("", handler.GetNotifications).Methods("GET")
	notifications.HandleFunc("/unread-count", handler.GetUnreadCount).Methods("GET")
	notifications.HandleFunc("/read-all", handler.MarkAllAsRead).Methods("PUT")
	notifications.HandleFunc("/{id}/read", handler.MarkAsRead).Methods("PUT")
}
