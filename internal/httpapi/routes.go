package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openqb/quizroom-backend/internal/registry"
	"github.com/openqb/quizroom-backend/internal/ws"
)

func SetupRoutes(reg *registry.Registry, wsHandler *ws.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/ws", wsHandler.ServeHTTP)
	r.Get("/api/rooms", ListRooms(reg))
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
