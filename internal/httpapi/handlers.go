package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openqb/quizroom-backend/internal/registry"
)

// RoomSummary is the public directory entry for a room.
type RoomSummary struct {
	Name        string `json:"roomName"`
	PlayerCount int    `json:"playerCount"`
	Permanent   bool   `json:"isPermanent"`
}

// ListRooms returns every public, unlocked room with its online player count.
func ListRooms(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		rooms, err := reg.List(ctx)
		if err != nil {
			http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
			return
		}

		summaries := make([]RoomSummary, 0, len(rooms))
		for _, rm := range rooms {
			v, err := rm.View(ctx)
			if err != nil {
				continue
			}
			if !v.Settings.Public || v.Settings.Lock {
				continue
			}
			summaries = append(summaries, RoomSummary{
				Name:        v.Name,
				PlayerCount: v.OnlineCount,
				Permanent:   v.Permanent,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summaries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
