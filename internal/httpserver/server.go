// Package httpserver — внешний read-only интерфейс: живость процесса
// и текущая статистика отзывов.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"waste-bot/internal/waste"
)

// StatsSource — срез хранилища, который нужен серверу.
type StatsSource interface {
	Stats(ctx context.Context) (waste.Stats, error)
	Ping(ctx context.Context) error
}

type statsResponse struct {
	Correct   int64 `json:"correct"`
	Incorrect int64 `json:"incorrect"`
	Accuracy  int   `json:"accuracy"`
}

func NewRouter(src StatsSource) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := src.Ping(ctx); err != nil {
			http.Error(w, "db: not ok", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	mux.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		st, err := src.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statsResponse{
			Correct:   st.Correct,
			Incorrect: st.Incorrect,
			Accuracy:  st.Accuracy(),
		})
	})

	return mux
}
