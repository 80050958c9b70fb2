package chord

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"kon.nect.sh/httprate"
)

// StatsHandler serves the debug pages of node under /stats and /graph
func StatsHandler(node *LocalNode) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.URLFormat)
	// every page walks the ring, keep it from being hammered
	router.Use(httprate.LimitAll(10, time.Second))
	router.Get("/stats", node.StatsHandler)
	router.Get("/graph", RingGraphHandler(node))

	return router
}
