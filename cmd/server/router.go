package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/middleware"
)

func setupRouter(handler api.ServerInterface, mw *middleware.Config, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	// installed on the router so the logger sees the matched route pattern
	r.Use(middleware.Chain(mw))

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "api/openapi.yaml")
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return api.HandlerFromMux(handler, r)
}
