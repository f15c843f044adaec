package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServerConfig holds configuration for the web server
type ServerConfig struct {
	Port      int
	Processor QueryProcessor
	DB        *DB
}

// StartServer initializes and starts the HTTP server
func StartServer(config ServerConfig) error {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// Static files
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Web handlers (HTMX HTML responses)
	webHandler := NewWebHandler(config.Processor)
	r.Get("/", webHandler.AskPage)
	r.Post("/ask", webHandler.AskResults)

	// API handlers (JSON responses)
	apiHandler := &APIHandler{Processor: config.Processor, DB: config.DB}
	r.Route("/api", func(r chi.Router) {
		r.Post("/insights", apiHandler.Insights)
		r.Get("/health", apiHandler.Health)
	})

	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("Starting server on http://localhost%s", addr)
	return http.ListenAndServe(addr, r)
}
