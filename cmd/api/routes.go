package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookshelf/internal/book"
	"bookshelf/internal/genre"
	"bookshelf/internal/httpx"
)

type routerDeps struct {
	Books          *book.HTTPHandler
	Genres         *genre.HTTPHandler
	JWTSecret      string
	Blacklist      httpx.BlacklistRepository
	Ready          func(ctx context.Context) error
	Logger         *zap.Logger
	RateLimiter    *httpx.RateLimitMiddleware
	AllowedOrigins []string
	EnableHSTS     bool
	MaxBodyBytes   int64
}

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/genres", d.Genres.List)

	protected := httpx.AuthMiddleware(d.JWTSecret, d.Blacklist)
	handle := func(pattern string, h http.HandlerFunc) {
		router.Handle(pattern, protected(h))
	}
	handle("GET /v1/books", d.Books.List)
	handle("POST /v1/books", d.Books.Create)
	handle("GET /v1/books/form", d.Books.Form)
	handle("GET /v1/books/{id}", d.Books.Get)
	handle("GET /v1/books/{id}/form", d.Books.Form)
	handle("PUT /v1/books/{id}", d.Books.Update)
	handle("DELETE /v1/books/{id}", d.Books.Delete)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Logger),
		httpx.RecoveryMiddleware(d.Logger),
		httpx.SecurityHeadersMiddleware(d.EnableHSTS),
		httpx.CORSMiddleware(d.AllowedOrigins),
		d.RateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(d.MaxBodyBytes),
	)
}
