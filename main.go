package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aurie/authoring"
	"aurie/db"
	"aurie/livequery"
	"aurie/ratelim"
	"aurie/rdx"
	"aurie/routes"
	"aurie/session"
	"aurie/social"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(
	rateLimiter *ratelim.RateLimiter,
	broker *session.Broker,
	watcher *session.Watcher,
	lq *livequery.Manager,
	posts authoring.PostStore,
	cache *social.RelationCache,
	svc *social.Service,
) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddAuthRoutes(router, rateLimiter, broker)
	routes.AddSessionRoutes(router, watcher)
	routes.AddPostRoutes(router, rateLimiter, posts, lq)
	routes.AddCommentRoutes(router, rateLimiter, lq)
	routes.AddProfileRoutes(router, cache, svc, lq)
	routes.AddLiveRoutes(router, lq, cache)
	routes.AddUploadRoutes(router, rateLimiter)
	routes.AddShareRoutes(router, rateLimiter)
	routes.AddStaticRoutes(router)

	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	// read port
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := db.Init(ctx); err != nil {
		log.Fatalf("❌ MongoDB connection failed: %v", err)
	}
	rdx.Init()

	rateLimiter := ratelim.NewRateLimiter()

	// session state fan-out
	broker := session.NewBroker()
	watcher := session.NewWatcher(broker)

	// live query snapshots over change streams
	lq := livequery.New()
	lq.Watch(ctx)

	// social graph
	users := social.NewMongoStore()
	cache := social.NewRelationCache()
	svc := social.NewService(users, cache)

	posts := authoring.NewMongoPosts()

	router := setupRouter(rateLimiter, broker, watcher, lq, posts, cache, svc)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Closing session watcher...")
		watcher.Close()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("MongoDB close: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
