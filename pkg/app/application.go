package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lessondesk/pkg/config"
	"lessondesk/pkg/contracts"
	"lessondesk/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const webhookPath = "/api/v1/payments/webhook"

// Application owns the HTTP server, the shared middleware chain and the
// lifecycle of the stores backing it.
type Application struct {
	cfg              *config.Config
	router           *httprouter.Router
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.ContactRateLimiter
}

func NewApplication(cfg *config.Config, handlers ...contracts.Handler) *Application {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/health", healthCheck)

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	a := &Application{
		cfg:              cfg,
		router:           router,
		idempotencyStore: middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL),
		rateLimiter: middleware.NewContactRateLimiter(
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			middleware.DefaultContactExtractor,
			cfg.Log,
		),
	}

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.buildChain(router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return a
}

// buildChain wraps the router with the shared middleware. Order matters:
// recovery is outermost so panics anywhere below still produce a response,
// and idempotency sits innermost so replays skip none of the checks.
func (a *Application) buildChain(h http.Handler) http.Handler {
	handler := h

	handler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(handler)
	handler = middleware.ContactRateLimit(a.rateLimiter)(handler)
	if a.cfg.PaymentWebhookSecret != "" {
		handler = pathScoped(webhookPath,
			middleware.PaymentSignatureVerification(a.cfg.PaymentWebhookSecret, a.cfg.Log))(handler)
	}
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(handler)
	handler = middleware.ContentTypeValidation(a.cfg.Log)(handler)
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)

	return handler
}

// pathScoped applies mw only to requests for the given path.
func pathScoped(path string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == path {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Run starts the server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests within the configured shutdown timeout.
func (a *Application) Run() {
	log := a.cfg.Log

	go func() {
		log.Info("server listening", "port", a.cfg.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.GracefulShutdown()

	log.Info("server stopped")
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
