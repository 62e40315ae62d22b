// Package app contains the application setup for the storefront service.
package app

import (
	"log/slog"
	"net/http"

	cartservice "github.com/akopato/storefront/internal/cart/service"
	cartstore "github.com/akopato/storefront/internal/cart/store"
	cartrest "github.com/akopato/storefront/internal/cart/transport/rest"
	catalogservice "github.com/akopato/storefront/internal/catalog/service"
	catalogstore "github.com/akopato/storefront/internal/catalog/store"
	catalogrest "github.com/akopato/storefront/internal/catalog/transport/rest"
	"github.com/akopato/storefront/internal/config"
	mediacache "github.com/akopato/storefront/internal/media/cache"
	"github.com/akopato/storefront/internal/media/fetch"
	"github.com/akopato/storefront/internal/media/remote"
	mediaservice "github.com/akopato/storefront/internal/media/service"
	mediarest "github.com/akopato/storefront/internal/media/transport/rest"
	orderservice "github.com/akopato/storefront/internal/order/service"
	orderstore "github.com/akopato/storefront/internal/order/store"
	orderrest "github.com/akopato/storefront/internal/order/transport/rest"
	userservice "github.com/akopato/storefront/internal/user/service"
	userstore "github.com/akopato/storefront/internal/user/store"
	userrest "github.com/akopato/storefront/internal/user/transport/rest"
	"github.com/akopato/storefront/pkg/auth"
	"github.com/akopato/storefront/pkg/messaging"
	"github.com/akopato/storefront/pkg/server"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Dependencies struct {
	CatalogService catalogservice.CatalogService
	UserService    userservice.UserService
	CartService    cartservice.CartService
	OrderService   orderservice.OrderService
	MediaService   mediaservice.MediaService
	Tokens         *auth.TokenService
	Metrics        *prometheus.Registry
	TraceEnabled   bool
	Logger         *slog.Logger
}

// SetupDependencies wires stores, services and the remote storage client.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	storageClient := remote.NewClient(cfg.Storage)
	imageCache := mediacache.New()
	fetcher := fetch.NewFetcher(storageClient, imageCache, cfg.Storage)
	media := mediaservice.NewService(imageCache, fetcher, storageClient, registry)

	catalog := catalogservice.NewService(catalogstore.NewPgStore(dbPool))
	users := userservice.NewService(userstore.NewPgStore(dbPool), tokens)
	cart := cartservice.NewService(cartstore.NewPgStore(dbPool), catalog)
	orders := orderservice.NewService(orderstore.NewPgStore(dbPool), cart, publisher, logger)

	return &Dependencies{
		CatalogService: catalog,
		UserService:    users,
		CartService:    cart,
		OrderService:   orders,
		MediaService:   media,
		Tokens:         tokens,
		Metrics:        registry,
		TraceEnabled:   cfg.Telemetry.Enabled,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)

	var handler http.Handler = mux
	if deps.TraceEnabled {
		handler = otelhttp.NewHandler(mux, "storefront")
	}
	return handler
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	authed := web.AuthMiddleware(deps.Tokens)
	adminOnly := func(next http.Handler) http.Handler {
		return authed(web.RequireRole(userstore.RoleAdmin)(next))
	}

	catalogrest.NewHandler(deps.CatalogService, deps.MediaService, deps.Logger).RegisterRoutes(mux, adminOnly)
	mediarest.NewHandler(deps.MediaService, deps.Logger).RegisterRoutes(mux)
	userrest.NewHandler(deps.UserService, deps.Logger).RegisterRoutes(mux, authed)
	cartrest.NewHandler(deps.CartService, deps.Logger).RegisterRoutes(mux, authed)
	orderrest.NewHandler(deps.OrderService, deps.Logger).RegisterRoutes(mux, authed, web.RequireRole(userstore.RoleAdmin))

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	handler := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Addr:           cfg.HTTPServer.Addr(),
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, handler)
}
