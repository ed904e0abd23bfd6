package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/coffeecart/cart/cache"
	cartController "github.com/Alturino/coffeecart/cart/controller"
	cartService "github.com/Alturino/coffeecart/cart/service"
	"github.com/Alturino/coffeecart/catalog"
	"github.com/Alturino/coffeecart/internal/config"
	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/infra"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/middleware"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/internal/repository"
	"github.com/Alturino/coffeecart/internal/store"
	orderController "github.com/Alturino/coffeecart/order/controller"
	"github.com/Alturino/coffeecart/order/publisher"
	orderService "github.com/Alturino/coffeecart/order/service"
)

const storeDriverMemory = "memory"

type cartOrderStore interface {
	cartService.CartStore
	orderService.OrderStore
}

func runServer(c context.Context, configName string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCoffeeCart).
		Str(log.KeyTag, "main runServer").
		Logger()
	c = logger.WithContext(c)

	cfg := config.InitConfig(c, configName)

	logger = logger.With().Str(log.KeyProcess, "InitOtelSdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppCoffeeCart, cfg.Otel)
	if err != nil {
		logger.Error().Err(err).Msgf("failed initializing otel sdk with error=%s", err.Error())
	}
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing dependencies").Logger()
	cacheClient := infra.NewCacheClient(c, cfg.Cache)

	var pool *pgxpool.Pool
	if cfg.Store.Driver != storeDriverMemory || cfg.Catalog.URL == "" {
		pool = infra.NewDatabaseClient(c, cfg.Database)
	}

	var carts cartOrderStore
	switch cfg.Store.Driver {
	case storeDriverMemory:
		logger.Warn().Msg("using in-memory store, carts and orders are lost on restart")
		carts = store.NewMemoryStore()
	default:
		carts = store.NewPostgresStore(pool, repository.New(pool))
	}

	var lookup catalog.Lookup
	var coffees, finder catalog.CoffeeFinder
	if cfg.Catalog.URL != "" {
		logger.Info().Str(log.KeyURL, cfg.Catalog.URL).Msg("using remote catalog")
		remoteCatalog := catalog.NewHTTPCatalog(cfg.Catalog.URL, cfg.Catalog.Timeout)
		lookup = remoteCatalog
		coffees = remoteCatalog
	} else {
		postgresCatalog := catalog.NewPostgresCatalog(repository.New(pool))
		lookup = postgresCatalog
		coffees = postgresCatalog
		finder = postgresCatalog
	}
	lookup = catalog.NewCachedCatalog(lookup, cacheClient, cfg.Catalog.CacheTTL, cfg.Catalog.Timeout)

	shippingFee, err := cfg.Checkout.Fee()
	if err != nil {
		logger.Fatal().Err(err).Msg(err.Error())
	}

	cartSvc := cartService.NewCartService(
		carts,
		lookup,
		cache.NewRedisCache(cacheClient, cfg.Cache.TTL),
		cfg.Store.Timeout,
	)
	checkoutSvc := orderService.NewCheckoutService(
		carts,
		publisher.NewRedisPublisher(cacheClient),
		cartSvc,
		shippingFee,
		cfg.Store.Timeout,
	)
	logger.Info().Msg("initialized dependencies")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppCoffeeCart),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Metrics,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	cartController.AttachCartController(router, cartSvc, coffees)
	orderController.AttachOrderController(router, checkoutSvc)
	if finder != nil {
		catalog.AttachCatalogController(router, finder)
	}
	logger.Info().Msg("initialized router")

	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("failed listening request with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("stopped listening request")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interruption signal shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msgf("failed shutting down server with error=%s", err.Error())
	}
	if pool != nil {
		pool.Close()
	}
	if err := cacheClient.Close(); err != nil {
		logger.Error().Err(err).Msgf("failed closing redis client with error=%s", err.Error())
	}

	logger.Info().Msg("shutting down otel")
	if err := otel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
		logger.Error().Err(err).Msgf("failed shutting down otel with error=%s", err.Error())
	}
	logger.Info().Msg("shutdown server")
}
