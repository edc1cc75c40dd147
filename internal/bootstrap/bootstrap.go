// Package bootstrap wires configuration, storage, domain services and
// the HTTP transport into a running server.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/eventbus"
	"forge-server-go/internal/domain/identity"
	"forge-server-go/internal/domain/inventory"
	"forge-server-go/internal/domain/orders"
	platformconfig "forge-server-go/internal/platform/config"
	platformerrors "forge-server-go/internal/platform/errors"
	platformlogging "forge-server-go/internal/platform/logging"
	platformstorage "forge-server-go/internal/platform/storage"
	httptransport "forge-server-go/internal/transport/http"
	httpwebapi "forge-server-go/internal/transport/http/webapi"
)

const shutdownTimeout = 10 * time.Second

// Run starts the whole service lifecycle: it loads configuration,
// initializes dependencies and blocks until shutdown.
func Run(rootCtx context.Context) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	cfg := result.Config

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	if result.Path != "" {
		logger.Info("configuration loaded from %s", result.Path)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	identities, err := identity.NewService(identity.Options{
		Store:  store,
		Tokens: identity.NewTokenCodec(cfg.Auth.Secret).WithTTL(cfg.Auth.TokenTTL),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := identities.SeedDefaultAdmin(rootCtx); err != nil {
		return err
	}

	inventorySvc, err := inventory.NewService(inventory.Options{Store: store, Logger: logger})
	if err != nil {
		return err
	}
	ordersSvc, err := orders.NewService(orders.Options{
		Store:     store,
		Materials: inventorySvc,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	webapi, err := httpwebapi.NewService(httpwebapi.Options{
		Identities: identities,
		Inventory:  inventorySvc,
		Orders:     ordersSvc,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	webapi.Register(router.API)
	router.Engine.NoRoute(func(c *gin.Context) {
		httptransport.RespondError(c, http.StatusNotFound, "not found")
	})

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	server := &http.Server{
		Addr:    cfg.Server.IP + ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router.Engine,
	}

	group.Go(func() error {
		logger.Info("server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return platformerrors.Wrap(
				platformerrors.KindTransport, "bootstrap.serve", "http server failed", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed: %v", err)
			return err
		}
		logger.Info("http server stopped")
		return nil
	})

	err = group.Wait()
	eventbus.Shutdown()
	return err
}

// openStore builds the document store selected by configuration.
func openStore(cfg *platformconfig.Config) (docstore.Store, error) {
	deps := docstore.Dependencies{}
	storeCfg := docstore.Config{Driver: cfg.Store.Driver}

	switch cfg.Store.Driver {
	case docstore.DriverSQLite:
		db, err := platformstorage.Open(cfg.Store.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		deps.SQLiteDB = db
	case docstore.DriverRedis:
		storeCfg.Redis = &docstore.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Username: cfg.Store.Redis.Username,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		}
	}
	return docstore.New(storeCfg, deps)
}
