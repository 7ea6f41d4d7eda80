// Package app wires configuration, storage, the ledger and the HTTP surface
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/config"
	"github.com/careerhub/careerhub/internal/db"
	"github.com/careerhub/careerhub/internal/events"
	"github.com/careerhub/careerhub/internal/events/kafka"
	apphttp "github.com/careerhub/careerhub/internal/http"
	"github.com/careerhub/careerhub/internal/http/api/admin"
	"github.com/careerhub/careerhub/internal/http/api/front"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/ledger/memory"
	"github.com/careerhub/careerhub/internal/ledger/sqlstore"
	"github.com/careerhub/careerhub/internal/logging"
	"github.com/careerhub/careerhub/internal/session"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const sessionSweepInterval = time.Minute

// Runtime is a fully wired server ready to be served.
type Runtime struct {
	Handler http.Handler
	Engine  *ledger.Engine
	Career  *career.Store

	closers []io.Closer
}

// Close releases the publisher, session backend and database in reverse
// construction order.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if errClose := rt.closers[i].Close(); errClose != nil {
			errs = append(errs, errClose)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := db.Open(conf.Database)
	if err != nil {
		return err
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	log.WithField("dialect", db.DialectName(conn)).Info("database migrated")
	return nil
}

// Build constructs every component from conf. Background workers stop when
// ctx is cancelled.
func Build(ctx context.Context, conf *config.Config) (*Runtime, error) {
	if conf == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		_ = rt.Close()
		return nil, err
	}

	conn, err := db.Open(conf.Database)
	if err != nil {
		return fail(err)
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		rt.closers = append(rt.closers, sqlDB)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fail(errMigrate)
	}

	var ledgerStore ledger.Store
	switch conf.Ledger.Store {
	case config.LedgerStoreMemory:
		ledgerStore = memory.New()
		log.Warn("ledger: using in-memory store, balances are lost on restart")
	default:
		ledgerStore = sqlstore.New(conn)
	}

	cat, err := conf.BuildCatalog()
	if err != nil {
		return fail(err)
	}

	var publisher events.Publisher = events.Noop{}
	if len(conf.Events.Brokers) > 0 {
		kafkaPublisher, errKafka := kafka.NewPublisher(conf.Events.Brokers, conf.Events.Topic)
		if errKafka != nil {
			return fail(errKafka)
		}
		publisher = kafkaPublisher
		rt.closers = append(rt.closers, kafkaPublisher)
	}
	engine := ledger.NewEngine(ledgerStore, cat, publisher)

	var sessionStore session.Store
	switch conf.Session.Store {
	case config.SessionStoreRedis:
		client, errRedis := session.NewRedisClient(ctx, conf.Redis)
		if errRedis != nil {
			return fail(errRedis)
		}
		rt.closers = append(rt.closers, client)
		sessionStore = session.NewRedisStore(client)
	default:
		memStore := session.NewMemoryStore()
		session.NewSweeper(memStore, sessionSweepInterval).Start(ctx)
		sessionStore = memStore
	}
	sessions := session.NewManager(sessionStore, conf.Session)

	careerStore := career.NewStore(conn, engine, conf.Referral.Reward)
	upstreamClient := upstream.NewClient(conf.Upstream.BaseURL, conf.Upstream.Timeout)

	if strings.EqualFold(conf.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(), apphttp.CORSMiddleware(conf.Server.CORSOrigins))
	admin.RegisterAdminRoutes(router, conn, engine, conf.Admin)
	front.RegisterFrontRoutes(router, front.Dependencies{
		Sessions:    sessions,
		Engine:      engine,
		Career:      careerStore,
		Upstream:    upstreamClient,
		SignupGrant: conf.Ledger.SignupGrant,
	})
	router.NoRoute(apphttp.NoRouteHandler())

	rt.Handler = router
	rt.Engine = engine
	rt.Career = careerStore
	return rt, nil
}

// RunServer loads the configuration and serves until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logCloser, err := logging.Setup(conf.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := Build(runCtx, conf)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := rt.Close(); errClose != nil {
			log.WithError(errClose).Warn("shutdown: release resources")
		}
	}()

	srv := &http.Server{
		Addr:              conf.Server.Addr,
		Handler:           rt.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * conf.Upstream.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	if srv.WriteTimeout <= 0 {
		srv.WriteTimeout = 60 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": conf.Server.Addr, "config": configPath}).Info("careerhub listening")
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	select {
	case errServe, ok := <-errCh:
		if ok {
			return fmt.Errorf("app: serve: %w", errServe)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	timeout := conf.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()
	if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("app: shutdown: %w", errShutdown)
	}
	return nil
}
