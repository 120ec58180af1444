// Command ck-server starts the contact-keeper HTTP API.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/contact-keeper/internal/config"
	"github.com/and161185/contact-keeper/internal/migrate"
	"github.com/and161185/contact-keeper/internal/repository"
	"github.com/and161185/contact-keeper/internal/repository/memory"
	"github.com/and161185/contact-keeper/internal/repository/postgres"
	grpcserver "github.com/and161185/contact-keeper/internal/server/grpc"
	httpserver "github.com/and161185/contact-keeper/internal/server/http"
	"github.com/and161185/contact-keeper/internal/service"
	"github.com/and161185/contact-keeper/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type stores struct {
	users    repository.UserRepository
	contacts repository.ContactRepository
	pinger   repository.Pinger
	close    func()
}

// main loads configuration, prepares the store and serves HTTP until SIGINT/SIGTERM.
func main() {
	boot := newLogger(false)
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		boot.Fatal("load config", zap.Error(err))
	}
	_ = boot.Sync()

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.close()

	issuer, err := session.NewIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		logger.Fatal("session issuer", zap.Error(err))
	}

	authSvc := service.NewAuthService(st.users, issuer, service.WithUnifiedLoginErrors(cfg.UnifyLoginErrors))
	contactSvc := service.NewContactService(st.contacts)

	app := httpserver.New(authSvc, contactSvc, issuer, st.pinger, logger).
		App(httpserver.Options{CORSOrigin: cfg.CORSOrigin})

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- app.Listen(cfg.Addr)
	}()

	var hs *grpcserver.Health
	if cfg.HealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			logger.Fatal("listen health", zap.Error(err))
		}
		hs = grpcserver.NewHealth(st.pinger, logger, cfg.HealthInterval, cfg.Dev)
		go hs.Watch(ctx)
		go func() {
			logger.Info("health listening", zap.String("addr", cfg.HealthAddr))
			errCh <- hs.Serve(lis)
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	if hs != nil {
		hs.Stop(cfg.ShutdownTimeout)
	}
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on exit")
		m := memory.New()
		return &stores{users: m.Users(), contacts: m.Contacts(), pinger: m, close: func() {}}, nil
	}

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		// The pool reconnects on demand; report and keep going.
		log.Warn("database not reachable yet", zap.Error(err))
	}
	return &stores{
		users:    postgres.NewUserRepo(db),
		contacts: postgres.NewContactRepo(db),
		pinger:   db,
		close:    db.Close,
	}, nil
}
