package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/events"
	"leadcollector-engine/internal/httpapi"
	"leadcollector-engine/internal/secrets"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, log := rt.cfg, rt.log

	adminPW, err := secrets.AdminPassword(cfg.Admin.KeyringAccount, cfg.Admin.Password)
	if err != nil {
		return err
	}

	act := activity.New(rt.db, log)
	sessions := auth.NewSessionStore(cfg.SessionTTL(),
		auth.WithCookie(cfg.Session.CookieName, cfg.Session.SecureCookie))
	svc := auth.NewService(rt.db, sessions, act, log)
	if _, err := svc.Bootstrap(ctx, cfg.Admin.Email, adminPW); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		DB:             rt.db,
		Auth:           svc,
		Activity:       act,
		Hub:            events.NewHub(),
		Log:            log,
		Cfg:            cfg,
		LoginLimiter:   httpapi.NewClientLimiter(cfg.Limits.LoginRPS, cfg.Limits.LoginBurst),
		CollectLimiter: httpapi.NewClientLimiter(cfg.Limits.CollectRPS, cfg.Limits.CollectBurst),
	})

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// SSE streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}
	log.Info("engine listening", "addr", "http://"+ln.Addr().String(), "data_dir", cfg.App.DataDir)

	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	if cerr := rt.db.Checkpoint(context.Background()); cerr != nil {
		log.Warn("final checkpoint failed", "err", cerr)
	}
	return err
}
