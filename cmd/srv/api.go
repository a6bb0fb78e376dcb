package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/invitetrack/backend/pkg/router"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: s.router.Handler(),
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Starting api server on port %s", cfg.Port)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
		}

		xcontext.Logger(s.ctx).Infof("Shutting down api server")
		return s.server.Shutdown(context.Background())
	})

	return g.Wait()
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx))

	router.GET(s.router, "/getInvites", s.inviteDomain.GetInvites)
	router.GET(s.router, "/getInviteLeaderboard", s.inviteDomain.GetLeaderboard)
	router.GET(s.router, "/getAuditLogs", s.inviteDomain.GetAuditLogs)
	router.POST(s.router, "/onJoin", s.inviteDomain.OnJoin)
	router.POST(s.router, "/clearInvites", s.inviteDomain.ClearInvites)
	router.POST(s.router, "/addBonus", s.inviteDomain.AddBonus)
	router.POST(s.router, "/createInviteCode", s.inviteDomain.CreateInviteCode)
	router.POST(s.router, "/syncInviteCodes", s.inviteDomain.SyncInviteCodes)
}
