package main

import (
	"context"
	"net/http"
	"os"

	"github.com/invitetrack/backend/internal/domain"
	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/router"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/invitetrack/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
)

type srv struct {
	ctx context.Context
	app *cli.App

	guildRepo      repository.GuildRepository
	memberRepo     repository.MemberRepository
	inviteCodeRepo repository.InviteCodeRepository
	joinRepo       repository.JoinRepository
	bonusRepo      repository.BonusAdjustmentRepository
	auditLogRepo   repository.AuditLogRepository

	redisClient xredis.Client

	inviteDomain domain.InviteDomain

	router *router.Router
	server *http.Server
}

var server = &srv{}

func main() {
	server.ctx = context.Background()
	server.loadConfig()
	server.loadLogger()
	server.loadApp()

	if err := server.app.RunContext(server.ctx, os.Args); err != nil {
		xcontext.Logger(server.ctx).Errorf("Server stopped with error: %v", err)
		os.Exit(1)
	}
}

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Name = "invitetrack"
	app.Action = cli.ShowAppHelp
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves the invite ledger endpoints.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the cron worker",
			Category:    "Worker",
			Description: `Runs periodic jobs, currently the invite ledger reconciliation.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Database",
			Description: `Creates or updates all ledger tables.`,
		},
	}

	s.app = app
}
