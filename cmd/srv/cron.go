package main

import (
	"github.com/invitetrack/backend/internal/domain/cron"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewReconcileInvitesCronJob(
		s.guildRepo, s.inviteCodeRepo, s.joinRepo))
	cronJobManager.Start(s.ctx)

	return nil
}
