package main

import (
	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	if err := entity.MigrateTable(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migration completed")
	return nil
}
