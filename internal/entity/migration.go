package entity

import (
	"context"

	"github.com/invitetrack/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Guild{},
		&Member{},
		&InviteCode{},
		&Join{},
		&BonusAdjustment{},
		&AuditLog{},
	)
}
