package cron

import (
	"context"
	"time"

	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/dateutil"
	"github.com/invitetrack/backend/pkg/xcontext"
)

// ReconcileInvitesCronJob compares the two views of the same join events, the
// uses-cleared_amount delta on invite codes and the count of non-cleared join
// records. They must agree per inviter; a divergence means the ledger lost or
// double-recorded an event and is reported, never silently repaired.
type ReconcileInvitesCronJob struct {
	guildRepo      repository.GuildRepository
	inviteCodeRepo repository.InviteCodeRepository
	joinRepo       repository.JoinRepository
}

func NewReconcileInvitesCronJob(
	guildRepo repository.GuildRepository,
	inviteCodeRepo repository.InviteCodeRepository,
	joinRepo repository.JoinRepository,
) *ReconcileInvitesCronJob {
	return &ReconcileInvitesCronJob{
		guildRepo:      guildRepo,
		inviteCodeRepo: inviteCodeRepo,
		joinRepo:       joinRepo,
	}
}

func (job *ReconcileInvitesCronJob) Do(ctx context.Context) {
	guilds, err := job.guildRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all guilds: %v", err)
		return
	}

	for _, guild := range guilds {
		netUses, err := job.inviteCodeRepo.GetInviterTotals(ctx, guild.ID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get code totals of guild %s: %v", guild.ID, err)
			continue
		}

		joinCounts, err := job.joinRepo.GetInviterCounts(ctx, guild.ID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get join counts of guild %s: %v", guild.ID, err)
			continue
		}

		countByInviter := map[string]int64{}
		for _, row := range joinCounts {
			countByInviter[row.InviterID] = row.Total
		}

		for _, row := range netUses {
			if count := countByInviter[row.InviterID]; count != row.Total {
				xcontext.Logger(ctx).Warnf(
					"Invite ledger divergence in guild %s: inviter %s has code delta %d but %d join records",
					guild.ID, row.InviterID, row.Total, count)
			}

			delete(countByInviter, row.InviterID)
		}

		for inviterID, count := range countByInviter {
			xcontext.Logger(ctx).Warnf(
				"Invite ledger divergence in guild %s: inviter %s has code delta 0 but %d join records",
				guild.ID, inviterID, count)
		}
	}
}

func (job *ReconcileInvitesCronJob) RunNow() bool {
	return false
}

func (job *ReconcileInvitesCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
