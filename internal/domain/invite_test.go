package domain

import (
	"database/sql"
	"testing"

	"github.com/invitetrack/backend/internal/domain/invitecount"
	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/internal/model"
	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/errorx"
	"github.com/invitetrack/backend/pkg/testutil"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func newTestInviteDomain(redisClient *testutil.InMemoryRedisClient) *inviteDomain {
	inviteCodeRepo := repository.NewInviteCodeRepository()
	joinRepo := repository.NewJoinRepository()
	bonusRepo := repository.NewBonusAdjustmentRepository()

	return NewInviteDomain(
		repository.NewGuildRepository(),
		repository.NewMemberRepository(),
		inviteCodeRepo,
		joinRepo,
		bonusRepo,
		repository.NewAuditLogRepository(),
		invitecount.New(inviteCodeRepo, joinRepo, bonusRepo, redisClient),
	)
}

func Test_inviteDomain_OnJoin_GetInvites(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	// A member with no codes, joins, or bonus has a total of zero.
	resp, err := domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Total)

	_, err = domain.OnJoin(ctx, &model.OnJoinRequest{
		GuildID:     testutil.Guild1.ID,
		MemberID:    testutil.Member3.ID,
		MatchedCode: testutil.InviteCode1.Code,
	})
	require.NoError(t, err)

	// The read after the join must already see it, even though the previous
	// read populated the cache.
	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)

	_, err = domain.OnJoin(ctx, &model.OnJoinRequest{
		GuildID:     testutil.Guild1.ID,
		MemberID:    testutil.Member2.ID,
		MatchedCode: testutil.InviteCode1.Code,
	})
	require.NoError(t, err)

	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.Equal(t, uint64(1), resp.Rank)
}

func Test_inviteDomain_OnJoin_unknownCode(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	_, err := domain.OnJoin(ctx, &model.OnJoinRequest{
		GuildID:     testutil.Guild1.ID,
		MemberID:    testutil.Member3.ID,
		MatchedCode: "no-such-code",
	})
	require.NoError(t, err)

	// The join is kept for the audit trail but attributed to nobody.
	joins, err := repository.NewJoinRepository().GetList(ctx, repository.GetListJoinFilter{
		GuildID: testutil.Guild1.ID,
	})
	require.NoError(t, err)
	require.Len(t, joins, 1)
	require.Equal(t, "no-such-code", joins[0].ExactMatchCode.String)
}

func Test_inviteDomain_ClearInvites(t *testing.T) {
	ctx := testutil.MockContextWithUserID("admin")
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	inviteCodeRepo := repository.NewInviteCodeRepository()
	joinRepo := repository.NewJoinRepository()

	code := entity.InviteCode{
		Base:      entity.Base{ID: "code-m1"},
		GuildID:   testutil.Guild1.ID,
		Code:      "clear-me",
		InviterID: testutil.Member1.ID,
		Uses:      5,
	}
	require.NoError(t, inviteCodeRepo.Create(ctx, &code))

	for _, id := range []string{"join1", "join2"} {
		require.NoError(t, joinRepo.Create(ctx, &entity.Join{
			Base:           entity.Base{ID: id},
			GuildID:        testutil.Guild1.ID,
			MemberID:       testutil.Member3.ID,
			ExactMatchCode: nullString("clear-me"),
		}))
	}

	_, err := domain.AddBonus(ctx, &model.AddBonusRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
		Amount:   2,
		Reason:   "event help",
	})
	require.NoError(t, err)

	resp, err := domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), resp.Total)

	_, err = domain.ClearInvites(ctx, &model.ClearInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)

	// Codes take the current uses as baseline, joins flip their soft marker,
	// bonus survives a plain clear.
	cleared, err := inviteCodeRepo.GetByCode(ctx, testutil.Guild1.ID, "clear-me")
	require.NoError(t, err)
	require.Equal(t, uint64(5), cleared.ClearedAmount)

	count, err := joinRepo.CountInvited(ctx, testutil.Guild1.ID, testutil.Member1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)

	// Clearing twice with identical arguments is a no-op on already-cleared
	// rows.
	_, err = domain.ClearInvites(ctx, &model.ClearInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)

	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)

	// Opting into bonus clearing zeroes the rest.
	_, err = domain.ClearInvites(ctx, &model.ClearInvitesRequest{
		GuildID:    testutil.Guild1.ID,
		MemberID:   testutil.Member1.ID,
		ClearBonus: true,
	})
	require.NoError(t, err)

	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Total)

	// Every mutation left a trace: one bonus grant and three clears.
	auditResp, err := domain.GetAuditLogs(ctx, &model.GetAuditLogsRequest{
		GuildID: testutil.Guild1.ID,
	})
	require.NoError(t, err)
	require.Len(t, auditResp.AuditLogs, 4)

	last := auditResp.AuditLogs[0]
	require.Equal(t, "admin", last.ActorID)
	require.Equal(t, entity.AuditActionClearInvites, last.Action)
	require.Equal(t, true, last.Payload["clear_bonus"])
	require.Equal(t, testutil.Member1.ID, last.Payload["target_id"])
}

func Test_inviteDomain_ClearInvites_guildWide(t *testing.T) {
	ctx := testutil.MockContextWithUserID("admin")
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	inviteCodeRepo := repository.NewInviteCodeRepository()
	require.NoError(t, inviteCodeRepo.Create(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "code-m2"},
		GuildID:   testutil.Guild1.ID,
		Code:      "second",
		InviterID: testutil.Member2.ID,
		Uses:      3,
	}))

	// Member3's total derives entirely from bonus and must survive a plain
	// guild-wide clear.
	_, err := domain.AddBonus(ctx, &model.AddBonusRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member3.ID,
		Amount:   4,
		Reason:   "moderator",
	})
	require.NoError(t, err)

	_, err = domain.ClearInvites(ctx, &model.ClearInvitesRequest{
		GuildID: testutil.Guild1.ID,
	})
	require.NoError(t, err)

	for memberID, expected := range map[string]int64{
		testutil.Member1.ID: 0,
		testutil.Member2.ID: 0,
		testutil.Member3.ID: 4,
	} {
		resp, err := domain.GetInvites(ctx, &model.GetInvitesRequest{
			GuildID:  testutil.Guild1.ID,
			MemberID: memberID,
		})
		require.NoError(t, err)
		require.Equal(t, expected, resp.Total, "member %s", memberID)
	}
}

func Test_inviteDomain_ClearInvites_unknownGuild(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	_, err := domain.ClearInvites(ctx, &model.ClearInvitesRequest{GuildID: "nope"})
	var appErr errorx.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, errorx.NotFound, appErr.Code)
}

func Test_inviteDomain_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	inviteCodeRepo := repository.NewInviteCodeRepository()
	require.NoError(t, inviteCodeRepo.Create(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "code-m2"},
		GuildID:   testutil.Guild1.ID,
		Code:      "second",
		InviterID: testutil.Member2.ID,
		Uses:      3,
	}))

	bonusRepo := repository.NewBonusAdjustmentRepository()
	require.NoError(t, bonusRepo.Create(ctx, &entity.BonusAdjustment{
		Base:     entity.Base{ID: "bonus1"},
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
		Amount:   5,
	}))

	resp, err := domain.GetLeaderboard(ctx, &model.GetInviteLeaderboardRequest{
		GuildID: testutil.Guild1.ID,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Equal(t, []model.MemberInvites{
		{MemberID: testutil.Member1.ID, Total: 5, CurrentRank: 1},
		{MemberID: testutil.Member2.ID, Total: 3, CurrentRank: 2},
	}, resp.Leaderboard)
}

func Test_inviteDomain_CreateInviteCode(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Member1.ID)
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	resp, err := domain.CreateInviteCode(ctx, &model.CreateInviteCodeRequest{
		GuildID: testutil.Guild1.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Code, 8)

	code, err := repository.NewInviteCodeRepository().
		GetByCode(ctx, testutil.Guild1.ID, resp.Code)
	require.NoError(t, err)
	require.Equal(t, testutil.Member1.ID, code.InviterID)
}

func Test_inviteDomain_SyncInviteCodes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	_, err := domain.SyncInviteCodes(ctx, &model.SyncInviteCodesRequest{
		GuildID: testutil.Guild1.ID,
		Codes: []model.SyncedInviteCode{
			{Code: testutil.InviteCode1.Code, InviterID: testutil.Member1.ID, Uses: 9},
			{Code: "fresh", InviterID: testutil.Member2.ID, Uses: 1},
		},
	})
	require.NoError(t, err)

	resp, err := domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(9), resp.Total)

	resp, err = domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
}

func Test_inviteDomain_GetInvites_countJoins(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	cfg := xcontext.Configs(ctx)
	cfg.Invite.CountJoins = true
	ctx = xcontext.WithConfigs(ctx, cfg)

	domain := newTestInviteDomain(testutil.NewInMemoryRedisClient())

	// Uses reported by the platform exceed the recorded joins; under the
	// join-count signal only the join records count.
	inviteCodeRepo := repository.NewInviteCodeRepository()
	require.NoError(t, inviteCodeRepo.Create(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "code-m2"},
		GuildID:   testutil.Guild1.ID,
		Code:      "second",
		InviterID: testutil.Member2.ID,
		Uses:      10,
	}))

	require.NoError(t, repository.NewJoinRepository().Create(ctx, &entity.Join{
		Base:           entity.Base{ID: "join1"},
		GuildID:        testutil.Guild1.ID,
		MemberID:       testutil.Member3.ID,
		ExactMatchCode: nullString("second"),
	}))

	resp, err := domain.GetInvites(ctx, &model.GetInvitesRequest{
		GuildID:  testutil.Guild1.ID,
		MemberID: testutil.Member2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
}
