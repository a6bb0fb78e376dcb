package repository_test

import (
	"testing"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_inviteCodeRepository_IncreaseUses(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := repository.NewInviteCodeRepository()

	require.NoError(t, repo.IncreaseUses(ctx, testutil.Guild1.ID, testutil.InviteCode1.Code))

	code, err := repo.GetByCode(ctx, testutil.Guild1.ID, testutil.InviteCode1.Code)
	require.NoError(t, err)
	require.Equal(t, uint64(1), code.Uses)

	err = repo.IncreaseUses(ctx, testutil.Guild1.ID, "no-such-code")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_inviteCodeRepository_MarkCleared_baselineIsMonotonic(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := repository.NewInviteCodeRepository()

	require.NoError(t, repo.Create(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "code1"},
		GuildID:   testutil.Guild1.ID,
		Code:      "busy",
		InviterID: testutil.Member1.ID,
		Uses:      5,
	}))

	require.NoError(t, repo.MarkCleared(ctx, testutil.Guild1.ID, testutil.Member1.ID))

	code, err := repo.GetByCode(ctx, testutil.Guild1.ID, "busy")
	require.NoError(t, err)
	require.Equal(t, uint64(5), code.ClearedAmount)

	net, err := repo.SumNetUses(ctx, testutil.Guild1.ID, testutil.Member1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), net)

	// New uses after a clear count from the baseline, and a second clear moves
	// the baseline forward, never back.
	require.NoError(t, repo.IncreaseUses(ctx, testutil.Guild1.ID, "busy"))

	net, err = repo.SumNetUses(ctx, testutil.Guild1.ID, testutil.Member1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), net)

	require.NoError(t, repo.MarkCleared(ctx, testutil.Guild1.ID, testutil.Member1.ID))

	code, err = repo.GetByCode(ctx, testutil.Guild1.ID, "busy")
	require.NoError(t, err)
	require.Equal(t, uint64(6), code.ClearedAmount)
}

func Test_inviteCodeRepository_MarkCleared_scope(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := repository.NewInviteCodeRepository()

	require.NoError(t, repo.Create(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "code-m2"},
		GuildID:   testutil.Guild1.ID,
		Code:      "second",
		InviterID: testutil.Member2.ID,
		Uses:      3,
	}))

	require.NoError(t, repo.IncreaseUses(ctx, testutil.Guild1.ID, testutil.InviteCode1.Code))

	// Clearing one inviter leaves the other's codes untouched.
	require.NoError(t, repo.MarkCleared(ctx, testutil.Guild1.ID, testutil.Member2.ID))

	net, err := repo.SumNetUses(ctx, testutil.Guild1.ID, testutil.Member2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), net)

	net, err = repo.SumNetUses(ctx, testutil.Guild1.ID, testutil.Member1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), net)
}

func Test_inviteCodeRepository_Upsert(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := repository.NewInviteCodeRepository()

	require.NoError(t, repo.Upsert(ctx, &entity.InviteCode{
		Base:      entity.Base{ID: "sync1"},
		GuildID:   testutil.Guild1.ID,
		Code:      testutil.InviteCode1.Code,
		InviterID: testutil.Member1.ID,
		Uses:      7,
	}))

	code, err := repo.GetByCode(ctx, testutil.Guild1.ID, testutil.InviteCode1.Code)
	require.NoError(t, err)
	require.Equal(t, uint64(7), code.Uses)
	require.Equal(t, testutil.InviteCode1.ID, code.ID)

	codes, err := repo.GetList(ctx, repository.GetListInviteCodeFilter{
		GuildID: testutil.Guild1.ID,
	})
	require.NoError(t, err)
	require.Len(t, codes, 1)
}

func Test_inviteCodeRepository_GetInviterTotals(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := repository.NewInviteCodeRepository()

	for i, code := range []entity.InviteCode{
		{
			Base:      entity.Base{ID: "code1"},
			GuildID:   testutil.Guild1.ID,
			Code:      "first",
			InviterID: testutil.Member1.ID,
			Uses:      4,
		},
		{
			Base:          entity.Base{ID: "code2"},
			GuildID:       testutil.Guild1.ID,
			Code:          "second",
			InviterID:     testutil.Member1.ID,
			Uses:          3,
			ClearedAmount: 1,
		},
		{
			Base:      entity.Base{ID: "code3"},
			GuildID:   testutil.Guild1.ID,
			Code:      "third",
			InviterID: testutil.Member2.ID,
			Uses:      2,
		},
	} {
		code := code
		require.NoError(t, repo.Create(ctx, &code), "code %d", i)
	}

	totals, err := repo.GetInviterTotals(ctx, testutil.Guild1.ID)
	require.NoError(t, err)

	byInviter := map[string]int64{}
	for _, row := range totals {
		byInviter[row.InviterID] = row.Total
	}

	require.Equal(t, map[string]int64{
		testutil.Member1.ID: 6,
		testutil.Member2.ID: 2,
	}, byInviter)
}
