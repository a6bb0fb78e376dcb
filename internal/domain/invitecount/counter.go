package invitecount

import (
	"context"
	"errors"
	"time"

	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/invitetrack/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

// CachedTotal is a disposable projection of one member's invite total. It is
// owned by this package only and can be flushed at any time without data loss.
type CachedTotal struct {
	Value      int64     `json:"value"`
	ValidSince time.Time `json:"valid_since"`
}

type Counter interface {
	// Get returns the member's invite total, recomputing it from the ledger
	// when no cached value exists.
	Get(ctx context.Context, guildID, memberID string) (int64, error)

	// Rank returns the member's 1-based position on the guild invite
	// leaderboard, or 0 when the member is not ranked.
	Rank(ctx context.Context, guildID, memberID string) (uint64, error)

	Leaderboard(ctx context.Context, guildID string, offset, limit int) ([]redis.Z, error)

	// FlushOne invalidates a single member's cached total, Flush invalidates
	// the whole guild. Every ledger mutation which can change a total must be
	// paired with one of them.
	FlushOne(ctx context.Context, guildID, memberID string) error
	Flush(ctx context.Context, guildID string) error
}

type counter struct {
	inviteCodeRepo repository.InviteCodeRepository
	joinRepo       repository.JoinRepository
	bonusRepo      repository.BonusAdjustmentRepository
	redisClient    xredis.Client
}

func New(
	inviteCodeRepo repository.InviteCodeRepository,
	joinRepo repository.JoinRepository,
	bonusRepo repository.BonusAdjustmentRepository,
	redisClient xredis.Client,
) *counter {
	return &counter{
		inviteCodeRepo: inviteCodeRepo,
		joinRepo:       joinRepo,
		bonusRepo:      bonusRepo,
		redisClient:    redisClient,
	}
}

func (c *counter) Get(ctx context.Context, guildID, memberID string) (int64, error) {
	key := redisKeyInviteTotal(guildID, memberID)

	var cached CachedTotal
	err := c.redisClient.GetObj(ctx, key, &cached)
	if err == nil {
		return cached.Value, nil
	}

	if !errors.Is(err, redis.Nil) {
		// The ledger is the source of truth, a broken cache only costs a
		// recomputation.
		xcontext.Logger(ctx).Warnf("Cannot get cached invite total: %v", err)
	}

	total, err := c.computeTotal(ctx, guildID, memberID)
	if err != nil {
		return 0, err
	}

	cached = CachedTotal{Value: total, ValidSince: time.Now()}
	if err := c.redisClient.SetObj(ctx, key, cached, 0); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache invite total: %v", err)
	}

	return total, nil
}

func (c *counter) Rank(ctx context.Context, guildID, memberID string) (uint64, error) {
	if err := c.ensureLeaderboard(ctx, guildID); err != nil {
		return 0, err
	}

	rank, err := c.redisClient.ZRevRank(ctx, redisKeyInviteLeaderboard(guildID), memberID)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return rank + 1, nil
}

func (c *counter) Leaderboard(
	ctx context.Context, guildID string, offset, limit int,
) ([]redis.Z, error) {
	if err := c.ensureLeaderboard(ctx, guildID); err != nil {
		return nil, err
	}

	return c.redisClient.ZRevRangeWithScores(
		ctx, redisKeyInviteLeaderboard(guildID), offset, limit)
}

func (c *counter) FlushOne(ctx context.Context, guildID, memberID string) error {
	// The ranking view cannot be patched per member, it is rebuilt on the
	// next leaderboard read.
	return c.redisClient.Del(ctx,
		redisKeyInviteTotal(guildID, memberID),
		redisKeyInviteLeaderboard(guildID),
	)
}

func (c *counter) Flush(ctx context.Context, guildID string) error {
	keys, err := c.redisClient.Keys(ctx, redisKeyInviteTotalPattern(guildID))
	if err != nil {
		return err
	}

	keys = append(keys, redisKeyInviteLeaderboard(guildID))
	return c.redisClient.Del(ctx, keys...)
}

// computeTotal folds the ledger into one member's invite total: the natural
// invites under the configured authoritative signal, plus the sum of
// non-cleared bonus adjustments. Code-uses-delta and join-count are two views
// of the same events, so exactly one of them contributes.
func (c *counter) computeTotal(ctx context.Context, guildID, memberID string) (int64, error) {
	var natural int64
	var err error
	if xcontext.Configs(ctx).Invite.CountJoins {
		natural, err = c.joinRepo.CountInvited(ctx, guildID, memberID)
	} else {
		natural, err = c.inviteCodeRepo.SumNetUses(ctx, guildID, memberID)
	}
	if err != nil {
		return 0, err
	}

	bonus, err := c.bonusRepo.SumByMember(ctx, guildID, memberID)
	if err != nil {
		return 0, err
	}

	return natural + bonus, nil
}

func (c *counter) ensureLeaderboard(ctx context.Context, guildID string) error {
	key := redisKeyInviteLeaderboard(guildID)
	ok, err := c.redisClient.Exist(ctx, key)
	if err != nil {
		return err
	}

	if ok {
		return nil
	}

	totals := map[string]int64{}
	if xcontext.Configs(ctx).Invite.CountJoins {
		counts, err := c.joinRepo.GetInviterCounts(ctx, guildID)
		if err != nil {
			return err
		}

		for _, row := range counts {
			totals[row.InviterID] += row.Total
		}
	} else {
		netUses, err := c.inviteCodeRepo.GetInviterTotals(ctx, guildID)
		if err != nil {
			return err
		}

		for _, row := range netUses {
			totals[row.InviterID] += row.Total
		}
	}

	bonusSums, err := c.bonusRepo.GetMemberSums(ctx, guildID)
	if err != nil {
		return err
	}

	for _, row := range bonusSums {
		totals[row.MemberID] += row.Total
	}

	for memberID, total := range totals {
		err := c.redisClient.ZAdd(ctx, key, redis.Z{Member: memberID, Score: float64(total)})
		if err != nil {
			return err
		}
	}

	return nil
}
