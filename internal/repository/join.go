package repository

import (
	"context"
	"time"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
)

type GetListJoinFilter struct {
	GuildID  string
	MemberID string
	Cleared  *bool
	Offset   int
	Limit    int
}

// InviterJoinCount is the number of non-cleared joins attributed to one
// inviter's codes.
type InviterJoinCount struct {
	InviterID string
	Total     int64
}

type JoinRepository interface {
	Create(ctx context.Context, join *entity.Join) error
	GetList(ctx context.Context, filter GetListJoinFilter) ([]entity.Join, error)
	CountInvited(ctx context.Context, guildID, inviterID string) (int64, error)
	MarkCleared(ctx context.Context, guildID string, codes []string, since *time.Time) error
	GetInviterCounts(ctx context.Context, guildID string) ([]InviterJoinCount, error)
}

type joinRepository struct{}

func NewJoinRepository() *joinRepository {
	return &joinRepository{}
}

func (r *joinRepository) Create(ctx context.Context, join *entity.Join) error {
	return xcontext.DB(ctx).Create(join).Error
}

func (r *joinRepository) GetList(
	ctx context.Context, filter GetListJoinFilter,
) ([]entity.Join, error) {
	tx := xcontext.DB(ctx).Where("guild_id=?", filter.GuildID)
	if filter.MemberID != "" {
		tx = tx.Where("member_id=?", filter.MemberID)
	}

	if filter.Cleared != nil {
		tx = tx.Where("cleared=?", *filter.Cleared)
	}

	if filter.Limit != 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Join
	if err := tx.Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CountInvited counts the joins whose exact match code resolves to a code
// owned by the given inviter and which have not been cleared.
func (r *joinRepository) CountInvited(
	ctx context.Context, guildID, inviterID string,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.Join{}).
		Joins("join invite_codes on invite_codes.guild_id=joins.guild_id and invite_codes.code=joins.exact_match_code").
		Where("joins.guild_id=? AND invite_codes.inviter_id=? AND joins.cleared=?",
			guildID, inviterID, false).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// MarkCleared flips the soft marker of every join attributed to one of the
// given codes, or of every join in the guild when codes is empty. The flip is
// one-way; already cleared rows are untouched, which keeps the operation
// idempotent.
func (r *joinRepository) MarkCleared(
	ctx context.Context, guildID string, codes []string, since *time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Join{}).
		Where("guild_id=?", guildID)

	if len(codes) > 0 {
		tx = tx.Where("exact_match_code IN ?", codes)
	}

	if since != nil {
		tx = tx.Where("created_at >= ?", *since)
	}

	return tx.Update("cleared", true).Error
}

func (r *joinRepository) GetInviterCounts(
	ctx context.Context, guildID string,
) ([]InviterJoinCount, error) {
	var result []InviterJoinCount
	err := xcontext.DB(ctx).
		Model(&entity.Join{}).
		Select("invite_codes.inviter_id AS inviter_id, COUNT(*) AS total").
		Joins("join invite_codes on invite_codes.guild_id=joins.guild_id and invite_codes.code=joins.exact_match_code").
		Where("joins.guild_id=? AND joins.cleared=? AND invite_codes.inviter_id <> ''",
			guildID, false).
		Group("invite_codes.inviter_id").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
