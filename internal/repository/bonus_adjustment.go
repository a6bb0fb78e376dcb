package repository

import (
	"context"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
)

// MemberBonusSum is the live bonus balance of one member.
type MemberBonusSum struct {
	MemberID string
	Total    int64
}

type BonusAdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.BonusAdjustment) error
	GetList(ctx context.Context, guildID, memberID string) ([]entity.BonusAdjustment, error)
	SumByMember(ctx context.Context, guildID, memberID string) (int64, error)
	MarkCleared(ctx context.Context, guildID, memberID string) error
	GetMemberSums(ctx context.Context, guildID string) ([]MemberBonusSum, error)
}

type bonusAdjustmentRepository struct{}

func NewBonusAdjustmentRepository() *bonusAdjustmentRepository {
	return &bonusAdjustmentRepository{}
}

func (r *bonusAdjustmentRepository) Create(
	ctx context.Context, adjustment *entity.BonusAdjustment,
) error {
	return xcontext.DB(ctx).Create(adjustment).Error
}

func (r *bonusAdjustmentRepository) GetList(
	ctx context.Context, guildID, memberID string,
) ([]entity.BonusAdjustment, error) {
	tx := xcontext.DB(ctx).Where("guild_id=?", guildID)
	if memberID != "" {
		tx = tx.Where("member_id=?", memberID)
	}

	var result []entity.BonusAdjustment
	if err := tx.Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *bonusAdjustmentRepository) SumByMember(
	ctx context.Context, guildID, memberID string,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.BonusAdjustment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("guild_id=? AND member_id=? AND cleared=?", guildID, memberID, false).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// MarkCleared neutralizes bonus contributions. An empty memberID clears every
// adjustment in the guild.
func (r *bonusAdjustmentRepository) MarkCleared(
	ctx context.Context, guildID, memberID string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.BonusAdjustment{}).
		Where("guild_id=?", guildID)

	if memberID != "" {
		tx = tx.Where("member_id=?", memberID)
	}

	return tx.Update("cleared", true).Error
}

func (r *bonusAdjustmentRepository) GetMemberSums(
	ctx context.Context, guildID string,
) ([]MemberBonusSum, error) {
	var result []MemberBonusSum
	err := xcontext.DB(ctx).
		Model(&entity.BonusAdjustment{}).
		Select("member_id, COALESCE(SUM(amount), 0) AS total").
		Where("guild_id=? AND cleared=?", guildID, false).
		Group("member_id").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
